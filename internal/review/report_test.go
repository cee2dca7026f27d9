package review

import (
	"fmt"
	"testing"

	"github.com/dshills/materialcheck/internal/schema"
)

func textResult(id string, required, valid bool, score int, warnings, tips []string) schema.ValidationResult {
	var errs []string
	if !valid {
		errs = []string{"too short: 3 characters, minimum is 10"}
	}
	return schema.ValidationResult{
		Kind:     schema.KindText,
		FieldID:  id,
		Label:    id,
		Required: required,
		Text: &schema.TextValidationResult{
			IsValid:     valid,
			Score:       score,
			Errors:      errs,
			Warnings:    warnings,
			Suggestions: tips,
		},
	}
}

func imageResult(id string, required, valid bool) schema.ValidationResult {
	img := &schema.ImageValidationResult{IsValid: valid}
	if !valid {
		img.Errors = []string{"image is 1200×800, minimum is 1920×1080"}
	}
	return schema.ValidationResult{Kind: schema.KindImage, FieldID: id, Label: id, Required: required, Image: img}
}

func TestGenerateValidationReport_Buckets(t *testing.T) {
	results := []schema.ValidationResult{
		textResult("a", true, true, 90, nil, nil),
		textResult("b", true, true, 70, []string{"close to the maximum length"}, nil),
		textResult("c", true, false, 20, nil, nil),
		textResult("d", false, false, 40, nil, nil),
		imageResult("e", true, true),
		imageResult("f", true, false),
	}
	rep := GenerateValidationReport("p1", results)

	if rep.TotalFields != 6 || rep.ValidFields != 2 || rep.WarningFields != 1 || rep.InvalidFields != 3 {
		t.Errorf("buckets = %+v", rep)
	}
	if rep.ValidFields+rep.WarningFields+rep.InvalidFields != rep.TotalFields {
		t.Error("buckets are not exclusive")
	}
	// (90+70+20+40+100+0)/6 = 53.3
	if rep.OverallScore != 53 {
		t.Errorf("OverallScore = %d, want 53", rep.OverallScore)
	}
	if len(rep.Summary.CriticalIssues) != 2 {
		t.Errorf("critical issues should cover required invalid fields only: %v", rep.Summary.CriticalIssues)
	}
}

func TestGenerateValidationReport_Empty(t *testing.T) {
	rep := GenerateValidationReport("p1", nil)
	if rep.OverallScore != 100 || rep.TotalFields != 0 {
		t.Errorf("empty report = %+v", rep)
	}
	if rep.Summary.CriticalIssues == nil || rep.Summary.Recommendations == nil {
		t.Error("summary lists should be non-nil")
	}
}

func TestGenerateValidationReport_RecommendationsDedupedAndCapped(t *testing.T) {
	var results []schema.ValidationResult
	for i := 0; i < 8; i++ {
		results = append(results, textResult(fmt.Sprint(i), false, true, 80, nil,
			[]string{"Use shorter sentences to improve readability", fmt.Sprintf("tip %d", i)}))
	}
	rep := GenerateValidationReport("p1", results)
	recs := rep.Summary.Recommendations
	if len(recs) != MaxRecommendations {
		t.Fatalf("got %d recommendations, want %d", len(recs), MaxRecommendations)
	}
	seen := map[string]bool{}
	for _, r := range recs {
		if seen[r] {
			t.Errorf("duplicate recommendation %q", r)
		}
		seen[r] = true
	}
}

func TestFails(t *testing.T) {
	rep := schema.ValidationReport{WarningFields: 1}
	if Fails(rep, schema.SeverityError) {
		t.Error("warnings should not fail at error threshold")
	}
	if !Fails(rep, schema.SeverityWarning) {
		t.Error("warnings should fail at warning threshold")
	}
}

func TestParseSeverity(t *testing.T) {
	if s, err := ParseSeverity("WARNING"); err != nil || s != schema.SeverityWarning {
		t.Errorf("ParseSeverity(WARNING) = %q, %v", s, err)
	}
	if _, err := ParseSeverity("info"); err == nil {
		t.Error("expected error for unknown severity")
	}
}

func TestFilterBySeverity(t *testing.T) {
	in := []schema.ValidationResult{textResult("a", true, true, 90, []string{"w"}, []string{"s"})}
	out := FilterBySeverity(in, schema.SeverityError)
	if len(out[0].Warnings()) != 0 || len(out[0].Suggestions()) != 0 {
		t.Errorf("findings below threshold kept: %+v", out[0].Text)
	}
	if len(in[0].Warnings()) != 1 {
		t.Error("input was mutated")
	}
	errs, warns, tips := Counts(in)
	if errs != 0 || warns != 1 || tips != 1 {
		t.Errorf("Counts = %d %d %d", errs, warns, tips)
	}
}

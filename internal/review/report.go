// Package review rolls per-field validation results into a project report.
package review

import (
	"fmt"
	"math"
	"strings"

	"github.com/dshills/materialcheck/internal/schema"
)

// MaxRecommendations caps the recommendation list so it stays actionable.
const MaxRecommendations = 5

// GenerateValidationReport aggregates field results. A field lands in exactly
// one bucket: invalid, valid with warnings, or clean valid. An empty result
// set scores 100.
func GenerateValidationReport(projectID string, results []schema.ValidationResult) schema.ValidationReport {
	rep := schema.ValidationReport{
		ProjectID:   projectID,
		TotalFields: len(results),
		Summary: schema.ReportSummary{
			CriticalIssues:  []string{},
			Recommendations: []string{},
		},
	}
	if len(results) == 0 {
		rep.OverallScore = 100
		return rep
	}

	seen := make(map[string]bool)
	sum := 0
	for _, r := range results {
		switch {
		case !r.IsValid():
			rep.InvalidFields++
			if r.Required {
				rep.Summary.CriticalIssues = append(rep.Summary.CriticalIssues, criticalIssue(r))
			}
		case len(r.Warnings()) > 0:
			rep.WarningFields++
		default:
			rep.ValidFields++
		}
		sum += FieldScore(r)
		for _, s := range r.Suggestions() {
			if seen[s] || len(rep.Summary.Recommendations) >= MaxRecommendations {
				continue
			}
			seen[s] = true
			rep.Summary.Recommendations = append(rep.Summary.Recommendations, s)
		}
	}
	rep.OverallScore = int(math.Round(float64(sum) / float64(len(results))))
	return rep
}

// FieldScore is the result's score, or 100/0 by validity when it has none.
func FieldScore(r schema.ValidationResult) int {
	if s, ok := r.Score(); ok {
		return s
	}
	if r.IsValid() {
		return 100
	}
	return 0
}

func criticalIssue(r schema.ValidationResult) string {
	errs := r.Errors()
	if len(errs) == 0 {
		return fmt.Sprintf("%s: invalid", r.Label)
	}
	return fmt.Sprintf("%s: %s", r.Label, strings.Join(errs, "; "))
}

// Counts returns the number of error, warning and suggestion findings.
func Counts(results []schema.ValidationResult) (errs, warns, tips int) {
	for _, r := range results {
		errs += len(r.Errors())
		warns += len(r.Warnings())
		tips += len(r.Suggestions())
	}
	return
}

// Fails reports whether the report has findings at or above threshold.
// Suggestions never fail a report.
func Fails(rep schema.ValidationReport, threshold schema.Severity) bool {
	switch threshold {
	case schema.SeverityError:
		return rep.InvalidFields > 0
	case schema.SeverityWarning:
		return rep.InvalidFields+rep.WarningFields > 0
	}
	return false
}

// ParseSeverity accepts the --fail-on values.
func ParseSeverity(s string) (schema.Severity, error) {
	switch sev := schema.Severity(strings.ToLower(s)); sev {
	case schema.SeverityError, schema.SeverityWarning:
		return sev, nil
	}
	return "", fmt.Errorf("invalid severity %q: must be error or warning", s)
}

// FilterBySeverity drops findings below threshold from each result, keeping
// the results themselves. Validity is unchanged.
func FilterBySeverity(results []schema.ValidationResult, threshold schema.Severity) []schema.ValidationResult {
	if threshold == schema.SeveritySuggestion || threshold == "" {
		return results
	}
	out := make([]schema.ValidationResult, len(results))
	for i, r := range results {
		switch r.Kind {
		case schema.KindText:
			if r.Text != nil {
				t := *r.Text
				t.Suggestions = []string{}
				if threshold == schema.SeverityError {
					t.Warnings = []string{}
				}
				r.Text = &t
			}
		case schema.KindImage:
			if r.Image != nil {
				img := *r.Image
				img.Suggestions = []string{}
				if threshold == schema.SeverityError {
					img.Warnings = []string{}
				}
				r.Image = &img
			}
		}
		out[i] = r
	}
	return out
}

package quality

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/dshills/materialcheck/internal/schema"
)

// TextSpec holds the constraints for one text field. Zero bounds are unchecked.
type TextSpec struct {
	Required   bool
	MinLength  int
	MaxLength  int
	AllowEmoji bool
	Language   string
}

// TextSpecFor derives the text constraints of a requirement.
func TextSpecFor(req schema.ContentRequirement) TextSpec {
	return TextSpec{
		Required:   req.Required,
		MinLength:  req.Rules.MinLength,
		MaxLength:  req.Rules.MaxLength,
		AllowEmoji: req.Rules.AllowEmoji,
		Language:   req.Rules.Language,
	}
}

const (
	lengthWeight      = 0.6
	readabilityWeight = 0.4

	// readabilityTip is the score under which a shorter-sentences tip is added.
	readabilityTip = 60
	// borderline is the fraction of a limit treated as close to it.
	borderline = 0.1
)

// ValidateText scores a text value against spec. Length bounds are measured
// in characters (runes); the minimum only applies to required fields.
func ValidateText(value string, spec TextSpec) schema.TextValidationResult {
	a := Analyze(value)
	res := newTextResult(a)
	n := a.CharCount

	switch {
	case spec.Required && n == 0:
		res.Errors = append(res.Errors, "this field is required")
	case spec.Required && spec.MinLength > 0 && n < spec.MinLength:
		res.Errors = append(res.Errors, fmt.Sprintf("too short: %d characters, minimum is %d", n, spec.MinLength))
	}
	if spec.MaxLength > 0 && n > spec.MaxLength {
		res.Errors = append(res.Errors, fmt.Sprintf("too long: %d characters, maximum is %d", n, spec.MaxLength))
	}
	res.IsValid = len(res.Errors) == 0

	if res.IsValid && n > 0 {
		if spec.MinLength > 0 && n >= spec.MinLength && float64(n) <= float64(spec.MinLength)*(1+borderline) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("close to the minimum length (%d of at least %d characters)", n, spec.MinLength))
		}
		if spec.MaxLength > 0 && float64(n) >= float64(spec.MaxLength)*(1-borderline) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("close to the maximum length (%d of at most %d characters)", n, spec.MaxLength))
		}
	}
	if a.HasEmoji && !spec.AllowEmoji {
		res.Warnings = append(res.Warnings, "contains emoji, which may not render consistently across devices")
	}
	if spec.Language != "" && a.Language != langUnknown && !sameLanguage(a.Language, spec.Language) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("text appears to be %s, expected %s", a.Language, spec.Language))
	}
	if n > 0 && a.ReadabilityScore < readabilityTip {
		res.Suggestions = append(res.Suggestions, "Use shorter sentences to improve readability")
	}

	lf := lengthFit(n, spec)
	res.Score = clamp(int(math.Round(lengthWeight*lf+readabilityWeight*float64(a.ReadabilityScore))), 0, 100)
	return res
}

// lengthFit is 100 inside the bounds and falls off proportionally outside.
func lengthFit(n int, spec TextSpec) float64 {
	switch {
	case spec.MinLength > 0 && n < spec.MinLength:
		return 100 * float64(n) / float64(spec.MinLength)
	case spec.MaxLength > 0 && n > spec.MaxLength:
		over := float64(n-spec.MaxLength) / float64(spec.MaxLength)
		return math.Max(0, 100*(1-over))
	case n == 0:
		return 0
	}
	return 100
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor checks a brand color value is #RGB or #RRGGBB.
func ValidateColor(value string, required bool) schema.TextValidationResult {
	value = strings.TrimSpace(value)
	res := newTextResult(Analyze(value))
	switch {
	case value == "" && required:
		res.Errors = append(res.Errors, "this field is required")
	case value != "" && !hexColor.MatchString(value):
		res.Errors = append(res.Errors, fmt.Sprintf("%q is not a hex color such as #1A73E8", value))
	}
	res.IsValid = len(res.Errors) == 0
	if res.IsValid && len(value) == 4 {
		res.Suggestions = append(res.Suggestions, "Provide the full six-digit hex code for exact color matching")
	}
	if res.IsValid && value != "" {
		res.Score = 100
	}
	return res
}

// ValidateChoice checks a select value is one of options (case-insensitive).
func ValidateChoice(value string, options []string, required bool) schema.TextValidationResult {
	value = strings.TrimSpace(value)
	res := newTextResult(Analyze(value))
	switch {
	case value == "" && required:
		res.Errors = append(res.Errors, "this field is required")
	case value != "" && !containsFold(options, value):
		res.Errors = append(res.Errors, fmt.Sprintf("%q is not one of: %s", value, strings.Join(options, ", ")))
	}
	res.IsValid = len(res.Errors) == 0
	if res.IsValid && value != "" {
		res.Score = 100
	}
	return res
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func newTextResult(a schema.TextAnalysis) schema.TextValidationResult {
	return schema.TextValidationResult{
		Errors:      []string{},
		Warnings:    []string{},
		Suggestions: []string{},
		Analysis:    a,
	}
}

package schema

// ResultKind discriminates the two validation result shapes.
type ResultKind string

const (
	KindText  ResultKind = "text"
	KindImage ResultKind = "image"
)

// Severity is the display tier of a validation finding. Errors block,
// warnings caution, suggestions are optional tips.
type Severity string

const (
	SeverityError      Severity = "error"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
)

// TextAnalysis holds the measured properties of a text submission.
type TextAnalysis struct {
	CharCount        int    `json:"char_count"`
	WordCount        int    `json:"word_count"`
	SentenceCount    int    `json:"sentence_count"`
	ReadabilityScore int    `json:"readability_score"`
	HasEmoji         bool   `json:"has_emoji"`
	Language         string `json:"language"`
}

// TextValidationResult is the outcome of validating one text value.
type TextValidationResult struct {
	IsValid     bool         `json:"is_valid"`
	Score       int          `json:"score"`
	Errors      []string     `json:"errors"`
	Warnings    []string     `json:"warnings"`
	Suggestions []string     `json:"suggestions"`
	Analysis    TextAnalysis `json:"analysis"`
}

// ImageDetails is always populated, even when the image is invalid,
// so callers can show what was received against what is needed.
type ImageDetails struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	FileSize int64  `json:"file_size"`
}

// ImageValidationResult is the outcome of validating one image file.
type ImageValidationResult struct {
	IsValid     bool         `json:"is_valid"`
	Errors      []string     `json:"errors"`
	Warnings    []string     `json:"warnings"`
	Suggestions []string     `json:"suggestions"`
	Details     ImageDetails `json:"details"`
}

// ValidationResult is the tagged union of text and image results for one
// field. Exactly one of Text or Image is set, matching Kind.
type ValidationResult struct {
	Kind     ResultKind             `json:"kind"`
	FieldID  string                 `json:"field_id"`
	Label    string                 `json:"label"`
	Required bool                   `json:"required"`
	Text     *TextValidationResult  `json:"text,omitempty"`
	Image    *ImageValidationResult `json:"image,omitempty"`
}

// IsValid reports whether the wrapped result is valid.
func (r ValidationResult) IsValid() bool {
	switch r.Kind {
	case KindText:
		return r.Text != nil && r.Text.IsValid
	case KindImage:
		return r.Image != nil && r.Image.IsValid
	}
	return false
}

// Score returns the field's quality score and whether one is defined.
// Image results carry no score.
func (r ValidationResult) Score() (int, bool) {
	if r.Kind == KindText && r.Text != nil {
		return r.Text.Score, true
	}
	return 0, false
}

// Errors returns the blocking findings of the wrapped result.
func (r ValidationResult) Errors() []string {
	switch r.Kind {
	case KindText:
		if r.Text != nil {
			return r.Text.Errors
		}
	case KindImage:
		if r.Image != nil {
			return r.Image.Errors
		}
	}
	return nil
}

// Warnings returns the cautionary findings of the wrapped result.
func (r ValidationResult) Warnings() []string {
	switch r.Kind {
	case KindText:
		if r.Text != nil {
			return r.Text.Warnings
		}
	case KindImage:
		if r.Image != nil {
			return r.Image.Warnings
		}
	}
	return nil
}

// Suggestions returns the optional tips of the wrapped result.
func (r ValidationResult) Suggestions() []string {
	switch r.Kind {
	case KindText:
		if r.Text != nil {
			return r.Text.Suggestions
		}
	case KindImage:
		if r.Image != nil {
			return r.Image.Suggestions
		}
	}
	return nil
}

// ReportSummary holds the actionable lists of a validation report.
type ReportSummary struct {
	CriticalIssues  []string `json:"critical_issues"`
	Recommendations []string `json:"recommendations"`
}

// ValidationReport aggregates field results for one project. The three
// field buckets are mutually exclusive: ValidFields + WarningFields +
// InvalidFields == TotalFields.
type ValidationReport struct {
	ProjectID     string        `json:"project_id"`
	TotalFields   int           `json:"total_fields"`
	ValidFields   int           `json:"valid_fields"`
	WarningFields int           `json:"warning_fields"`
	InvalidFields int           `json:"invalid_fields"`
	OverallScore  int           `json:"overall_score"`
	Summary       ReportSummary `json:"summary"`
}

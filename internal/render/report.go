package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/dshills/materialcheck/internal/schema"
)

// renderView formats v as indented JSON ("json" or empty) or through md ("md").
func renderView(format string, v any, md *template.Template) ([]byte, error) {
	switch format {
	case "json", "":
		return json.MarshalIndent(v, "", "  ")
	case "md":
		var buf bytes.Buffer
		if err := md.Execute(&buf, v); err != nil {
			return nil, fmt.Errorf("rendering markdown: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %q: supported formats are json, md", format)
	}
}

// ReportView is everything the validate command prints for one project.
type ReportView struct {
	Status  schema.ProjectMaterialStatus `json:"status"`
	Report  schema.ValidationReport      `json:"report"`
	Results []schema.ValidationResult    `json:"results"`
}

var reportTemplate = template.Must(template.New("report").Parse(`# Content Report: {{ .Status.ClientName }}

**Project:** {{ .Status.ProjectID }} · **Template:** {{ .Status.TemplateID }}
**Quality score:** {{ .Report.OverallScore }}/100
**Valid:** {{ .Report.ValidFields }} | **Warnings:** {{ .Report.WarningFields }} | **Invalid:** {{ .Report.InvalidFields }} | **Checked:** {{ .Report.TotalFields }}
{{ if .Report.Summary.CriticalIssues }}
## Critical Issues
{{ range .Report.Summary.CriticalIssues }}
- {{ . }}{{ end }}
{{ end }}{{ if .Report.Summary.Recommendations }}
## Recommendations
{{ range .Report.Summary.Recommendations }}
- {{ . }}{{ end }}
{{ end }}{{ if .Results }}
## Fields
{{ range .Results }}
### {{ .Label }} ` + "`{{ .FieldID }}`" + `{{ if .IsValid }} ✓{{ else }} ✗{{ end }}
{{ range .Errors }}
- **error:** {{ . }}{{ end }}{{ range .Warnings }}
- **warning:** {{ . }}{{ end }}{{ range .Suggestions }}
- **tip:** {{ . }}{{ end }}
{{ end }}{{ end }}`))

// RenderReport formats a validation report as "json" or "md".
func RenderReport(format string, v *ReportView) ([]byte, error) {
	return renderView(format, v, reportTemplate)
}

// StatusView is the status command output: progress plus the reminder decision.
type StatusView struct {
	Status  schema.ProjectMaterialStatus `json:"status"`
	Trigger schema.ReminderTrigger       `json:"reminder"`
}

var statusTemplate = template.Must(template.New("status").Parse(`# Material Status: {{ .Status.ClientName }}

**Project:** {{ .Status.ProjectID }} · **Template:** {{ .Status.TemplateID }}
**Progress:** {{ .Status.Progress.Approved }}/{{ .Status.Progress.Total }} approved ({{ .Status.Progress.CompletionRate }}%) · {{ .Status.Progress.Submitted }} submitted · {{ .Status.Progress.Missing }} missing
**Reminder:** {{ if .Trigger.ShouldRemind }}due ({{ .Trigger.Urgency }}): {{ else }}not due: {{ end }}{{ .Trigger.Reason }}

| Field | Phase | Required | Status |
|-------|-------|----------|--------|
{{ range .Status.Items }}| {{ .Requirement.Label }} ` + "`{{ .Requirement.ID }}`" + ` | {{ .Requirement.Phase }} | {{ if .Requirement.Required }}yes{{ else }}no{{ end }} | {{ .Status }} |
{{ end }}`))

// RenderStatus formats a status view as "json" or "md".
func RenderStatus(format string, v *StatusView) ([]byte, error) {
	return renderView(format, v, statusTemplate)
}

// ReminderView is the remind command output.
type ReminderView struct {
	ProjectID string                  `json:"project_id"`
	Trigger   schema.ReminderTrigger  `json:"trigger"`
	Message   *schema.ReminderMessage `json:"message,omitempty"`
	Sent      bool                    `json:"sent"`
	Error     string                  `json:"error,omitempty"`
}

var reminderTemplate = template.Must(template.New("reminder").Parse(`{{ if .Message }}Subject: {{ .Message.Subject }}
Preview: {{ .Message.Preview }}
Urgency: {{ .Message.UrgencyLabel }}

{{ .Message.FullMessage }}{{ else }}No reminder due for {{ .ProjectID }}: {{ .Trigger.Reason }}
{{ end }}`))

// RenderReminder formats a reminder view as "json" or "md" (plain message text).
func RenderReminder(format string, v *ReminderView) ([]byte, error) {
	return renderView(format, v, reminderTemplate)
}

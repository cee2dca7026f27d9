package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/dshills/materialcheck/internal/schema"
)

type markdownRenderer struct{}

var funcs = template.FuncMap{
	"display": display,
	"date":    formatTime,
	"indent":  indent,
}

var mdTemplate = template.Must(template.New("export").Funcs(funcs).Parse(`# {{ .Project.Name }}

**Project:** {{ .Project.ID }} · **Template:** {{ .Project.TemplateID }} · **Status:** {{ .Project.Status }}
**Exported:** {{ date .ExportedAt }}

## Client

- **Company:** {{ display .Client.CompanyName }}
- **Contact:** {{ display .Client.ContactName }}
- **Email:** {{ display .Client.ContactEmail }}
- **Primary color:** {{ display .Client.PrimaryColor }}
{{ range .Modules }}
## {{ .Name }}
{{ range .Sections }}
### {{ .Name }}
{{ range .Fields }}
**{{ .Label }}** ` + "`{{ .ID }}`" + ` · {{ .Status }}
: {{ indent (display .Value) }}
{{ end }}{{ end }}{{ end }}{{ if .Files }}
## Files

| ID | Name | Type | Uploaded |
|----|------|------|----------|
{{ range .Files }}| {{ .ID }} | [{{ .FileName }}]({{ .URL }}) | {{ .FileType }} | {{ date .UploadedAt }} |
{{ end }}{{ end }}`))

// indent keeps multi-line values inside their definition list entry:
// continuation lines are indented and blank lines carry the indent too.
func indent(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\n", "\n  ")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func (r *markdownRenderer) Render(data *schema.ExportData) ([]byte, error) {
	var buf bytes.Buffer
	if err := mdTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *markdownRenderer) Ext() string { return "md" }

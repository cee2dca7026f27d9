package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/dshills/materialcheck/internal/schema"
)

type htmlRenderer struct{}

var htmlTemplate = template.Must(template.New("export").Funcs(template.FuncMap{
	"display": display,
	"date":    formatTime,
	"missing": func(v any) bool { return display(v) == NotProvided },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{ .Project.Name }} content export</title>
<style>
body{font-family:system-ui,sans-serif;max-width:56rem;margin:2rem auto;padding:0 1rem;color:#222}
h2{border-bottom:2px solid {{ if .Client.PrimaryColor }}{{ .Client.PrimaryColor }}{{ else }}#ccc{{ end }};padding-bottom:.25rem}
dt{font-weight:600;margin-top:.75rem}
dd{margin-left:1rem;white-space:pre-wrap}
.missing{color:#b00;font-style:italic}
code{color:#666;font-size:.85em}
table{border-collapse:collapse}td,th{border:1px solid #ddd;padding:.25rem .5rem}
</style>
</head>
<body>
<h1>{{ .Project.Name }}</h1>
<p>Project {{ .Project.ID }} · template {{ .Project.TemplateID }} · status {{ .Project.Status }} · exported {{ date .ExportedAt }}</p>
<h2>Client</h2>
<dl>
<dt>Company</dt><dd>{{ display .Client.CompanyName }}</dd>
<dt>Contact</dt><dd>{{ display .Client.ContactName }}</dd>
<dt>Email</dt><dd>{{ display .Client.ContactEmail }}</dd>
<dt>Primary color</dt><dd>{{ display .Client.PrimaryColor }}</dd>
</dl>
{{ range .Modules }}<h2>{{ .Name }}</h2>
{{ range .Sections }}<h3>{{ .Name }}</h3>
<dl>
{{ range .Fields }}<dt>{{ .Label }} <code>{{ .ID }}</code> <small>{{ .Status }}</small></dt>
<dd{{ if missing .Value }} class="missing"{{ end }}>{{ display .Value }}</dd>
{{ end }}</dl>
{{ end }}{{ end }}{{ if .Files }}<h2>Files</h2>
<table>
<tr><th>ID</th><th>Name</th><th>Type</th><th>Uploaded</th></tr>
{{ range .Files }}<tr><td>{{ .ID }}</td><td><a href="{{ .URL }}">{{ .FileName }}</a></td><td>{{ .FileType }}</td><td>{{ date .UploadedAt }}</td></tr>
{{ end }}</table>
{{ end }}</body>
</html>
`))

func (r *htmlRenderer) Render(data *schema.ExportData) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering html: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *htmlRenderer) Ext() string { return "html" }

// Package render serializes export snapshots and validation reports.
package render

import (
	"fmt"

	"github.com/dshills/materialcheck/internal/schema"
)

// NotProvided marks a field the client has not supplied yet.
const NotProvided = "(not provided)"

// Renderer formats an export snapshot into bytes for download.
type Renderer interface {
	Render(data *schema.ExportData) ([]byte, error)
	// Ext is the conventional file extension, without the dot.
	Ext() string
}

// NewRenderer returns a Renderer for the given format string.
// Supported formats: "json" (default), "md", "html".
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "json", "":
		return &jsonRenderer{}, nil
	case "md":
		return &markdownRenderer{}, nil
	case "html":
		return &htmlRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q: supported formats are json, md, html", format)
	}
}

// display renders a field value for the document formats.
func display(v any) string {
	switch v := v.(type) {
	case nil:
		return NotProvided
	case string:
		if v == "" {
			return NotProvided
		}
		return v
	case schema.FileValue:
		if v.FileName != "" {
			return fmt.Sprintf("%s (%s)", v.FileName, v.URL)
		}
		return v.URL
	default:
		return fmt.Sprint(v)
	}
}

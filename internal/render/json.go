package render

import (
	"encoding/json"

	"github.com/dshills/materialcheck/internal/schema"
)

type jsonRenderer struct{}

func (r *jsonRenderer) Render(data *schema.ExportData) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

func (r *jsonRenderer) Ext() string { return "json" }

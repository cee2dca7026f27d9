package render

import (
	"time"

	"github.com/dshills/materialcheck/internal/catalog"
	"github.com/dshills/materialcheck/internal/fetch"
	"github.com/dshills/materialcheck/internal/material"
	"github.com/dshills/materialcheck/internal/schema"
)

// Build assembles the export snapshot for a project. The tree follows the
// template's module/section/field shape restricted to the project's module
// selection; every field appears, with a nil value when nothing usable was
// submitted.
func Build(tmpl *catalog.Template, p schema.Project, items []schema.SubmittedItem, files []schema.FileRecord, now time.Time) *schema.ExportData {
	data := &schema.ExportData{
		Project: schema.ExportProject{
			ID:         p.ID,
			Name:       p.Name,
			TemplateID: p.TemplateID,
			Status:     p.Status,
			CreatedAt:  p.CreatedAt,
			UpdatedAt:  p.UpdatedAt,
		},
		Client:     p.Client,
		Modules:    []schema.ExportModule{},
		Files:      files,
		ExportedAt: now.UTC(),
	}
	if data.Files == nil {
		data.Files = []schema.FileRecord{}
	}
	if tmpl == nil {
		return data
	}

	latest := material.Latest(items)
	selected := make(map[string]bool, len(p.ModuleIDs))
	for _, id := range p.ModuleIDs {
		selected[id] = true
	}
	for _, m := range tmpl.Modules {
		if !selected[m.ID] {
			continue
		}
		em := schema.ExportModule{ID: m.ID, Name: m.Name, Sections: []schema.ExportSection{}}
		for _, s := range m.Sections {
			es := schema.ExportSection{ID: s.ID, Name: s.Name, Fields: []schema.ExportField{}}
			for _, f := range s.Fields {
				id := catalog.RequirementID(m.ID, s.ID, f.ID)
				ef := schema.ExportField{ID: id, Label: f.Label, Type: f.Type, Status: schema.StatusMissing}
				if it, ok := latest[id]; ok {
					ef.Status = it.Status
					ef.Value = fieldValue(f.Type, it)
				}
				es.Fields = append(es.Fields, ef)
			}
			em.Sections = append(em.Sections, es)
		}
		data.Modules = append(data.Modules, em)
	}
	return data
}

func fieldValue(t schema.FieldType, it schema.SubmittedItem) any {
	if it.Status == schema.StatusMissing {
		return nil
	}
	if t.IsFile() {
		if it.FileURL == "" {
			return nil
		}
		return schema.FileValue{URL: it.FileURL, FileName: fetch.FileName(it.FileURL)}
	}
	if it.Value == "" {
		return nil
	}
	return it.Value
}

// FieldIDs lists every field ID in the snapshot, in tree order.
func FieldIDs(data *schema.ExportData) []string {
	var ids []string
	for _, m := range data.Modules {
		for _, s := range m.Sections {
			for _, f := range s.Fields {
				ids = append(ids, f.ID)
			}
		}
	}
	return ids
}

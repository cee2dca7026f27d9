package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/materialcheck/internal/schema"
	"github.com/dshills/materialcheck/internal/schema/validate"
)

func TestBuiltins_AreWellFormed(t *testing.T) {
	r := NewRegistry()
	for _, id := range r.IDs() {
		t.Run(id, func(t *testing.T) {
			tmpl, ok := r.Lookup(id)
			if !ok {
				t.Fatalf("Lookup(%q) not found", id)
			}
			reqs := tmpl.Requirements(tmpl.ModuleIDs())
			if len(reqs) == 0 {
				t.Fatal("expected requirements for all modules")
			}
			if err := validate.Requirements(reqs); err != nil {
				t.Errorf("built-in template invalid: %v", err)
			}
		})
	}
}

func TestRequirements_ModuleSelectionDominates(t *testing.T) {
	tmpl := NewRegistry().Get("corporate")

	brandOnly := tmpl.Requirements([]string{"brand"})
	if len(brandOnly) != 5 {
		t.Fatalf("brand module: got %d requirements, want 5", len(brandOnly))
	}
	for _, r := range brandOnly {
		if r.ModuleID != "brand" {
			t.Errorf("requirement %s leaked from module %s", r.ID, r.ModuleID)
		}
	}

	all := tmpl.Requirements(tmpl.ModuleIDs())
	if len(all) != 13 {
		t.Errorf("all modules: got %d requirements, want 13", len(all))
	}
}

func TestRequirements_IDShape(t *testing.T) {
	reqs := NewRegistry().Requirements("restaurant", []string{"brand"})
	if reqs[0].ID != "brand.identity.company_name" {
		t.Errorf("first requirement id = %q", reqs[0].ID)
	}
	if reqs[0].Phase != schema.Phase1 || !reqs[0].Required {
		t.Errorf("company name should be a required phase-1 field: %+v", reqs[0])
	}
}

func TestGet_UnknownTemplateIsEmpty(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup("nonexistent"); ok {
		t.Error("Lookup should report unknown template")
	}
	reqs := r.Requirements("nonexistent", []string{"brand"})
	if reqs == nil || len(reqs) != 0 {
		t.Errorf("expected empty non-nil requirements, got %v", reqs)
	}
}

func TestRequirements_EmptySelection(t *testing.T) {
	reqs := NewRegistry().Requirements("corporate", nil)
	if len(reqs) != 0 {
		t.Errorf("expected no requirements for empty selection, got %d", len(reqs))
	}
}

func TestLoadFile_RegistersTemplate(t *testing.T) {
	yaml := `
id: clinic
name: Clinic
modules:
  - id: practice
    name: Practice
    sections:
      - id: info
        name: Info
        fields:
          - id: doctor_name
            label: Doctor name
            type: text
            required: true
            phase: 1
            rules:
              min_length: 3
              max_length: 80
`
	path := filepath.Join(t.TempDir(), "clinic.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if _, err := r.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	reqs := r.Requirements("clinic", []string{"practice"})
	if len(reqs) != 1 || reqs[0].ID != "practice.info.doctor_name" {
		t.Fatalf("unexpected requirements: %+v", reqs)
	}
	if reqs[0].Rules.MaxLength != 80 {
		t.Errorf("rules not decoded: %+v", reqs[0].Rules)
	}

	found := false
	for _, id := range r.IDs() {
		if id == "clinic" {
			found = true
		}
	}
	if !found {
		t.Error("IDs() missing registered template")
	}
}

func TestLoadFile_RejectsInvalidTemplate(t *testing.T) {
	yaml := `
id: broken
modules:
  - id: m
    sections:
      - id: s
        fields:
          - id: f
            label: F
            type: video
            phase: 1
`
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewRegistry().LoadFile(path); err == nil {
		t.Error("expected error for unknown field type")
	}
}

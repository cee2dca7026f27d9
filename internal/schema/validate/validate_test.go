package validate

import (
	"strings"
	"testing"

	"github.com/dshills/materialcheck/internal/schema"
)

const validJSON = `[
  {
    "requirement_id": "brand.identity.company_name",
    "value": "Acme Studio",
    "submitted_at": "2026-10-01T09:00:00Z",
    "status": "approved"
  },
  {
    "requirement_id": "brand.identity.logo",
    "file_url": "https://cdn.example.com/logo.png",
    "submitted_at": "2026-10-02T09:00:00Z"
  }
]`

func TestParseItems_Valid(t *testing.T) {
	items, err := ParseItems([]byte(validJSON))
	if err != nil {
		t.Fatalf("ParseItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[1].Status != schema.StatusPending {
		t.Errorf("empty status should normalize to pending, got %q", items[1].Status)
	}
}

func TestParseItems_InvalidJSON(t *testing.T) {
	_, err := ParseItems([]byte("{not json"))
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
	if !strings.HasPrefix(err.Error(), "JSON parse failed") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseItems_BadRequirementID(t *testing.T) {
	raw := `[{"requirement_id": "logo", "value": "x", "submitted_at": "2026-10-01T09:00:00Z"}]`
	_, err := ParseItems([]byte(raw))
	if err == nil || !strings.Contains(err.Error(), "module.section.field") {
		t.Errorf("expected id format error, got %v", err)
	}
}

func TestParseItems_InvalidStatus(t *testing.T) {
	raw := `[{"requirement_id": "a.b.c", "value": "x", "submitted_at": "2026-10-01T09:00:00Z", "status": "done"}]`
	_, err := ParseItems([]byte(raw))
	if err == nil || !strings.Contains(err.Error(), "invalid status") {
		t.Errorf("expected invalid status error, got %v", err)
	}
}

func TestParseItems_MissingTimestamp(t *testing.T) {
	raw := `[{"requirement_id": "a.b.c", "value": "x", "status": "pending"}]`
	_, err := ParseItems([]byte(raw))
	if err == nil || !strings.Contains(err.Error(), "submitted_at") {
		t.Errorf("expected submitted_at error, got %v", err)
	}
}

func TestParseItems_ValueAndFileExclusive(t *testing.T) {
	raw := `[{"requirement_id": "a.b.c", "value": "x", "file_url": "y", "submitted_at": "2026-10-01T09:00:00Z"}]`
	_, err := ParseItems([]byte(raw))
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("expected exclusivity error, got %v", err)
	}
}

func TestRequirements(t *testing.T) {
	base := schema.ContentRequirement{ID: "a.b.c", Label: "C", Type: schema.FieldText, Phase: schema.Phase1}

	tests := []struct {
		name    string
		mutate  func(r *schema.ContentRequirement)
		wantErr string
	}{
		{"valid", func(r *schema.ContentRequirement) {}, ""},
		{"bad id", func(r *schema.ContentRequirement) { r.ID = "A B" }, "format"},
		{"no label", func(r *schema.ContentRequirement) { r.Label = " " }, "label"},
		{"bad type", func(r *schema.ContentRequirement) { r.Type = "video" }, "field type"},
		{"bad phase", func(r *schema.ContentRequirement) { r.Phase = 4 }, "collection_phase"},
		{"bounds", func(r *schema.ContentRequirement) { r.Rules.MinLength, r.Rules.MaxLength = 10, 5 }, "exceeds"},
		{"select", func(r *schema.ContentRequirement) { r.Type = schema.FieldSelect }, "options"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.mutate(&r)
			err := Requirements([]schema.ContentRequirement{r})
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRequirements_Duplicate(t *testing.T) {
	r := schema.ContentRequirement{ID: "a.b.c", Label: "C", Type: schema.FieldText, Phase: schema.Phase2}
	err := Requirements([]schema.ContentRequirement{r, r})
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected duplicate error, got %v", err)
	}
}

package quality

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/dshills/materialcheck/internal/schema"
)

type mapFetcher map[string][]byte

func (m mapFetcher) Fetch(_ context.Context, ref string) (io.ReadCloser, error) {
	b, ok := m[ref]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

var at = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func fieldFixtures(t *testing.T) ([]schema.ContentRequirement, []schema.SubmittedItem, mapFetcher) {
	reqs := []schema.ContentRequirement{
		{ID: "brand.identity.company_name", Label: "Company name", Type: schema.FieldText, Required: true, Rules: schema.Rules{MinLength: 2, MaxLength: 60}},
		{ID: "brand.identity.logo", Label: "Logo", Type: schema.FieldLogo, Required: true, Rules: schema.Rules{MinWidth: 100, MinHeight: 100}},
		{ID: "brand.identity.primary_color", Label: "Primary color", Type: schema.FieldColor, Required: true},
		{ID: "about.story.history", Label: "History", Type: schema.FieldTextarea},
		{ID: "gallery.photos.hero", Label: "Hero", Type: schema.FieldImage, Required: true},
	}
	items := []schema.SubmittedItem{
		{RequirementID: "brand.identity.company_name", Value: "Acme Studio", SubmittedAt: at, Status: schema.StatusPending},
		{RequirementID: "brand.identity.logo", FileURL: "logo.png", SubmittedAt: at, Status: schema.StatusPending},
		{RequirementID: "brand.identity.primary_color", Value: "teal", SubmittedAt: at, Status: schema.StatusPending},
		{RequirementID: "gallery.photos.hero", FileURL: "gone.jpg", SubmittedAt: at, Status: schema.StatusPending},
	}
	return reqs, items, mapFetcher{"logo.png": pngBytes(t, 200, 200)}
}

func TestValidateAll_CatalogOrderAndKinds(t *testing.T) {
	reqs, items, f := fieldFixtures(t)
	results := ValidateAll(context.Background(), reqs, items, f, 2)

	want := []struct {
		id    string
		kind  schema.ResultKind
		valid bool
	}{
		{"brand.identity.company_name", schema.KindText, true},
		{"brand.identity.logo", schema.KindImage, true},
		{"brand.identity.primary_color", schema.KindText, false},
		{"gallery.photos.hero", schema.KindImage, false},
	}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d (unsubmitted fields are skipped)", len(results), len(want))
	}
	for i, w := range want {
		r := results[i]
		if r.FieldID != w.id || r.Kind != w.kind || r.IsValid() != w.valid {
			t.Errorf("result[%d] = {%s %s valid=%v}, want %+v", i, r.FieldID, r.Kind, r.IsValid(), w)
		}
	}
	if !contains(results[3].Image.Errors, "unable to fetch") {
		t.Errorf("fetch failure should be an error entry: %v", results[3].Image.Errors)
	}
}

func TestValidateAll_Cancelled(t *testing.T) {
	reqs, items, f := fieldFixtures(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, r := range ValidateAll(ctx, reqs, items, f, 1) {
		if r.IsValid() {
			t.Errorf("%s should not be valid after cancellation", r.FieldID)
		}
	}
}

func TestValidateField_OptionalImageWithoutFile(t *testing.T) {
	req := schema.ContentRequirement{ID: "m.s.f", Label: "F", Type: schema.FieldImage}
	res := ValidateField(context.Background(), req, schema.SubmittedItem{RequirementID: "m.s.f"}, nil)
	if res.Kind != schema.KindImage || !res.IsValid() {
		t.Errorf("optional image without a file should pass: %+v", res)
	}
}

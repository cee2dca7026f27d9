package render

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dshills/materialcheck/internal/catalog"
	"github.com/dshills/materialcheck/internal/schema"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func sampleData(t *testing.T) *schema.ExportData {
	t.Helper()
	tmpl, ok := catalog.NewRegistry().Lookup("restaurant")
	if !ok {
		t.Fatal("restaurant template missing")
	}
	p := schema.Project{
		ID:         "p-42",
		Name:       "Harbor Bistro site",
		TemplateID: "restaurant",
		ModuleIDs:  []string{"brand", "contact"},
		Status:     "collecting",
		Client:     schema.Client{CompanyName: "Harbor Bistro", ContactName: "Sam Lee", ContactEmail: "sam@harbor.test", PrimaryColor: "#0A5C8A"},
		CreatedAt:  now.Add(-72 * time.Hour),
		UpdatedAt:  now.Add(-time.Hour),
	}
	items := []schema.SubmittedItem{
		{RequirementID: "brand.identity.company_name", Value: "Harbor <Bistro>", SubmittedAt: now.Add(-48 * time.Hour), Status: schema.StatusApproved},
		{RequirementID: "brand.identity.logo", FileURL: "https://cdn.test/u/logo.png", SubmittedAt: now.Add(-24 * time.Hour), Status: schema.StatusPending},
	}
	files := []schema.FileRecord{
		{ID: "f1", FileName: "logo.png", FileType: "image/png", URL: "https://cdn.test/u/logo.png", UploadedAt: now.Add(-24 * time.Hour)},
		{ID: "f2", FileName: "menu.pdf", FileType: "application/pdf", URL: "https://cdn.test/u/menu.pdf", UploadedAt: now.Add(-24 * time.Hour)},
	}
	return Build(tmpl, p, items, files, now)
}

func TestBuild_EveryFieldPresent(t *testing.T) {
	data := sampleData(t)
	ids := FieldIDs(data)
	reqs := catalog.NewRegistry().Requirements("restaurant", []string{"brand", "contact"})
	if len(ids) != len(reqs) {
		t.Fatalf("export has %d fields, catalog has %d", len(ids), len(reqs))
	}
	f := data.Modules[0].Sections[0].Fields[1]
	fv, ok := f.Value.(schema.FileValue)
	if !ok || fv.FileName != "logo.png" || f.Status != schema.StatusPending {
		t.Errorf("logo field = %+v", f)
	}
	if data.Modules[0].Sections[0].Fields[2].Value != nil {
		t.Error("unsubmitted field should have a nil value")
	}
}

func TestRenderers_Equivalent(t *testing.T) {
	data := sampleData(t)
	ids := FieldIDs(data)
	for _, format := range []string{"json", "md", "html"} {
		r, err := NewRenderer(format)
		if err != nil {
			t.Fatalf("NewRenderer(%s): %v", format, err)
		}
		out, err := r.Render(data)
		if err != nil {
			t.Fatalf("Render(%s): %v", format, err)
		}
		s := string(out)
		for _, id := range ids {
			if !strings.Contains(s, id) {
				t.Errorf("%s output missing field %s", format, id)
			}
		}
		if format != "json" && !strings.Contains(s, NotProvided) {
			t.Errorf("%s output missing the not-provided marker", format)
		}
	}
}

func TestMarkdown_MultiLineValueStaysInEntry(t *testing.T) {
	data := sampleData(t)
	for mi := range data.Modules {
		for si := range data.Modules[mi].Sections {
			for fi, f := range data.Modules[mi].Sections[si].Fields {
				if f.ID == "contact.details.address" {
					data.Modules[mi].Sections[si].Fields[fi].Value = "12 Quay Street\r\nHarbor Town\n\nRear entrance"
				}
			}
		}
	}
	r, _ := NewRenderer("md")
	out, err := r.Render(data)
	if err != nil {
		t.Fatal(err)
	}
	want := ": 12 Quay Street\n  Harbor Town\n  \n  Rear entrance\n"
	if !strings.Contains(string(out), want) {
		t.Errorf("continuation lines not indented:\n%s", out)
	}
}

func TestJSON_NullForMissing(t *testing.T) {
	r, _ := NewRenderer("json")
	out, err := r.Render(sampleData(t))
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Modules []struct {
			Sections []struct {
				Fields []map[string]any `json:"fields"`
			} `json:"sections"`
		} `json:"modules"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	f := decoded.Modules[0].Sections[0].Fields[2]
	v, present := f["value"]
	if !present || v != nil {
		t.Errorf("missing value should be an explicit null, got %v (present=%v)", v, present)
	}
}

func TestHTML_Escapes(t *testing.T) {
	r, _ := NewRenderer("html")
	out, _ := r.Render(sampleData(t))
	if strings.Contains(string(out), "Harbor <Bistro>") {
		t.Error("html output should escape field values")
	}
}

func TestNewRenderer_Unknown(t *testing.T) {
	if _, err := NewRenderer("pdf"); err == nil {
		t.Error("expected error for unknown format")
	}
}

type stubFetcher map[string]string

func (s stubFetcher) Fetch(_ context.Context, ref string) (io.ReadCloser, error) {
	body, ok := s[ref]
	if !ok {
		return nil, errors.New("HTTP 404")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func TestWriteArchive_PartialSuccess(t *testing.T) {
	data := sampleData(t)
	var buf bytes.Buffer
	m, err := WriteArchive(context.Background(), &buf, data, stubFetcher{"https://cdn.test/u/logo.png": "PNGDATA"}, 2)
	if err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}
	if len(m.Files) != 1 || len(m.Warnings) != 1 || !strings.Contains(m.Warnings[0], "f2") {
		t.Errorf("manifest = %+v", m)
	}
	if m.ExportID == "" {
		t.Error("manifest missing export id")
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reading zip: %v", err)
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"project.json", "project.md", "project.html", "files/f1-logo.png", "manifest.json"} {
		if !names[want] {
			t.Errorf("archive missing %s (have %v)", want, names)
		}
	}
	if names["files/f2-menu.pdf"] {
		t.Error("failed fetch should not be bundled")
	}
}

func TestWriteArchive_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if _, err := WriteArchive(ctx, &buf, sampleData(t), stubFetcher{}, 1); err == nil {
		t.Error("expected error for cancelled context")
	}
	if buf.Len() != 0 {
		t.Error("cancelled export should not write")
	}
}

func TestRenderReport_Markdown(t *testing.T) {
	v := &ReportView{
		Status: schema.ProjectMaterialStatus{ProjectID: "p-42", ClientName: "Harbor Bistro"},
		Report: schema.ValidationReport{OverallScore: 72, Summary: schema.ReportSummary{CriticalIssues: []string{"Logo: no file uploaded"}}},
		Results: []schema.ValidationResult{{
			Kind: schema.KindText, FieldID: "brand.identity.tagline", Label: "Tagline",
			Text: &schema.TextValidationResult{IsValid: true, Warnings: []string{"contains emoji"}},
		}},
	}
	out, err := RenderReport("md", v)
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	for _, want := range []string{"Harbor Bistro", "72/100", "Logo: no file uploaded", "brand.identity.tagline", "**warning:** contains emoji"} {
		if !strings.Contains(s, want) {
			t.Errorf("markdown missing %q:\n%s", want, s)
		}
	}
	if _, err := RenderReport("html", v); err == nil {
		t.Error("expected error for unsupported report format")
	}
}

func TestRenderStatus(t *testing.T) {
	v := &StatusView{
		Status: schema.ProjectMaterialStatus{
			ProjectID: "p-42",
			Progress:  schema.Progress{Total: 1, Missing: 1},
			Items: []schema.ItemStatus{{
				Requirement: schema.ContentRequirement{ID: "brand.identity.logo", Label: "Logo", Phase: schema.Phase1, Required: true},
				Status:      schema.StatusMissing,
			}},
		},
		Trigger: schema.ReminderTrigger{ShouldRemind: true, Urgency: schema.UrgencyCritical, Reason: "1 required Phase-1 item(s) still missing after 9 days"},
	}
	out, err := RenderStatus("md", v)
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if !strings.Contains(s, "due (critical)") || !strings.Contains(s, "`brand.identity.logo` | 1 | yes | missing") {
		t.Errorf("status markdown:\n%s", s)
	}

	js, err := RenderStatus("json", v)
	if err != nil || !strings.Contains(string(js), `"reminder"`) {
		t.Errorf("status json: %s, %v", js, err)
	}
}

func TestRenderReminder_NotDue(t *testing.T) {
	out, err := RenderReminder("md", &ReminderView{ProjectID: "p-42", Trigger: schema.ReminderTrigger{Reason: "reminder sent recently"}})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "No reminder due for p-42: reminder sent recently\n" {
		t.Errorf("got %q", out)
	}
}

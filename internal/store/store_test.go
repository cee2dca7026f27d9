package store

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/dshills/materialcheck/internal/schema"
)

var t0 = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func sampleBundle() *Bundle {
	return &Bundle{
		Project: schema.Project{
			ID:         "p-1",
			Name:       "Harbor Bistro site",
			TemplateID: "restaurant",
			ModuleIDs:  []string{"brand", "menu"},
			Status:     "collecting",
			Client:     schema.Client{CompanyName: "Harbor Bistro", ContactName: "Sam", ContactEmail: "sam@harbor.test"},
			CreatedAt:  t0,
			UpdatedAt:  t0,
		},
		Items: []schema.SubmittedItem{
			{RequirementID: "brand.identity.company_name", Value: "Harbor Bistro", SubmittedAt: t0.Add(time.Hour), Status: schema.StatusApproved},
			{RequirementID: "brand.identity.logo", FileURL: "https://cdn.test/logo.png", SubmittedAt: t0.Add(2 * time.Hour), Status: schema.StatusPending},
		},
		Files: []schema.FileRecord{
			{ID: "f1", FileName: "logo.png", FileType: "image/png", URL: "https://cdn.test/logo.png", UploadedAt: t0.Add(2 * time.Hour)},
		},
	}
}

func testRepository(t *testing.T, r Repository) {
	ctx := context.Background()
	t.Cleanup(func() { r.Close() })

	if _, err := r.Project(ctx, "p-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown project, got %v", err)
	}
	if err := r.PutItems(ctx, "p-1", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("PutItems for unknown project: expected ErrNotFound, got %v", err)
	}

	want := sampleBundle()
	if err := Save(ctx, r, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(ctx, r, "p-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got.Project, want.Project) {
		t.Errorf("project round trip:\n got %+v\nwant %+v", got.Project, want.Project)
	}
	if !reflect.DeepEqual(got.Items, want.Items) {
		t.Errorf("items round trip:\n got %+v\nwant %+v", got.Items, want.Items)
	}
	if !reflect.DeepEqual(got.Files, want.Files) {
		t.Errorf("files round trip:\n got %+v\nwant %+v", got.Files, want.Files)
	}

	if err := r.PutItems(ctx, "p-1", want.Items[:1]); err != nil {
		t.Fatalf("PutItems: %v", err)
	}
	items, _ := r.Items(ctx, "p-1")
	if len(items) != 1 {
		t.Errorf("PutItems should replace, got %d items", len(items))
	}

	sent := t0.Add(72 * time.Hour)
	if err := r.MarkReminded(ctx, "p-1", sent); err != nil {
		t.Fatalf("MarkReminded: %v", err)
	}
	p, _ := r.Project(ctx, "p-1")
	if p.LastReminderSentAt == nil || !p.LastReminderSentAt.Equal(sent) {
		t.Errorf("LastReminderSentAt = %v, want %v", p.LastReminderSentAt, sent)
	}
	if err := r.MarkReminded(ctx, "nope", sent); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkReminded unknown: expected ErrNotFound, got %v", err)
	}

	second := sampleBundle().Project
	second.ID = "p-0"
	if err := r.SaveProject(ctx, second); err != nil {
		t.Fatal(err)
	}
	all, err := r.Projects(ctx)
	if err != nil {
		t.Fatalf("Projects: %v", err)
	}
	if len(all) != 2 || all[0].ID != "p-0" || all[1].ID != "p-1" {
		t.Errorf("Projects should be sorted by id: %+v", all)
	}
	empty, _ := r.Items(ctx, "p-0")
	if empty == nil || len(empty) != 0 {
		t.Errorf("project without items should return an empty slice, got %v", empty)
	}
}

func TestMemory(t *testing.T) {
	testRepository(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	r, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	testRepository(t, r)
}

func TestSQLite_File(t *testing.T) {
	path := t.TempDir() + "/materialcheck.db"
	ctx := context.Background()
	r, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(ctx, r, sampleBundle()); err != nil {
		t.Fatal(err)
	}
	r.Close()

	reopened, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	b, err := Load(ctx, reopened, "p-1")
	if err != nil || len(b.Items) != 2 {
		t.Errorf("data did not persist: %+v, %v", b, err)
	}
}

// TestRedis runs against a live server when MATERIALCHECK_TEST_REDIS_URL is set.
func TestRedis(t *testing.T) {
	url := os.Getenv("MATERIALCHECK_TEST_REDIS_URL")
	if url == "" {
		t.Skip("MATERIALCHECK_TEST_REDIS_URL not set")
	}
	r, err := OpenRedis(context.Background(), url)
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	if err := r.Client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatal(err)
	}
	testRepository(t, r)
}

func TestOpen_Unknown(t *testing.T) {
	if _, err := Open(context.Background(), "postgres", ""); err == nil {
		t.Error("expected error for unknown store kind")
	}
	if _, err := OpenRedis(context.Background(), "not a url"); err == nil {
		t.Error("expected error for malformed redis URL")
	}
}

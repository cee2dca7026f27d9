// Package store persists projects, their submissions and file records.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/materialcheck/internal/schema"
)

// ErrNotFound is returned when a project does not exist.
var ErrNotFound = errors.New("not found")

// Repository is the persistence boundary. Item and file lists are replaced
// wholesale by their Put methods.
type Repository interface {
	Project(ctx context.Context, id string) (*schema.Project, error)
	Projects(ctx context.Context) ([]schema.Project, error)
	SaveProject(ctx context.Context, p schema.Project) error
	Items(ctx context.Context, projectID string) ([]schema.SubmittedItem, error)
	PutItems(ctx context.Context, projectID string, items []schema.SubmittedItem) error
	Files(ctx context.Context, projectID string) ([]schema.FileRecord, error)
	PutFiles(ctx context.Context, projectID string, files []schema.FileRecord) error
	MarkReminded(ctx context.Context, projectID string, at time.Time) error
	Close() error
}

// Open returns the repository named by kind: "memory", "sqlite" (dsn is a
// file path or ":memory:") or "redis" (dsn is a redis:// URL).
func Open(ctx context.Context, kind, dsn string) (Repository, error) {
	switch kind {
	case "memory", "":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(ctx, dsn)
	case "redis":
		return OpenRedis(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store %q: supported stores are memory, sqlite, redis", kind)
	}
}

// Bundle is a project with everything stored for it.
type Bundle struct {
	Project schema.Project
	Items   []schema.SubmittedItem
	Files   []schema.FileRecord
}

// Load reads a project and its items and files.
func Load(ctx context.Context, r Repository, id string) (*Bundle, error) {
	p, err := r.Project(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := r.Items(ctx, id)
	if err != nil {
		return nil, err
	}
	files, err := r.Files(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Bundle{Project: *p, Items: items, Files: files}, nil
}

// Save writes a project and replaces its items and files.
func Save(ctx context.Context, r Repository, b *Bundle) error {
	if err := r.SaveProject(ctx, b.Project); err != nil {
		return err
	}
	if err := r.PutItems(ctx, b.Project.ID, b.Items); err != nil {
		return err
	}
	return r.PutFiles(ctx, b.Project.ID, b.Files)
}

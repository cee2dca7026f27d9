package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dshills/materialcheck/internal/schema"
)

// Memory is a goroutine-safe in-process Repository.
type Memory struct {
	mu       sync.RWMutex
	projects map[string]schema.Project
	items    map[string][]schema.SubmittedItem
	files    map[string][]schema.FileRecord
}

func NewMemory() *Memory {
	return &Memory{
		projects: make(map[string]schema.Project),
		items:    make(map[string][]schema.SubmittedItem),
		files:    make(map[string][]schema.FileRecord),
	}
}

func (m *Memory) Project(_ context.Context, id string) (*schema.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	p.ModuleIDs = append([]string(nil), p.ModuleIDs...)
	return &p, nil
}

func (m *Memory) Projects(_ context.Context) ([]schema.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]schema.Project, 0, len(m.projects))
	for _, p := range m.projects {
		p.ModuleIDs = append([]string(nil), p.ModuleIDs...)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SaveProject(_ context.Context, p schema.Project) error {
	if p.ID == "" {
		return fmt.Errorf("project id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ModuleIDs = append([]string(nil), p.ModuleIDs...)
	m.projects[p.ID] = p
	return nil
}

func (m *Memory) Items(_ context.Context, projectID string) ([]schema.SubmittedItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]schema.SubmittedItem{}, m.items[projectID]...), nil
}

func (m *Memory) PutItems(_ context.Context, projectID string, items []schema.SubmittedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[projectID]; !ok {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	m.items[projectID] = append([]schema.SubmittedItem(nil), items...)
	return nil
}

func (m *Memory) Files(_ context.Context, projectID string) ([]schema.FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]schema.FileRecord{}, m.files[projectID]...), nil
}

func (m *Memory) PutFiles(_ context.Context, projectID string, files []schema.FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[projectID]; !ok {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	m.files[projectID] = append([]schema.FileRecord(nil), files...)
	return nil
}

func (m *Memory) MarkReminded(_ context.Context, projectID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[projectID]
	if !ok {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	at = at.UTC()
	p.LastReminderSentAt = &at
	m.projects[projectID] = p
	return nil
}

func (m *Memory) Close() error { return nil }

// Package bundle reads and writes project bundle files: one project with
// its submissions and file records, as JSON or YAML.
package bundle

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dshills/materialcheck/internal/fetch"
	"github.com/dshills/materialcheck/internal/schema"
	"github.com/dshills/materialcheck/internal/schema/validate"
)

// Bundle is the on-disk interchange format for one project.
type Bundle struct {
	Project schema.Project         `json:"project" yaml:"project"`
	Items   []schema.SubmittedItem `json:"items" yaml:"items"`
	Files   []schema.FileRecord    `json:"files" yaml:"files"`
}

// Loaded is a bundle read from disk with derived metadata.
type Loaded struct {
	Bundle
	Path string
	Hash string // "sha256:<hex>"
}

// Load reads a bundle file. Files ending in .yaml or .yml are YAML,
// everything else JSON. Items are validated; file records without an ID
// are assigned one.
func Load(path string) (*Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bundle file: %w", err)
	}
	b, err := Parse(data, isYAML(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return &Loaded{
		Bundle: *b,
		Path:   path,
		Hash:   fmt.Sprintf("sha256:%x", sum),
	}, nil
}

// Parse decodes and validates bundle content.
func Parse(data []byte, asYAML bool) (*Bundle, error) {
	var b Bundle
	if asYAML {
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("YAML parse failed: %w", err)
		}
	} else if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("JSON parse failed: %w", err)
	}
	if strings.TrimSpace(b.Project.ID) == "" {
		return nil, fmt.Errorf("project.id is required")
	}
	if b.Items == nil {
		b.Items = []schema.SubmittedItem{}
	}
	if err := validate.Items(b.Items); err != nil {
		return nil, err
	}
	if b.Files == nil {
		b.Files = []schema.FileRecord{}
	}
	for i := range b.Files {
		f := &b.Files[i]
		if f.URL == "" {
			return nil, fmt.Errorf("files[%d]: url is required", i)
		}
		if f.ID == "" {
			f.ID = uuid.New().String()
		}
		if f.FileName == "" {
			f.FileName = fetch.FileName(f.URL)
		}
	}
	return &b, nil
}

// Write encodes b to path in the format implied by its extension.
func Write(path string, b *Bundle) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(b)
	} else {
		data, err = json.MarshalIndent(b, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding bundle: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing bundle file: %w", err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

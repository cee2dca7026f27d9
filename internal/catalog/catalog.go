package catalog

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dshills/materialcheck/internal/schema"
	"github.com/dshills/materialcheck/internal/schema/validate"
)

// Template describes every content field a project built on it may need.
type Template struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Modules []Module `yaml:"modules"`
}

// Module is an optional feature area of a template; projects select modules.
type Module struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Sections []Section `yaml:"sections"`
}

// Section groups related fields inside a module.
type Section struct {
	ID     string  `yaml:"id"`
	Name   string  `yaml:"name"`
	Fields []Field `yaml:"fields"`
}

// Field is one content slot inside a section.
type Field struct {
	ID       string           `yaml:"id"`
	Label    string           `yaml:"label"`
	Type     schema.FieldType `yaml:"type"`
	Required bool             `yaml:"required"`
	Phase    schema.Phase     `yaml:"phase"`
	Rules    schema.Rules     `yaml:"rules"`
}

// Requirements flattens the template into requirements, keeping only the
// modules named in moduleIDs. Module selection dominates field-level
// Required: a deselected module contributes nothing. Order follows the
// template definition.
func (t *Template) Requirements(moduleIDs []string) []schema.ContentRequirement {
	if t == nil {
		return []schema.ContentRequirement{}
	}
	selected := make(map[string]bool, len(moduleIDs))
	for _, id := range moduleIDs {
		selected[id] = true
	}
	out := []schema.ContentRequirement{}
	for _, m := range t.Modules {
		if !selected[m.ID] {
			continue
		}
		for _, s := range m.Sections {
			for _, f := range s.Fields {
				out = append(out, schema.ContentRequirement{
					ID:        RequirementID(m.ID, s.ID, f.ID),
					ModuleID:  m.ID,
					SectionID: s.ID,
					FieldID:   f.ID,
					Label:     f.Label,
					Type:      f.Type,
					Required:  f.Required,
					Phase:     f.Phase,
					Rules:     f.Rules,
				})
			}
		}
	}
	return out
}

// ModuleIDs returns the IDs of all modules in template order.
func (t *Template) ModuleIDs() []string {
	if t == nil {
		return nil
	}
	ids := make([]string, 0, len(t.Modules))
	for _, m := range t.Modules {
		ids = append(ids, m.ID)
	}
	return ids
}

// RequirementID builds the stable "module.section.field" key.
func RequirementID(module, section, field string) string {
	return module + "." + section + "." + field
}

// Registry resolves template IDs to templates. Built-in templates are a
// closed set; additional templates can be registered from YAML.
type Registry struct {
	mu     sync.RWMutex
	custom map[string]*Template
}

// NewRegistry returns a registry holding only the built-in templates.
func NewRegistry() *Registry {
	return &Registry{custom: make(map[string]*Template)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// Lookup returns the template for id and whether it exists.
// Registered templates shadow built-ins with the same ID.
func (r *Registry) Lookup(id string) (*Template, bool) {
	r.mu.RLock()
	t, ok := r.custom[id]
	r.mu.RUnlock()
	if ok {
		return t, true
	}
	return builtin(id)
}

// Get returns the template for id, or an empty template when id is unknown.
// An unknown template therefore yields zero requirements rather than an error.
func (r *Registry) Get(id string) *Template {
	if t, ok := r.Lookup(id); ok {
		return t
	}
	return &Template{ID: id}
}

// Requirements is shorthand for Get(templateID).Requirements(moduleIDs).
func (r *Registry) Requirements(templateID string, moduleIDs []string) []schema.ContentRequirement {
	return r.Get(templateID).Requirements(moduleIDs)
}

// Register validates t and adds it to the registry.
func (r *Registry) Register(t *Template) error {
	if t == nil || t.ID == "" {
		return fmt.Errorf("template id is required")
	}
	if err := validate.Requirements(t.Requirements(t.ModuleIDs())); err != nil {
		return fmt.Errorf("template %s: %w", t.ID, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom[t.ID] = t
	return nil
}

// IDs returns every known template ID, sorted.
func (r *Registry) IDs() []string {
	ids := append([]string{}, builtinIDs...)
	r.mu.RLock()
	for id := range r.custom {
		if _, ok := builtin(id); !ok {
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// LoadFile reads a YAML template definition and registers it.
func (r *Registry) LoadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template file: %w", err)
	}
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing template file: %w", err)
	}
	if err := r.Register(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

var builtinIDs = []string{"corporate", "ecommerce", "restaurant"}

func builtin(id string) (*Template, bool) {
	switch id {
	case "corporate":
		return corporate(), true
	case "ecommerce":
		return ecommerce(), true
	case "restaurant":
		return restaurant(), true
	default:
		return nil, false
	}
}

package validate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/materialcheck/internal/schema"
)

var requirementIDPattern = regexp.MustCompile(`^[a-z0-9_-]+\.[a-z0-9_-]+\.[a-z0-9_-]+$`)

// RequirementIDPattern reports whether id has the "module.section.field" shape.
func RequirementIDPattern(id string) bool {
	return requirementIDPattern.MatchString(id)
}

// ParseItems unmarshals a JSON array of submission records and validates
// each one. An empty status is normalized to pending.
func ParseItems(raw []byte) ([]schema.SubmittedItem, error) {
	var items []schema.SubmittedItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("JSON parse failed: %w", err)
	}
	if err := Items(items); err != nil {
		return nil, err
	}
	return items, nil
}

// Items validates already-decoded submission records in place.
func Items(items []schema.SubmittedItem) error {
	for i := range items {
		if err := validateItem(&items[i], i); err != nil {
			return err
		}
	}
	return nil
}

func validateItem(item *schema.SubmittedItem, idx int) error {
	prefix := fmt.Sprintf("item[%d]", idx)

	if !requirementIDPattern.MatchString(item.RequirementID) {
		return fmt.Errorf("%s: requirement_id %q does not match module.section.field format", prefix, item.RequirementID)
	}
	if item.Status == "" {
		item.Status = schema.StatusPending
	}
	if !schema.IsValidStatus(item.Status) {
		return fmt.Errorf("%s: invalid status %q (must be missing, pending, approved, or rejected)", prefix, item.Status)
	}
	if item.Status != schema.StatusMissing && item.SubmittedAt.IsZero() {
		return fmt.Errorf("%s: submitted_at is required for status %s", prefix, item.Status)
	}
	if item.Value != "" && item.FileURL != "" {
		return fmt.Errorf("%s: value and file_url are mutually exclusive", prefix)
	}
	return nil
}

// Requirements validates a flattened catalog: unique well-formed IDs, known
// field types, phases 1-3 and consistent length bounds.
func Requirements(reqs []schema.ContentRequirement) error {
	seen := make(map[string]bool, len(reqs))
	for i, r := range reqs {
		prefix := fmt.Sprintf("requirement[%d]", i)
		if !requirementIDPattern.MatchString(r.ID) {
			return fmt.Errorf("%s: id %q does not match module.section.field format", prefix, r.ID)
		}
		if seen[r.ID] {
			return fmt.Errorf("%s: duplicate id %q", prefix, r.ID)
		}
		seen[r.ID] = true
		if strings.TrimSpace(r.Label) == "" {
			return fmt.Errorf("%s: label is required", prefix)
		}
		if !schema.IsValidFieldType(r.Type) {
			return fmt.Errorf("%s: unknown field type %q", prefix, r.Type)
		}
		if r.Phase < schema.Phase1 || r.Phase > schema.Phase3 {
			return fmt.Errorf("%s: collection_phase %d must be 1, 2, or 3", prefix, r.Phase)
		}
		if r.Rules.MaxLength > 0 && r.Rules.MinLength > r.Rules.MaxLength {
			return fmt.Errorf("%s: min_length %d exceeds max_length %d", prefix, r.Rules.MinLength, r.Rules.MaxLength)
		}
		if r.Type == schema.FieldSelect && len(r.Rules.Options) == 0 {
			return fmt.Errorf("%s: select field requires options", prefix)
		}
	}
	return nil
}

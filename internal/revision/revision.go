package revision

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Revision describes how a resubmitted value differs from the previous one.
// Patch is in diff-match-patch text format so reviewers can apply or
// display it; it is empty when nothing changed.
type Revision struct {
	RequirementID string `json:"requirement_id"`
	Changed       bool   `json:"changed"`
	Inserted      int    `json:"inserted"` // runes
	Deleted       int    `json:"deleted"`  // runes
	Patch         string `json:"patch,omitempty"`
}

// Diff compares before and after. Both are normalized (CRLF to LF,
// trailing whitespace trimmed per line) so resubmissions that only differ
// in line endings do not show up as changes.
func Diff(requirementID, before, after string) Revision {
	before = normalize(before)
	after = normalize(after)
	rev := Revision{RequirementID: requirementID}
	if before == after {
		return rev
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			rev.Inserted += utf8.RuneCountInString(d.Text)
		case diffmatchpatch.DiffDelete:
			rev.Deleted += utf8.RuneCountInString(d.Text)
		}
	}
	rev.Changed = true
	rev.Patch = dmp.PatchToText(dmp.PatchMake(before, diffs))
	return rev
}

// Pretty returns a human-readable inline rendering of the change, with
// deletions in [-...-] and insertions in {+...+}.
func Pretty(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(normalize(before), normalize(after), false))
	var out []byte
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			out = append(out, "{+"+d.Text+"+}"...)
		case diffmatchpatch.DiffDelete:
			out = append(out, "[-"+d.Text+"-]"...)
		default:
			out = append(out, d.Text...)
		}
	}
	return string(out)
}

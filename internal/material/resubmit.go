package material

import (
	"time"

	"github.com/dshills/materialcheck/internal/revision"
	"github.com/dshills/materialcheck/internal/schema"
)

// Resubmit replaces the value or file of prev and resets its status to
// pending, returning the revision reviewers need to re-check.
func Resubmit(prev schema.SubmittedItem, value, fileURL string, at time.Time) (schema.SubmittedItem, revision.Revision) {
	var rev revision.Revision
	if fileURL != "" || prev.FileURL != "" {
		rev = revision.Diff(prev.RequirementID, prev.FileURL, fileURL)
	} else {
		rev = revision.Diff(prev.RequirementID, prev.Value, value)
	}
	next := schema.SubmittedItem{
		RequirementID: prev.RequirementID,
		Value:         value,
		FileURL:       fileURL,
		SubmittedAt:   at,
		Status:        schema.StatusPending,
	}
	return next, rev
}

// Merge folds incoming records into existing ones. An incoming record whose
// content differs from the stored one is a resubmission and goes back to
// pending; one with identical content only carries a review status change.
// Changed content older than the stored submission is ignored.
// Records are never removed. Revisions are returned for changed content.
func Merge(existing, incoming []schema.SubmittedItem) ([]schema.SubmittedItem, []revision.Revision) {
	current := Latest(existing)
	order := make([]string, 0, len(current))
	seen := make(map[string]bool, len(existing))
	for _, item := range existing {
		if !seen[item.RequirementID] {
			seen[item.RequirementID] = true
			order = append(order, item.RequirementID)
		}
	}

	var revs []revision.Revision
	for _, in := range incoming {
		prev, ok := current[in.RequirementID]
		if !ok {
			current[in.RequirementID] = in
			if !seen[in.RequirementID] {
				seen[in.RequirementID] = true
				order = append(order, in.RequirementID)
			}
			continue
		}
		if prev.Value == in.Value && prev.FileURL == in.FileURL {
			prev.Status = in.Status
			current[in.RequirementID] = prev
			continue
		}
		if in.SubmittedAt.Before(prev.SubmittedAt) {
			// Older content never replaces a newer submission.
			continue
		}
		next, rev := Resubmit(prev, in.Value, in.FileURL, in.SubmittedAt)
		current[in.RequirementID] = next
		if rev.Changed {
			revs = append(revs, rev)
		}
	}

	out := make([]schema.SubmittedItem, 0, len(order))
	for _, id := range order {
		out = append(out, current[id])
	}
	return out, revs
}

package material

import (
	"math"
	"sort"
	"time"

	"github.com/dshills/materialcheck/internal/catalog"
	"github.com/dshills/materialcheck/internal/schema"
)

// Calculator joins a requirement catalog against submitted content.
type Calculator struct {
	registry *catalog.Registry
}

// NewCalculator returns a Calculator reading templates from reg.
// A nil reg uses catalog.Default().
func NewCalculator(reg *catalog.Registry) *Calculator {
	if reg == nil {
		reg = catalog.Default()
	}
	return &Calculator{registry: reg}
}

// Calculate derives the material status of a project. It never fails: an
// unknown template or an empty module selection yields total == 0, which
// is reported as 100% complete.
func (c *Calculator) Calculate(projectID, clientName, templateID string, moduleIDs []string, submitted []schema.SubmittedItem) schema.ProjectMaterialStatus {
	reqs := c.registry.Requirements(templateID, moduleIDs)
	st := FromRequirements(projectID, clientName, reqs, submitted)
	st.TemplateID = templateID
	return st
}

// FromRequirements derives the material status for an explicit requirement
// list. Submissions for requirements outside reqs are ignored; duplicates
// for one requirement resolve to the most recent SubmittedAt, later entries
// winning ties.
func FromRequirements(projectID, clientName string, reqs []schema.ContentRequirement, submitted []schema.SubmittedItem) schema.ProjectMaterialStatus {
	latest := Latest(submitted)

	st := schema.ProjectMaterialStatus{
		ProjectID:  projectID,
		ClientName: clientName,
		Items:      make([]schema.ItemStatus, 0, len(reqs)),
	}
	for _, r := range reqs {
		entry := schema.ItemStatus{Requirement: r, Status: schema.StatusMissing}
		if item, ok := latest[r.ID]; ok && item.Status != schema.StatusMissing {
			entry.Status = item.Status
			at := item.SubmittedAt
			entry.SubmittedAt = &at
		}
		st.Items = append(st.Items, entry)

		switch entry.Status {
		case schema.StatusApproved:
			st.Progress.Approved++
			st.Progress.Submitted++
		case schema.StatusPending, schema.StatusRejected:
			st.Progress.Submitted++
		}
	}
	st.Progress.Total = len(reqs)
	st.Progress.Missing = st.Progress.Total - st.Progress.Submitted
	st.Progress.CompletionRate = CompletionRate(st.Progress.Approved, st.Progress.Total)
	return st
}

// CompletionRate returns round(100 * approved / total); an empty
// requirement set is vacuously complete.
func CompletionRate(approved, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(100 * float64(approved) / float64(total)))
}

// Latest indexes submissions by requirement ID, keeping the most recent.
func Latest(submitted []schema.SubmittedItem) map[string]schema.SubmittedItem {
	latest := make(map[string]schema.SubmittedItem, len(submitted))
	for _, item := range submitted {
		prev, ok := latest[item.RequirementID]
		if !ok || !item.SubmittedAt.Before(prev.SubmittedAt) {
			latest[item.RequirementID] = item
		}
	}
	return latest
}

// OutstandingRequired returns the required items the client still owes
// (missing or rejected), ordered by phase so Phase-1 items come first.
func OutstandingRequired(st schema.ProjectMaterialStatus) []schema.ItemStatus {
	var out []schema.ItemStatus
	for _, it := range st.Items {
		if it.Requirement.Required && it.Status.Outstanding() {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Requirement.Phase < out[j].Requirement.Phase
	})
	return out
}

// OutstandingInPhase counts the outstanding required items of one phase.
func OutstandingInPhase(st schema.ProjectMaterialStatus, phase schema.Phase) int {
	n := 0
	for _, it := range st.Items {
		if it.Requirement.Phase == phase && it.Requirement.Required && it.Status.Outstanding() {
			n++
		}
	}
	return n
}

// LastSubmission returns the most recent submission time across all items,
// or nil when nothing has been submitted.
func LastSubmission(st schema.ProjectMaterialStatus) *time.Time {
	var last *time.Time
	for _, it := range st.Items {
		if it.SubmittedAt != nil && (last == nil || it.SubmittedAt.After(*last)) {
			t := *it.SubmittedAt
			last = &t
		}
	}
	return last
}

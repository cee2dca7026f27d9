package quality

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/materialcheck/internal/fetch"
	"github.com/dshills/materialcheck/internal/schema"
)

// ValidateField validates one submission against its requirement. File
// fields are opened through f; a fetch failure becomes an error entry on
// the image result. The result is never nil.
func ValidateField(ctx context.Context, req schema.ContentRequirement, item schema.SubmittedItem, f fetch.Fetcher) schema.ValidationResult {
	out := schema.ValidationResult{
		FieldID:  req.ID,
		Label:    req.Label,
		Required: req.Required,
	}
	switch req.Type {
	case schema.FieldImage, schema.FieldLogo:
		out.Kind = schema.KindImage
		img := validateFile(ctx, req, item, f)
		out.Image = &img
	case schema.FieldColor:
		out.Kind = schema.KindText
		txt := ValidateColor(item.Value, req.Required)
		out.Text = &txt
	case schema.FieldSelect:
		out.Kind = schema.KindText
		txt := ValidateChoice(item.Value, req.Rules.Options, req.Required)
		out.Text = &txt
	default:
		out.Kind = schema.KindText
		txt := ValidateText(item.Value, TextSpecFor(req))
		out.Text = &txt
	}
	return out
}

func validateFile(ctx context.Context, req schema.ContentRequirement, item schema.SubmittedItem, f fetch.Fetcher) schema.ImageValidationResult {
	failed := func(msg string) schema.ImageValidationResult {
		return schema.ImageValidationResult{Errors: []string{msg}, Warnings: []string{}, Suggestions: []string{}}
	}
	if item.FileURL == "" {
		if !req.Required {
			return schema.ImageValidationResult{IsValid: true, Errors: []string{}, Warnings: []string{}, Suggestions: []string{}}
		}
		return failed("no file uploaded")
	}
	if f == nil {
		return failed("no file source configured")
	}
	rc, err := f.Fetch(ctx, item.FileURL)
	if err != nil {
		return failed(fmt.Sprintf("unable to fetch file: %v", err))
	}
	defer rc.Close()
	return ValidateImage(rc, ImageSpecFor(req))
}

// ValidateAll validates every requirement that has a submission, in catalog
// order. Fields are checked concurrently with at most limit in flight
// (limit <= 0 means unbounded). Fields not yet started when ctx ends are
// reported as invalid.
func ValidateAll(ctx context.Context, reqs []schema.ContentRequirement, items []schema.SubmittedItem, f fetch.Fetcher, limit int) []schema.ValidationResult {
	latest := make(map[string]schema.SubmittedItem, len(items))
	for _, it := range items {
		if prev, ok := latest[it.RequirementID]; !ok || !it.SubmittedAt.Before(prev.SubmittedAt) {
			latest[it.RequirementID] = it
		}
	}

	type job struct {
		req  schema.ContentRequirement
		item schema.SubmittedItem
	}
	var jobs []job
	for _, r := range reqs {
		it, ok := latest[r.ID]
		if !ok || it.Status == schema.StatusMissing {
			continue
		}
		jobs = append(jobs, job{r, it})
	}

	results := make([]schema.ValidationResult, len(jobs))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = cancelled(j.req, err)
				return nil
			}
			results[i] = ValidateField(ctx, j.req, j.item, f)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func cancelled(req schema.ContentRequirement, err error) schema.ValidationResult {
	msg := fmt.Sprintf("validation not run: %v", err)
	out := schema.ValidationResult{FieldID: req.ID, Label: req.Label, Required: req.Required}
	if req.Type.IsFile() {
		out.Kind = schema.KindImage
		out.Image = &schema.ImageValidationResult{Errors: []string{msg}, Warnings: []string{}, Suggestions: []string{}}
		return out
	}
	out.Kind = schema.KindText
	out.Text = &schema.TextValidationResult{Errors: []string{msg}, Warnings: []string{}, Suggestions: []string{}}
	return out
}

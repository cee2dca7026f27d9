package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/materialcheck/internal/bundle"
	"github.com/dshills/materialcheck/internal/logging"
	"github.com/dshills/materialcheck/internal/material"
	"github.com/dshills/materialcheck/internal/notify"
	"github.com/dshills/materialcheck/internal/quality"
	"github.com/dshills/materialcheck/internal/reminder"
	"github.com/dshills/materialcheck/internal/render"
	"github.com/dshills/materialcheck/internal/review"
	"github.com/dshills/materialcheck/internal/schedule"
	"github.com/dshills/materialcheck/internal/schema"
	"github.com/dshills/materialcheck/internal/store"
)

// statusFlags holds the parsed flags for the status command.
type statusFlags struct {
	format string
	out    string
}

func statusCmd(g *globalFlags) *cobra.Command {
	var flags statusFlags
	cmd := &cobra.Command{
		Use:   "status <project-id | bundle-file>",
		Short: "Show collection progress and whether a reminder is due",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(g, func(ctx context.Context, a *app) error {
				return runStatus(ctx, a, args[0], flags)
			})
		},
	}
	cmd.Flags().StringVar(&flags.format, "format", "json", "Output format: json or md")
	cmd.Flags().StringVar(&flags.out, "out", "", "Write output to file instead of stdout")
	return cmd
}

func runStatus(ctx context.Context, a *app, ref string, flags statusFlags) error {
	if err := validateFormat(flags.format, "json", "md"); err != nil {
		return codeError(exitInput, "invalid flags: %s", err)
	}
	src, err := a.load(ctx, ref)
	if err != nil {
		return err
	}
	st := a.calculate(src)
	trig := reminder.Evaluate(st, src.project.CreatedAt, src.project.LastReminderSentAt, a.now, a.remCfg)
	a.logf("Progress %d/%d approved, reminder due: %t", st.Progress.Approved, st.Progress.Total, trig.ShouldRemind)

	out, err := render.RenderStatus(flags.format, &render.StatusView{Status: st, Trigger: trig})
	if err != nil {
		return codeError(exitInput, "rendering output: %s", err)
	}
	return a.writeOutput(flags.out, out)
}

// calculate derives the material status of src.
func (a *app) calculate(src *source) schema.ProjectMaterialStatus {
	p := src.project
	a.checkTemplate(p)
	return material.NewCalculator(a.reg).Calculate(p.ID, p.Client.CompanyName, p.TemplateID, p.ModuleIDs, src.items)
}

// checkTemplate warns when p names a template the catalog does not know.
func (a *app) checkTemplate(p schema.Project) {
	if _, ok := a.reg.Lookup(p.TemplateID); !ok {
		warnf("project %s uses unknown template %q; no requirements apply", p.ID, p.TemplateID)
	}
}

// remindFlags holds the parsed flags for the remind command.
type remindFlags struct {
	format string
	out    string
	all    bool
	send   bool
	failOn string
}

func remindCmd(g *globalFlags) *cobra.Command {
	var flags remindFlags
	cmd := &cobra.Command{
		Use:   "remind [project-id | bundle-file]",
		Short: "Render the reminder due for a project, optionally sending it",
		Args: func(cmd *cobra.Command, args []string) error {
			if flags.all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := ""
			if len(args) > 0 {
				ref = args[0]
			}
			return run(g, func(ctx context.Context, a *app) error {
				return runRemind(ctx, a, ref, flags)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.format, "format", "md", "Output format: json or md")
	f.StringVar(&flags.out, "out", "", "Write output to file instead of stdout")
	f.BoolVar(&flags.all, "all", false, "Evaluate every stored project")
	f.BoolVar(&flags.send, "send", false, "Send due reminders and record them (stored projects only)")
	f.StringVar(&flags.failOn, "fail-on", "", "Exit 2 if a reminder at or above this urgency is due: gentle, urgent or critical")
	return cmd
}

func runRemind(ctx context.Context, a *app, ref string, flags remindFlags) error {
	if err := validateFormat(flags.format, "json", "md"); err != nil {
		return codeError(exitInput, "invalid flags: %s", err)
	}
	var threshold schema.Urgency
	if flags.failOn != "" {
		threshold = schema.Urgency(strings.ToLower(flags.failOn))
		if schema.UrgencyOrdinal(threshold) < 0 {
			return codeError(exitInput, "invalid flags: --fail-on must be gentle, urgent or critical, got %q", flags.failOn)
		}
	}

	var outcomes []schedule.Outcome
	if flags.all {
		repo, err := a.repository(ctx)
		if err != nil {
			return err
		}
		outcomes, err = a.sweeper(repo, !flags.send).Sweep(ctx, a.now)
		if err != nil {
			return codeError(exitStorage, "%s", err)
		}
	} else {
		src, err := a.load(ctx, ref)
		if err != nil {
			return err
		}
		if flags.send && !src.stored {
			return codeError(exitInput, "--send requires a stored project; import the bundle first")
		}
		repo := a.repo
		if !src.stored {
			// Bundles are evaluated through a throwaway in-memory store so
			// they follow the same path as stored projects.
			mem := store.NewMemory()
			if err := store.Save(ctx, mem, &store.Bundle{Project: src.project, Items: src.items, Files: src.files}); err != nil {
				return codeError(exitStorage, "%s", err)
			}
			repo = mem
		}
		a.checkTemplate(src.project)
		outcomes = []schedule.Outcome{a.sweeper(repo, !flags.send).Remind(ctx, src.project, a.now)}
	}

	views := make([]render.ReminderView, len(outcomes))
	failed := 0
	for i, o := range outcomes {
		views[i] = render.ReminderView{ProjectID: o.ProjectID, Trigger: o.Trigger, Message: o.Message, Sent: o.Sent, Error: o.Error}
		if o.Error != "" {
			failed++
			warnf("project %s: %s", o.ProjectID, o.Error)
		}
	}

	out, err := renderReminders(flags.format, views, flags.all)
	if err != nil {
		return codeError(exitInput, "rendering output: %s", err)
	}
	if err := a.writeOutput(flags.out, out); err != nil {
		return err
	}
	if failed > 0 {
		return codeError(exitStorage, "%d reminder(s) failed", failed)
	}

	if threshold != "" {
		for _, o := range outcomes {
			if o.Trigger.ShouldRemind && schema.UrgencyOrdinal(o.Trigger.Urgency) >= schema.UrgencyOrdinal(threshold) {
				return codeError(exitFailOn, "%s reminder due for %s meets --fail-on threshold %s", o.Trigger.Urgency, o.ProjectID, threshold)
			}
		}
	}
	return nil
}

func renderReminders(format string, views []render.ReminderView, list bool) ([]byte, error) {
	if !list && len(views) == 1 {
		return render.RenderReminder(format, &views[0])
	}
	if format == "json" {
		return json.MarshalIndent(views, "", "  ")
	}
	var buf bytes.Buffer
	for i := range views {
		b, err := render.RenderReminder(format, &views[i])
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteString("\n---\n\n")
		}
		buf.Write(b)
	}
	return buf.Bytes(), nil
}

// sweeper wires the reminder pipeline to repo. Sent reminders go to the
// notify log with contact details redacted.
func (a *app) sweeper(repo store.Repository, dryRun bool) *schedule.Sweeper {
	return &schedule.Sweeper{
		Repo:      repo,
		Calc:      material.NewCalculator(a.reg),
		Config:    a.remCfg,
		Generator: reminder.NewGenerator(a.remCfg, nil),
		Sender:    notify.LogSender{Logger: logging.New("notify"), Full: a.verbose},
		History:   notify.NewHistory(100),
		Logger:    logging.New("schedule"),
		DryRun:    dryRun,
	}
}

// validateFlags holds the parsed flags for the validate command.
type validateFlags struct {
	format            string
	out               string
	failOn            string
	severityThreshold string
}

func validateCmd(g *globalFlags) *cobra.Command {
	var flags validateFlags
	cmd := &cobra.Command{
		Use:   "validate <project-id | bundle-file>",
		Short: "Check submitted content against the template's quality rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(g, func(ctx context.Context, a *app) error {
				return runValidate(ctx, a, args[0], flags)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.format, "format", "json", "Output format: json or md")
	f.StringVar(&flags.out, "out", "", "Write output to file instead of stdout")
	f.StringVar(&flags.failOn, "fail-on", "", "Exit 2 if any field has findings at this level: error or warning")
	f.StringVar(&flags.severityThreshold, "severity-threshold", "suggestion", "Minimum severity to emit: suggestion, warning or error")
	return cmd
}

func runValidate(ctx context.Context, a *app, ref string, flags validateFlags) error {
	if err := validateFormat(flags.format, "json", "md"); err != nil {
		return codeError(exitInput, "invalid flags: %s", err)
	}
	var failOn schema.Severity
	if flags.failOn != "" {
		sev, err := review.ParseSeverity(flags.failOn)
		if err != nil {
			return codeError(exitInput, "invalid flags: --fail-on: %s", err)
		}
		failOn = sev
	}
	threshold, err := parseSeverityThreshold(flags.severityThreshold)
	if err != nil {
		return codeError(exitInput, "invalid flags: %s", err)
	}

	src, err := a.load(ctx, ref)
	if err != nil {
		return err
	}
	st := a.calculate(src)
	reqs := a.reg.Requirements(src.project.TemplateID, src.project.ModuleIDs)

	a.logf("Validating %d requirement(s) (concurrency %d)", len(reqs), a.cfg.FetchConcurrency)
	results := quality.ValidateAll(ctx, reqs, src.items, a.fetcher(src.baseDir), a.cfg.FetchConcurrency)
	if err := ctx.Err(); err != nil {
		return codeError(exitInput, "validation interrupted: %s", err)
	}
	rep := review.GenerateValidationReport(src.project.ID, results)
	errs, warns, tips := review.Counts(results)
	a.logf("Score %d: %d error(s), %d warning(s), %d suggestion(s)", rep.OverallScore, errs, warns, tips)

	// Filtering affects output only; the report was computed from everything.
	view := &render.ReportView{Status: st, Report: rep, Results: review.FilterBySeverity(results, threshold)}
	out, err := render.RenderReport(flags.format, view)
	if err != nil {
		return codeError(exitInput, "rendering output: %s", err)
	}
	if err := a.writeOutput(flags.out, out); err != nil {
		return err
	}

	if failOn != "" && review.Fails(rep, failOn) {
		return codeError(exitFailOn, "%d invalid and %d warning field(s) meet --fail-on threshold %s",
			rep.InvalidFields, rep.WarningFields, failOn)
	}
	return nil
}

func parseSeverityThreshold(s string) (schema.Severity, error) {
	switch sev := schema.Severity(strings.ToLower(s)); sev {
	case schema.SeveritySuggestion, schema.SeverityWarning, schema.SeverityError:
		return sev, nil
	}
	return "", fmt.Errorf("--severity-threshold must be suggestion, warning or error, got %q", s)
}

// exportFlags holds the parsed flags for the export command.
type exportFlags struct {
	format string
	out    string
}

func exportCmd(g *globalFlags) *cobra.Command {
	var flags exportFlags
	cmd := &cobra.Command{
		Use:   "export <project-id | bundle-file>",
		Short: "Export collected content as JSON, Markdown, HTML or a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(g, func(ctx context.Context, a *app) error {
				return runExport(ctx, a, args[0], flags)
			})
		},
	}
	cmd.Flags().StringVar(&flags.format, "format", "json", "Output format: json, md, html or zip")
	cmd.Flags().StringVar(&flags.out, "out", "", "Write output to file instead of stdout")
	return cmd
}

func runExport(ctx context.Context, a *app, ref string, flags exportFlags) error {
	if err := validateFormat(flags.format, "json", "md", "html", "zip"); err != nil {
		return codeError(exitInput, "invalid flags: %s", err)
	}
	src, err := a.load(ctx, ref)
	if err != nil {
		return err
	}
	tmpl, ok := a.reg.Lookup(src.project.TemplateID)
	if !ok {
		return codeError(exitInput, "project %s uses unknown template %q", src.project.ID, src.project.TemplateID)
	}
	data := render.Build(tmpl, src.project, src.items, src.files, a.now)

	if flags.format == "zip" {
		a.logf("Writing archive with %d file(s)", len(data.Files))
		var buf bytes.Buffer
		m, err := render.WriteArchive(ctx, &buf, data, a.fetcher(src.baseDir), a.cfg.FetchConcurrency)
		if err != nil {
			return codeError(exitOutput, "writing archive: %s", err)
		}
		for _, w := range m.Warnings {
			warnf("%s", w)
		}
		a.logf("Archive %s: %d file(s) included", m.ExportID, len(m.Files))
		return a.writeArchive(flags.out, buf.Bytes())
	}

	r, err := render.NewRenderer(flags.format)
	if err != nil {
		return codeError(exitInput, "invalid format: %s", err)
	}
	out, err := r.Render(data)
	if err != nil {
		return codeError(exitInput, "rendering output: %s", err)
	}
	return a.writeOutput(flags.out, out)
}

// writeArchive is writeOutput without the trailing newline.
func (a *app) writeArchive(path string, data []byte) error {
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return codeError(exitOutput, "writing output file: %s", err)
		}
		return nil
	}
	if _, err := a.stdout.Write(data); err != nil {
		return codeError(exitOutput, "writing output: %s", err)
	}
	return nil
}

// importFlags holds the parsed flags for the import command.
type importFlags struct {
	replace bool
}

func importCmd(g *globalFlags) *cobra.Command {
	var flags importFlags
	cmd := &cobra.Command{
		Use:   "import <bundle-file>",
		Short: "Store a project bundle, merging submissions into an existing project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(g, func(ctx context.Context, a *app) error {
				return runImport(ctx, a, args[0], flags)
			})
		},
	}
	cmd.Flags().BoolVar(&flags.replace, "replace", false, "Replace stored submissions instead of merging")
	return cmd
}

func runImport(ctx context.Context, a *app, path string, flags importFlags) error {
	a.logf("Loading bundle: %s", path)
	b, err := bundle.Load(path)
	if err != nil {
		return codeError(exitInput, "loading bundle: %s", err)
	}
	repo, err := a.repository(ctx)
	if err != nil {
		return err
	}

	p := b.Project
	items, files := b.Items, b.Files
	revisions := 0

	existing, err := store.Load(ctx, repo, p.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if p.CreatedAt.IsZero() {
			p.CreatedAt = a.now
		}
	case err != nil:
		return codeError(exitStorage, "loading project %s: %s", p.ID, err)
	default:
		if p.CreatedAt.IsZero() {
			p.CreatedAt = existing.Project.CreatedAt
		}
		if p.LastReminderSentAt == nil {
			p.LastReminderSentAt = existing.Project.LastReminderSentAt
		}
		if !flags.replace {
			merged, revs := material.Merge(existing.Items, items)
			for _, r := range revs {
				a.logf("Revision %s: +%d -%d", r.RequirementID, r.Inserted, r.Deleted)
			}
			items, revisions = merged, len(revs)
			files = mergeFiles(existing.Files, files)
		}
	}
	p.UpdatedAt = a.now

	if err := store.Save(ctx, repo, &store.Bundle{Project: p, Items: items, Files: files}); err != nil {
		return codeError(exitStorage, "saving project %s: %s", p.ID, err)
	}
	msg := fmt.Sprintf("imported project %s: %d item(s), %d file(s), %d revision(s)", p.ID, len(items), len(files), revisions)
	return a.writeOutput("", []byte(msg))
}

// mergeFiles appends incoming records whose URL is not already stored.
func mergeFiles(existing, incoming []schema.FileRecord) []schema.FileRecord {
	seen := make(map[string]bool, len(existing))
	out := append([]schema.FileRecord{}, existing...)
	for _, f := range existing {
		seen[f.URL] = true
	}
	for _, f := range incoming {
		if !seen[f.URL] {
			seen[f.URL] = true
			out = append(out, f)
		}
	}
	return out
}

// scheduleFlags holds the parsed flags for the schedule command.
type scheduleFlags struct {
	spec   string
	once   bool
	dryRun bool
}

func scheduleCmd(g *globalFlags) *cobra.Command {
	var flags scheduleFlags
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the reminder sweep over all stored projects on a cron schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(g, func(ctx context.Context, a *app) error {
				return runSchedule(ctx, a, flags)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.spec, "spec", "", "Cron expression (overrides MATERIALCHECK_SCHEDULE)")
	f.BoolVar(&flags.once, "once", false, "Run one sweep now and print the outcomes")
	f.BoolVar(&flags.dryRun, "dry-run", false, "Evaluate and render reminders without sending them")
	return cmd
}

func runSchedule(ctx context.Context, a *app, flags scheduleFlags) error {
	repo, err := a.repository(ctx)
	if err != nil {
		return err
	}
	sw := a.sweeper(repo, flags.dryRun)

	if flags.once {
		outcomes, err := sw.Sweep(ctx, a.now)
		if err != nil {
			return codeError(exitStorage, "%s", err)
		}
		out, err := json.MarshalIndent(outcomes, "", "  ")
		if err != nil {
			return codeError(exitOutput, "encoding outcomes: %s", err)
		}
		return a.writeOutput("", out)
	}

	spec := a.cfg.Schedule
	if flags.spec != "" {
		spec = flags.spec
	}
	logger := logging.New("schedule")
	s, err := schedule.NewScheduler(spec, sw, logger)
	if err != nil {
		return codeError(exitInput, "%s", err)
	}
	s.Start()
	logger.Printf("next sweep at %s", s.Next().Format(time.RFC3339))
	<-ctx.Done()
	s.Stop()
	return nil
}

// Package schedule runs the reminder sweep on demand or on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/materialcheck/internal/material"
	"github.com/dshills/materialcheck/internal/notify"
	"github.com/dshills/materialcheck/internal/reminder"
	"github.com/dshills/materialcheck/internal/schema"
	"github.com/dshills/materialcheck/internal/store"
)

// Logger is the subset of *log.Logger the sweep writes to.
type Logger interface {
	Printf(string, ...any)
}

// Sweeper checks every stored project and sends the reminders that are due.
type Sweeper struct {
	Repo      store.Repository
	Calc      *material.Calculator
	Config    reminder.Config
	Generator *reminder.Generator
	Sender    notify.Sender
	History   *notify.History
	Logger    Logger
	// DryRun evaluates and renders without sending or recording.
	DryRun bool
}

// Outcome is the sweep result for one project.
type Outcome struct {
	ProjectID string                  `json:"project_id"`
	Status    schema.Progress         `json:"progress"`
	Trigger   schema.ReminderTrigger  `json:"trigger"`
	Message   *schema.ReminderMessage `json:"message,omitempty"`
	Sent      bool                    `json:"sent"`
	Error     string                  `json:"error,omitempty"`
}

// Sweep evaluates all projects at now. A failure on one project is recorded
// in its Outcome and does not stop the others; the returned error is only
// for failures to list projects.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) ([]Outcome, error) {
	projects, err := s.Repo.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	out := make([]Outcome, 0, len(projects))
	for _, p := range projects {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		o := s.Remind(ctx, p, now)
		if o.Error != "" {
			s.logf("project %s: %s", p.ID, o.Error)
		}
		out = append(out, o)
	}
	return out, nil
}

// Evaluate computes the status and trigger for one project at now.
func (s *Sweeper) Evaluate(ctx context.Context, p schema.Project, now time.Time) (schema.ProjectMaterialStatus, schema.ReminderTrigger, error) {
	items, err := s.Repo.Items(ctx, p.ID)
	if err != nil {
		return schema.ProjectMaterialStatus{}, schema.ReminderTrigger{}, err
	}
	st := s.calc().Calculate(p.ID, p.Client.CompanyName, p.TemplateID, p.ModuleIDs, items)
	return st, reminder.Evaluate(st, p.CreatedAt, p.LastReminderSentAt, now, s.Config), nil
}

// Remind evaluates one project and, when a reminder is due, renders it and
// (unless DryRun) sends and records it.
func (s *Sweeper) Remind(ctx context.Context, p schema.Project, now time.Time) Outcome {
	o := Outcome{ProjectID: p.ID}
	st, trig, err := s.Evaluate(ctx, p, now)
	if err != nil {
		o.Error = err.Error()
		return o
	}
	o.Status = st.Progress
	o.Trigger = trig
	if !trig.ShouldRemind {
		return o
	}

	msg := s.generator().Generate(st, trig)
	o.Message = &msg
	if s.DryRun {
		return o
	}
	if p.Client.ContactEmail == "" {
		o.Error = "no client contact email"
		return o
	}
	d := notify.NewDelivery(p, trig.Urgency, msg, now)
	if err := s.Sender.Send(ctx, d); err != nil {
		o.Error = fmt.Sprintf("sending reminder: %v", err)
		return o
	}
	o.Sent = true
	if s.History != nil {
		s.History.Add(d)
	}
	if err := s.Repo.MarkReminded(ctx, p.ID, now); err != nil {
		o.Error = fmt.Sprintf("recording reminder: %v", err)
	}
	s.logf("sent %s reminder for project %s (%s)", trig.Urgency, p.ID, trig.Reason)
	return o
}

func (s *Sweeper) calc() *material.Calculator {
	if s.Calc == nil {
		s.Calc = material.NewCalculator(nil)
	}
	return s.Calc
}

func (s *Sweeper) generator() *reminder.Generator {
	if s.Generator == nil {
		s.Generator = reminder.NewGenerator(s.Config, nil)
	}
	return s.Generator
}

func (s *Sweeper) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

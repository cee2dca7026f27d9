package reminder

import (
	"fmt"
	"time"

	"github.com/dshills/materialcheck/internal/material"
	"github.com/dshills/materialcheck/internal/schema"
)

// Engine decides whether a reminder is due. It reads the clock once per Check.
type Engine struct {
	cfg Config
	now func() time.Time
}

// NewEngine returns an Engine using cfg (defaults applied) and the wall clock.
func NewEngine(cfg Config) *Engine {
	cfg.applyDefaults()
	return &Engine{cfg: cfg, now: nowUTC}
}

var nowUTC = func() time.Time { return time.Now().UTC() }

// Check evaluates the trigger for status at the current time.
// lastReminderSentAt is nil before the first reminder.
func (e *Engine) Check(status schema.ProjectMaterialStatus, projectCreatedAt time.Time, lastReminderSentAt *time.Time) schema.ReminderTrigger {
	return Evaluate(status, projectCreatedAt, lastReminderSentAt, e.now(), e.cfg)
}

// Evaluate is the pure decision policy. Rules are applied in order and the
// first match wins: complete, cooldown, critical, urgent, gentle, not due.
func Evaluate(status schema.ProjectMaterialStatus, projectCreatedAt time.Time, lastReminderSentAt *time.Time, now time.Time, cfg Config) schema.ReminderTrigger {
	cfg.applyDefaults()

	if status.Progress.CompletionRate >= 100 {
		return schema.ReminderTrigger{Urgency: schema.UrgencyGentle, Reason: "all material collected"}
	}
	if lastReminderSentAt != nil && now.Sub(*lastReminderSentAt) < cfg.Cooldown() {
		return schema.ReminderTrigger{Urgency: schema.UrgencyGentle, Reason: "reminder sent recently"}
	}

	phase, outstanding := stalledPhase(status)
	if phase == 0 {
		return schema.ReminderTrigger{Urgency: schema.UrgencyGentle, Reason: "all submitted material is awaiting review"}
	}

	age := now.Sub(projectCreatedAt)
	stall := now.Sub(stallStart(status, phase, projectCreatedAt))
	phase1 := material.OutstandingInPhase(status, schema.Phase1)
	rate := status.Progress.CompletionRate

	due := func(u schema.Urgency, reason string) schema.ReminderTrigger {
		return schema.ReminderTrigger{ShouldRemind: true, Urgency: u, Reason: reason, StalledPhase: phase}
	}

	switch {
	case age >= days(cfg.CriticalAfterDays):
		return due(schema.UrgencyCritical, fmt.Sprintf(
			"project open %d days with %d item(s) outstanding", wholeDays(age), outstanding))
	case phase1 > 0 && stall >= days(cfg.Phase1GraceDays):
		return due(schema.UrgencyCritical, fmt.Sprintf(
			"%d required Phase-1 item(s) still missing after %d days", phase1, wholeDays(stall)))
	case stall >= days(cfg.UrgentAfterDays):
		return due(schema.UrgencyUrgent, fmt.Sprintf(
			"Phase %d stalled for %d days with %d item(s) outstanding", phase, wholeDays(stall), outstanding))
	case rate < cfg.LowCompletionRate && age >= days(cfg.LowCompletionAfterDays):
		return due(schema.UrgencyUrgent, fmt.Sprintf(
			"only %d%% complete after %d days", rate, wholeDays(age)))
	case stall >= days(cfg.GentleAfterDays):
		if status.Progress.Submitted == 0 {
			return due(schema.UrgencyGentle, fmt.Sprintf(
				"no submissions in %d days; %d item(s) outstanding", wholeDays(stall), outstanding))
		}
		return due(schema.UrgencyGentle, fmt.Sprintf(
			"Phase %d waiting %d days with %d item(s) outstanding", phase, wholeDays(stall), outstanding))
	}
	return schema.ReminderTrigger{Urgency: schema.UrgencyGentle, Reason: "next reminder not due yet", StalledPhase: phase}
}

// stalledPhase returns the lowest phase holding outstanding required items
// and the number of such items across all phases. Optional items are only
// considered when no required item is outstanding. Phase 0 means nothing
// is outstanding.
func stalledPhase(status schema.ProjectMaterialStatus) (schema.Phase, int) {
	if out := material.OutstandingRequired(status); len(out) > 0 {
		return out[0].Requirement.Phase, len(out)
	}
	var phase schema.Phase
	n := 0
	for _, it := range status.Items {
		if !it.Status.Outstanding() {
			continue
		}
		n++
		if phase == 0 || it.Requirement.Phase < phase {
			phase = it.Requirement.Phase
		}
	}
	return phase, n
}

// stallStart is when the stalled phase became due: project creation for
// Phase 1, otherwise the latest submission among earlier phases (or
// creation when the client skipped straight ahead).
func stallStart(status schema.ProjectMaterialStatus, phase schema.Phase, createdAt time.Time) time.Time {
	start := createdAt
	if phase <= schema.Phase1 {
		return start
	}
	for _, it := range status.Items {
		if it.Requirement.Phase < phase && it.SubmittedAt != nil && it.SubmittedAt.After(start) {
			start = *it.SubmittedAt
		}
	}
	return start
}

func wholeDays(d time.Duration) int {
	return int(d.Hours() / 24)
}

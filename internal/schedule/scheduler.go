package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSpec runs the sweep every day at 09:00 UTC.
const DefaultSpec = "0 9 * * *"

// Scheduler runs a Sweeper on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	cron    *cron.Cron
	sweeper *Sweeper
	logger  Logger
	now     func() time.Time

	mu   sync.Mutex
	last []Outcome
}

// NewScheduler validates spec and registers the sweep.
func NewScheduler(spec string, sweeper *Sweeper, logger Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSpec
	}
	s := &Scheduler{
		sweeper: sweeper,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
	)
	if _, err := s.cron.AddFunc(spec, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			logger.Printf("sweep failed: %v", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Printf("scheduler started")
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Printf("scheduler stopped")
}

// Next returns the next scheduled run time.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Schedule.Next(s.now())
}

// RunOnce runs the sweep immediately and remembers its outcomes.
func (s *Scheduler) RunOnce(ctx context.Context) ([]Outcome, error) {
	s.logger.Printf("running reminder sweep")
	out, err := s.sweeper.Sweep(ctx, s.now())
	s.mu.Lock()
	s.last = out
	s.mu.Unlock()
	if err != nil {
		return out, err
	}
	sent := 0
	for _, o := range out {
		if o.Sent {
			sent++
		}
	}
	s.logger.Printf("sweep checked %d project(s), sent %d reminder(s)", len(out), sent)
	return out, nil
}

// Last returns the outcomes of the most recent sweep.
func (s *Scheduler) Last() []Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Outcome(nil), s.last...)
}

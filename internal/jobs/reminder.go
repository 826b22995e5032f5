// Package jobs schedules background work.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nnomo/apartment-reservations/internal/service"
)

// DefaultReminderSchedule runs the sweep every ten minutes.
const DefaultReminderSchedule = "*/10 * * * *"

// Sweeper is one reminder pass.
type Sweeper interface {
	RunOnce(ctx context.Context, now time.Time) (service.SweepResult, error)
}

// ReminderJob runs a Sweeper on a cron schedule.  A run that is still in
// progress when the next tick fires causes that tick to be skipped.
type ReminderJob struct {
	sweeper Sweeper
	timeout time.Duration
	now     func() time.Time
	log     *slog.Logger
}

// NewReminderJob builds the job.
func NewReminderJob(s Sweeper, log *slog.Logger) *ReminderJob {
	if log == nil {
		log = slog.Default()
	}
	return &ReminderJob{sweeper: s, timeout: 4 * time.Minute, now: time.Now, log: log.With("component", "reminder-job")}
}

// Run performs one sweep with the job timeout.
func (j *ReminderJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	started := j.now()
	res, err := j.sweeper.RunOnce(ctx, started)
	if err != nil {
		j.log.Error("reminder sweep failed", "error", err)
		return
	}
	j.log.Info("reminder sweep done",
		"scanned", res.Scanned,
		"sent", res.Sent,
		"failed", res.Failed,
		"no_address", res.NoAddress,
		"took", j.now().Sub(started),
	)
}

// Start registers the job under schedule and starts the scheduler.  The
// caller stops it with the returned cron's Stop.
func (j *ReminderJob) Start(schedule string) (*cron.Cron, error) {
	if schedule == "" {
		schedule = DefaultReminderSchedule
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddJob(schedule, j); err != nil {
		return nil, fmt.Errorf("add reminder schedule %q: %w", schedule, err)
	}
	c.Start()
	j.log.Info("reminder job started", "schedule", schedule)
	return c, nil
}

// Package jobs holds the background schedules started by the serve command.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// ReminderDispatcher creates and mails the reminders for tomorrow's
// confirmed appointments, returning how many were created.
type ReminderDispatcher interface {
	SendTomorrow(ctx context.Context) (int, error)
}

type ReminderJob struct {
	dispatcher ReminderDispatcher
	scheduler  *gocron.Scheduler
	timeout    time.Duration
	log        zerolog.Logger
}

// NewReminderJob registers the dispatcher on the cron expression. Nothing runs
// until Start.
func NewReminderJob(dispatcher ReminderDispatcher, cronExpr string, loc *time.Location, log zerolog.Logger) (*ReminderJob, error) {
	if loc == nil {
		loc = time.Local
	}
	j := &ReminderJob{
		dispatcher: dispatcher,
		scheduler:  gocron.NewScheduler(loc),
		timeout:    5 * time.Minute,
		log:        log.With().Str("job", "reminders").Logger(),
	}
	j.scheduler.SingletonModeAll()
	if _, err := j.scheduler.Cron(cronExpr).Do(j.Run); err != nil {
		return nil, fmt.Errorf("schedule reminders %q: %w", cronExpr, err)
	}
	return j, nil
}

// Run performs one dispatch. It is what the scheduler calls.
func (j *ReminderJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	created, err := j.dispatcher.SendTomorrow(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("reminder dispatch failed")
		return
	}
	j.log.Info().Int("created", created).Dur("took", time.Since(start)).Msg("reminders dispatched")
}

func (j *ReminderJob) Start() {
	j.scheduler.StartAsync()
}

func (j *ReminderJob) Stop() {
	j.scheduler.Stop()
}

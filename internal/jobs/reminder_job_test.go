package jobs

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dispatcherFunc func(ctx context.Context) (int, error)

func (f dispatcherFunc) SendTomorrow(ctx context.Context) (int, error) { return f(ctx) }

func TestNewReminderJob_RejectsBadCron(t *testing.T) {
	_, err := NewReminderJob(dispatcherFunc(func(context.Context) (int, error) { return 0, nil }), "not a cron", time.UTC, zerolog.Nop())
	assert.Error(t, err)
}

func TestReminderJob_RunLogsOutcome(t *testing.T) {
	var buf bytes.Buffer
	calls := 0
	job, err := NewReminderJob(dispatcherFunc(func(ctx context.Context) (int, error) {
		calls++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return 3, nil
	}), "0 18 * * *", time.UTC, zerolog.New(&buf))
	require.NoError(t, err)

	job.Run()
	assert.Equal(t, 1, calls)
	assert.Contains(t, buf.String(), `"created":3`)
	assert.Contains(t, buf.String(), "reminders dispatched")
}

func TestReminderJob_RunLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	job, err := NewReminderJob(dispatcherFunc(func(context.Context) (int, error) {
		return 0, errors.New("db down")
	}), "0 18 * * *", nil, zerolog.New(&buf))
	require.NoError(t, err)

	job.Run()
	assert.Contains(t, buf.String(), "reminder dispatch failed")
	assert.Contains(t, buf.String(), "db down")
}

func TestReminderJob_StartStop(t *testing.T) {
	job, err := NewReminderJob(dispatcherFunc(func(context.Context) (int, error) { return 0, nil }), "0 18 * * *", time.UTC, zerolog.Nop())
	require.NoError(t, err)
	job.Start()
	assert.True(t, job.scheduler.IsRunning())
	job.Stop()
	assert.False(t, job.scheduler.IsRunning())
}

// Package events fans "data changed" notifications out to connected clients.
package events

import (
	"context"
	"errors"
	"time"
)

const TypeDataChanged = "data_changed"

// Event carries no data for clients. ClinicID only routes push notifications.
type Event struct {
	Type     string    `json:"type"`
	ClinicID *uint64   `json:"-"`
	At       time.Time `json:"-"`
}

func DataChanged(clinicID *uint64) Event {
	return Event{Type: TypeDataChanged, ClinicID: clinicID, At: time.Now()}
}

// Publisher delivers events best-effort. Implementations must not block the
// caller on slow subscribers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

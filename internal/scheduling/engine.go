// Package scheduling computes slot availability for a professional's agenda.
// It works on appointments that were already filtered by tenant scope.
package scheduling

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"clinic-backend/internal/models"
	"clinic-backend/pkg/apperror"
)

const DateLayout = "2006-01-02"

// DefaultSlots is a working day from 09:00 to 17:00 with a lunch break.
var DefaultSlots = []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}

type DayStatus string

const (
	StatusClosed  DayStatus = "closed"
	StatusPast    DayStatus = "past"
	StatusFull    DayStatus = "full"
	StatusPartial DayStatus = "partial"
	StatusFree    DayStatus = "free"
)

type DayAvailability struct {
	Date     string    `json:"date"`
	Weekday  string    `json:"weekday"`
	Status   DayStatus `json:"status"`
	Label    string    `json:"label"`
	Occupied int       `json:"occupied"`
	Free     int       `json:"free"`
}

type SlotAvailability struct {
	Time          string  `json:"time"`
	Free          bool    `json:"free"`
	AppointmentID *uint64 `json:"appointment_id,omitempty"`
}

type Engine struct {
	slots []string
	loc   *time.Location
	now   func() time.Time
}

type Option func(*Engine)

func WithSlots(slots []string) Option {
	return func(e *Engine) {
		if len(slots) > 0 {
			e.slots = append([]string(nil), slots...)
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		slots: append([]string(nil), DefaultSlots...),
		loc:   time.UTC,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Slots() []string {
	return append([]string(nil), e.slots...)
}

// Today returns the current calendar date in the engine's location.
func (e *Engine) Today() time.Time {
	n := e.now().In(e.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, e.loc)
}

func (e *Engine) TodayString() string {
	return e.Today().Format(DateLayout)
}

// IsSlot reports whether t is one of the canonical slots.
func (e *Engine) IsSlot(t string) bool {
	for _, s := range e.slots {
		if s == t {
			return true
		}
	}
	return false
}

// ParseDate accepts only YYYY-MM-DD.
func (e *Engine) ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	d, err := time.ParseInLocation(DateLayout, raw, e.loc)
	if err != nil || d.Format(DateLayout) != raw {
		return time.Time{}, apperror.Validation("data inválida, use o formato AAAA-MM-DD")
	}
	return d, nil
}

// ValidateDate is used both by the check endpoint and on create/update so both
// paths reach the same verdict.
func (e *Engine) ValidateDate(raw string) (time.Time, error) {
	d, err := e.ParseDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	if d.Weekday() == time.Sunday {
		return time.Time{}, apperror.Validation("a clínica não abre aos domingos")
	}
	return d, nil
}

// ClassifyDay applies the closed, past, full, partial, free rules in that order.
func ClassifyDay(day, today time.Time, occupied, totalSlots int) (DayStatus, int) {
	free := totalSlots - occupied
	if free < 0 {
		free = 0
	}
	switch {
	case day.Weekday() == time.Sunday:
		return StatusClosed, free
	case day.Before(today):
		return StatusPast, free
	case free == 0:
		return StatusFull, 0
	case free < totalSlots:
		return StatusPartial, free
	default:
		return StatusFree, free
	}
}

func label(status DayStatus, free int) string {
	switch status {
	case StatusClosed:
		return "Fechado"
	case StatusPast:
		return "Passado"
	case StatusFull:
		return "Lotado"
	case StatusPartial:
		if free == 1 {
			return "1 horário livre"
		}
		return fmt.Sprintf("%d horários livres", free)
	default:
		return "Livre"
	}
}

var weekdays = [...]string{"domingo", "segunda", "terça", "quarta", "quinta", "sexta", "sábado"}

// Month classifies every day of year/month. Appointments of any status occupy
// their slot.
func (e *Engine) Month(year int, month time.Month, appointments []models.Appointment) ([]DayAvailability, error) {
	if month < time.January || month > time.December || year < 1 {
		return nil, apperror.Validation("mês inválido")
	}
	perDay := make(map[string]int, len(appointments))
	for _, a := range appointments {
		perDay[a.Date]++
	}

	today := e.Today()
	first := time.Date(year, month, 1, 0, 0, 0, 0, e.loc)
	days := make([]DayAvailability, 0, 31)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		key := d.Format(DateLayout)
		status, free := ClassifyDay(d, today, perDay[key], len(e.slots))
		days = append(days, DayAvailability{
			Date:     key,
			Weekday:  weekdays[d.Weekday()],
			Status:   status,
			Label:    label(status, free),
			Occupied: perDay[key],
			Free:     free,
		})
	}
	return days, nil
}

// DaySlots lists each canonical slot of date as free or occupied.
func (e *Engine) DaySlots(date string, appointments []models.Appointment) ([]SlotAvailability, error) {
	if _, err := e.ParseDate(date); err != nil {
		return nil, err
	}
	taken := make(map[string]uint64)
	for _, a := range appointments {
		if a.Date == date {
			if _, ok := taken[a.Time]; !ok {
				taken[a.Time] = a.ID
			}
		}
	}
	out := make([]SlotAvailability, 0, len(e.slots))
	for _, s := range e.slots {
		slot := SlotAvailability{Time: s, Free: true}
		if id, ok := taken[s]; ok {
			id := id
			slot.Free = false
			slot.AppointmentID = &id
		}
		out = append(out, slot)
	}
	return out, nil
}

func sortByDateTime(list []models.Appointment) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Date != list[j].Date {
			return list[i].Date < list[j].Date
		}
		return list[i].Time < list[j].Time
	})
}

// TodayAppointments keeps the appointments dated today.
func (e *Engine) TodayAppointments(list []models.Appointment) []models.Appointment {
	today := e.TodayString()
	out := make([]models.Appointment, 0)
	for _, a := range list {
		if a.Date == today {
			out = append(out, a)
		}
	}
	sortByDateTime(out)
	return out
}

// Upcoming keeps appointments strictly after today.
func (e *Engine) Upcoming(list []models.Appointment) []models.Appointment {
	today := e.TodayString()
	out := make([]models.Appointment, 0)
	for _, a := range list {
		if a.Date > today {
			out = append(out, a)
		}
	}
	sortByDateTime(out)
	return out
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clinic-backend/internal/mailer"
	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"
	"clinic-backend/internal/repository"
	"clinic-backend/internal/scheduling"
	"clinic-backend/pkg/apperror"

	"github.com/rs/zerolog"
)

type ReminderService struct {
	reminders    ReminderStore
	patients     PatientStore
	appointments AppointmentStore
	mail         mailer.Sender
	engine       *scheduling.Engine
	log          zerolog.Logger
	now          func() time.Time
}

func NewReminderService(
	reminders ReminderStore,
	patients PatientStore,
	appointments AppointmentStore,
	mail mailer.Sender,
	engine *scheduling.Engine,
	log zerolog.Logger,
) *ReminderService {
	return &ReminderService{
		reminders:    reminders,
		patients:     patients,
		appointments: appointments,
		mail:         mail,
		engine:       engine,
		log:          log.With().Str("service", "reminders").Logger(),
		now:          time.Now,
	}
}

func (s *ReminderService) List(ctx context.Context, actor policy.Actor) ([]models.Reminder, error) {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return nil, err
	}
	return s.reminders.List(ctx, policy.ReadScope(actor, policy.ResourceReminders))
}

// Create records a manual reminder and e-mails the patient when possible.
func (s *ReminderService) Create(ctx context.Context, actor policy.Actor, in models.ReminderInput) (*models.Reminder, error) {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return nil, err
	}
	clinicID, err := policy.StampClinic(actor)
	if err != nil {
		return nil, err
	}
	p, err := patientInClinic(ctx, s.patients, actor, clinicID, in.PatientID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.Validation("paciente não pertence a esta clínica")
		}
		return nil, err
	}
	r := &models.Reminder{
		PatientID: p.ID,
		Message:   strings.TrimSpace(in.Message),
		SentAt:    s.now(),
		ClinicID:  &clinicID,
	}
	if err := s.reminders.Create(ctx, r); err != nil {
		return nil, err
	}
	s.notify(ctx, p, r.Message)
	return r, nil
}

// SendTomorrow creates one reminder per confirmed appointment of the next day
// across every clinic. Appointments already reminded are skipped, so reruns
// are harmless. It returns how many reminders were created.
func (s *ReminderService) SendTomorrow(ctx context.Context) (int, error) {
	tomorrow := s.engine.Today().AddDate(0, 0, 1).Format(scheduling.DateLayout)
	list, err := s.appointments.List(ctx, policy.All(), repository.AppointmentFilter{
		Date:   tomorrow,
		Status: models.AppointmentConfirmed,
	})
	if err != nil {
		return 0, err
	}

	created := 0
	for _, a := range list {
		done, err := s.reminders.ExistsForAppointment(ctx, a.ID)
		if err != nil {
			return created, err
		}
		if done {
			continue
		}
		msg := fmt.Sprintf("Lembrete: você tem um atendimento amanhã (%s) às %s.", formatDateBR(a.Date), a.Time)
		r := &models.Reminder{
			PatientID:     a.PatientID,
			AppointmentID: ptr(a.ID),
			Message:       msg,
			SentAt:        s.now(),
			ClinicID:      a.ClinicID,
		}
		if err := s.reminders.Create(ctx, r); err != nil {
			s.log.Warn().Err(err).Uint64("appointment_id", a.ID).Msg("create reminder")
			continue
		}
		created++
		if a.Patient != nil {
			s.notify(ctx, a.Patient, msg)
		}
	}
	return created, nil
}

func (s *ReminderService) notify(ctx context.Context, p *models.Patient, msg string) {
	if p.Email == "" {
		return
	}
	err := s.mail.Send(ctx, mailer.Message{
		To:      p.Email,
		Subject: "Lembrete da clínica",
		Body:    fmt.Sprintf("Olá, %s.\n\n%s\n", p.Name, msg),
	})
	if err != nil {
		s.log.Warn().Err(err).Uint64("patient_id", p.ID).Msg("reminder e-mail not sent")
	}
}

func formatDateBR(date string) string {
	d, err := time.Parse(scheduling.DateLayout, date)
	if err != nil {
		return date
	}
	return d.Format("02/01/2006")
}

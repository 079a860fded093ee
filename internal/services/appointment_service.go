package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clinic-backend/internal/events"
	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"
	"clinic-backend/internal/repository"
	"clinic-backend/internal/scheduling"
	"clinic-backend/pkg/apperror"

	"github.com/rs/zerolog"
)

// DateCheck is the soft verdict shown while a date is being typed.
type DateCheck struct {
	Date    string `json:"date"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

type AppointmentService struct {
	appointments AppointmentStore
	patients     PatientStore
	procedures   ProcedureStore
	users        UserStore
	engine       *scheduling.Engine
	publisher    events.Publisher
	log          zerolog.Logger
}

func NewAppointmentService(
	appointments AppointmentStore,
	patients PatientStore,
	procedures ProcedureStore,
	users UserStore,
	engine *scheduling.Engine,
	publisher events.Publisher,
	log zerolog.Logger,
) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		patients:     patients,
		procedures:   procedures,
		users:        users,
		engine:       engine,
		publisher:    publisher,
		log:          log.With().Str("service", "appointments").Logger(),
	}
}

func (s *AppointmentService) scope(actor policy.Actor) policy.Scope {
	return policy.ReadScope(actor, policy.ResourceAppointments)
}

func (s *AppointmentService) List(ctx context.Context, actor policy.Actor, f repository.AppointmentFilter) ([]models.Appointment, error) {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return nil, err
	}
	for _, raw := range []string{f.Date, f.From, f.To} {
		if raw == "" {
			continue
		}
		if _, err := s.engine.ParseDate(raw); err != nil {
			return nil, err
		}
	}
	return s.appointments.List(ctx, s.scope(actor), f)
}

func (s *AppointmentService) Today(ctx context.Context, actor policy.Actor) ([]models.Appointment, error) {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return nil, err
	}
	list, err := s.appointments.List(ctx, s.scope(actor), repository.AppointmentFilter{Date: s.engine.TodayString()})
	if err != nil {
		return nil, err
	}
	return s.engine.TodayAppointments(list), nil
}

func (s *AppointmentService) Upcoming(ctx context.Context, actor policy.Actor) ([]models.Appointment, error) {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return nil, err
	}
	list, err := s.appointments.List(ctx, s.scope(actor), repository.AppointmentFilter{From: s.engine.TodayString()})
	if err != nil {
		return nil, err
	}
	return s.engine.Upcoming(list), nil
}

// CheckDate answers with the same verdict Create and Update would reach.
func (s *AppointmentService) CheckDate(raw string) DateCheck {
	if _, err := s.engine.ValidateDate(raw); err != nil {
		return DateCheck{Date: raw, Valid: false, Message: apperror.MessageOf(err)}
	}
	return DateCheck{Date: raw, Valid: true}
}

func (s *AppointmentService) Month(ctx context.Context, actor policy.Actor, professionalID uint64, year int, month time.Month) ([]scheduling.DayAvailability, error) {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return nil, err
	}
	if month < time.January || month > time.December {
		return nil, apperror.Validation("mês inválido")
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	list, err := s.appointments.List(ctx, s.scope(actor), repository.AppointmentFilter{
		ProfessionalID: professionalID,
		From:           first.Format(scheduling.DateLayout),
		To:             last.Format(scheduling.DateLayout),
	})
	if err != nil {
		return nil, err
	}
	return s.engine.Month(year, month, list)
}

func (s *AppointmentService) Day(ctx context.Context, actor policy.Actor, professionalID uint64, date string) ([]scheduling.SlotAvailability, error) {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return nil, err
	}
	if _, err := s.engine.ParseDate(date); err != nil {
		return nil, err
	}
	list, err := s.appointments.List(ctx, s.scope(actor), repository.AppointmentFilter{
		ProfessionalID: professionalID,
		Date:           date,
	})
	if err != nil {
		return nil, err
	}
	return s.engine.DaySlots(date, list)
}

func (s *AppointmentService) Create(ctx context.Context, actor policy.Actor, in models.AppointmentInput) (*models.Appointment, error) {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return nil, err
	}
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}
	clinicID, err := policy.StampClinic(actor)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, actor, clinicID, in); err != nil {
		return nil, err
	}

	a := &models.Appointment{ClinicID: &clinicID}
	applyAppointment(a, in)
	if err := s.checkSlot(ctx, a); err != nil {
		return nil, err
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	s.changed(ctx, a.ClinicID)
	return a, nil
}

// Update requires the version the client last read.
func (s *AppointmentService) Update(ctx context.Context, actor policy.Actor, id uint64, in models.AppointmentInput) (*models.Appointment, error) {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return nil, err
	}
	if in.Version == 0 {
		return nil, apperror.Validation("campo version é obrigatório")
	}
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}
	a, err := s.appointments.Get(ctx, mutationScope, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CheckMutation(actor, a.ClinicID); err != nil {
		return nil, err
	}
	if a.Version != in.Version {
		return nil, apperror.Conflict("o registro foi alterado por outro usuário, recarregue e tente novamente")
	}
	if a.ClinicID != nil {
		if err := s.checkReferences(ctx, actor, *a.ClinicID, in); err != nil {
			return nil, err
		}
	}

	applyAppointment(a, in)
	a.Version = in.Version
	a.Patient, a.Procedure, a.Professional = nil, nil, nil
	if err := s.checkSlot(ctx, a); err != nil {
		return nil, err
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	s.changed(ctx, a.ClinicID)
	return a, nil
}

func (s *AppointmentService) Delete(ctx context.Context, actor policy.Actor, id uint64) error {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return err
	}
	a, err := s.appointments.Get(ctx, mutationScope, id)
	if err != nil {
		return err
	}
	if err := policy.CheckMutation(actor, a.ClinicID); err != nil {
		return err
	}
	if err := s.appointments.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, a.ClinicID)
	return nil
}

func (s *AppointmentService) validateInput(in *models.AppointmentInput) error {
	if _, err := s.engine.ValidateDate(in.Date); err != nil {
		return err
	}
	in.Time = strings.TrimSpace(in.Time)
	if !s.engine.IsSlot(in.Time) {
		return apperror.Validation(fmt.Sprintf("horário inválido, use um de: %s", strings.Join(s.engine.Slots(), ", ")))
	}
	if in.PatientCategory == "" {
		in.PatientCategory = models.PatientAdult
	}
	if in.GuardianSignature != "" && in.PatientCategory != models.PatientMinor {
		return apperror.Validation("assinatura do responsável só se aplica a pacientes menores")
	}
	if in.Status == "" {
		in.Status = models.AppointmentConfirmed
	}
	return nil
}

// checkReferences makes sure patient, professional and procedure belong to the
// appointment's clinic. Records without a clinic are accepted on the matrix only.
func (s *AppointmentService) checkReferences(ctx context.Context, actor policy.Actor, clinicID uint64, in models.AppointmentInput) error {
	if _, err := patientInClinic(ctx, s.patients, actor, clinicID, in.PatientID); err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return apperror.Validation("paciente não pertence a esta clínica")
		}
		return err
	}

	pro, err := s.users.Get(ctx, in.ProfessionalID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return apperror.Validation("profissional não encontrado")
		}
		return err
	}
	if !policy.ReferenceScope(actor, clinicID, policy.ResourceProfessionals).Allows(pro.ClinicID) {
		return apperror.Validation("profissional não pertence a esta clínica")
	}

	if in.ProcedureID != nil {
		if _, err := s.procedures.Get(ctx, policy.ReferenceScope(actor, clinicID, policy.ResourceProcedures), *in.ProcedureID); err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				return apperror.Validation("procedimento não pertence a esta clínica")
			}
			return err
		}
	}
	return nil
}

func (s *AppointmentService) checkSlot(ctx context.Context, a *models.Appointment) error {
	if a.Status != models.AppointmentConfirmed {
		return nil
	}
	taken, err := s.appointments.SlotTaken(ctx, a.ProfessionalID, a.Date, a.Time, a.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperror.Conflict("o profissional já possui um agendamento neste horário")
	}
	return nil
}

// changed notifies subscribers. Delivery is best-effort.
func (s *AppointmentService) changed(ctx context.Context, clinicID *uint64) {
	if err := s.publisher.Publish(ctx, events.DataChanged(clinicID)); err != nil {
		s.log.Warn().Err(err).Msg("publish data_changed")
	}
}

func applyAppointment(a *models.Appointment, in models.AppointmentInput) {
	a.PatientID = in.PatientID
	a.ProcedureID = in.ProcedureID
	a.Date = in.Date
	a.Time = in.Time
	a.Notes = in.Notes
	a.ProfessionalID = in.ProfessionalID
	a.PatientCategory = in.PatientCategory
	a.GuardianSignature = in.GuardianSignature
	a.Status = in.Status
}

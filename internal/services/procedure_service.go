package services

import (
	"context"
	"strings"
	"time"

	"clinic-backend/internal/ledger"
	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"
	"clinic-backend/internal/repository"
	"clinic-backend/pkg/apperror"

	"github.com/rs/zerolog"
)

type ProcedureService struct {
	procedures ProcedureStore
	patients   PatientStore
	financial  FinancialStore
	log        zerolog.Logger
	now        func() time.Time
}

func NewProcedureService(procedures ProcedureStore, patients PatientStore, financial FinancialStore, log zerolog.Logger) *ProcedureService {
	return &ProcedureService{
		procedures: procedures,
		patients:   patients,
		financial:  financial,
		log:        log.With().Str("service", "procedures").Logger(),
		now:        time.Now,
	}
}

func (s *ProcedureService) List(ctx context.Context, actor policy.Actor, f repository.ProcedureFilter) ([]models.Procedure, error) {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return nil, err
	}
	return s.procedures.List(ctx, policy.ReadScope(actor, policy.ResourceProcedures), f)
}

// Create stores the procedure and, when it is priced, a pending revenue entry.
// A failing entry is logged and left for the ledger-drift report; the
// procedure is kept.
func (s *ProcedureService) Create(ctx context.Context, actor policy.Actor, in models.ProcedureInput) (*models.Procedure, error) {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return nil, err
	}
	clinicID, err := policy.StampClinic(actor)
	if err != nil {
		return nil, err
	}
	patient, err := patientInClinic(ctx, s.patients, actor, clinicID, in.PatientID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.Validation("paciente não pertence a esta clínica")
		}
		return nil, err
	}

	p := &models.Procedure{PatientID: patient.ID, ClinicID: &clinicID}
	applyProcedure(p, in)
	if err := s.procedures.Create(ctx, p); err != nil {
		return nil, err
	}

	if entry := ledger.FromProcedure(p, patient.Name, s.now()); entry != nil {
		if err := s.financial.Create(ctx, entry); err != nil {
			s.log.Warn().Err(err).
				Uint64("procedure_id", p.ID).
				Float64("price", p.Price).
				Msg("procedure saved without ledger entry")
		}
	}
	return p, nil
}

// Update never touches the ledger entry generated at creation.
func (s *ProcedureService) Update(ctx context.Context, actor policy.Actor, id uint64, in models.ProcedureInput) (*models.Procedure, error) {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return nil, err
	}
	p, err := s.procedures.Get(ctx, mutationScope, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CheckMutation(actor, p.ClinicID); err != nil {
		return nil, err
	}
	if in.PatientID != p.PatientID {
		if p.ClinicID == nil {
			return nil, apperror.Validation("procedimento sem clínica não pode trocar de paciente")
		}
		if _, err := patientInClinic(ctx, s.patients, actor, *p.ClinicID, in.PatientID); err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				return nil, apperror.Validation("paciente não pertence a esta clínica")
			}
			return nil, err
		}
		p.PatientID = in.PatientID
	}
	applyProcedure(p, in)
	p.Patient = nil
	if err := s.procedures.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProcedureService) Delete(ctx context.Context, actor policy.Actor, id uint64) error {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return err
	}
	p, err := s.procedures.Get(ctx, mutationScope, id)
	if err != nil {
		return err
	}
	if err := policy.CheckMutation(actor, p.ClinicID); err != nil {
		return err
	}
	return s.procedures.Delete(ctx, id)
}

func applyProcedure(p *models.Procedure, in models.ProcedureInput) {
	p.Category = strings.TrimSpace(in.Category)
	p.Name = strings.TrimSpace(in.Name)
	p.Details = in.Details
	p.Price = 0
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Aesthetic != nil {
		p.Aesthetic = *in.Aesthetic
	}
}

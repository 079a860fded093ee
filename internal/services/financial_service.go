package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-backend/internal/ledger"
	"clinic-backend/internal/models"
	"clinic-backend/internal/payments"
	"clinic-backend/internal/policy"
	"clinic-backend/internal/repository"
	"clinic-backend/pkg/apperror"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

type FinancialService struct {
	entries    FinancialStore
	patients   PatientStore
	procedures ProcedureStore
	gateway    payments.Gateway
	log        zerolog.Logger
	now        func() time.Time
}

func NewFinancialService(entries FinancialStore, patients PatientStore, procedures ProcedureStore, gateway payments.Gateway, log zerolog.Logger) *FinancialService {
	return &FinancialService{
		entries:    entries,
		patients:   patients,
		procedures: procedures,
		gateway:    gateway,
		log:        log.With().Str("service", "financial").Logger(),
		now:        time.Now,
	}
}

func (s *FinancialService) List(ctx context.Context, actor policy.Actor, f repository.FinancialFilter) ([]models.FinancialEntry, error) {
	if err := policy.Require(actor, policy.PermFinancial); err != nil {
		return nil, err
	}
	return s.entries.List(ctx, policy.ReadScope(actor, policy.ResourceFinancial), f)
}

func (s *FinancialService) Create(ctx context.Context, actor policy.Actor, in models.FinancialInput) (*models.FinancialEntry, error) {
	if err := policy.Require(actor, policy.PermFinancial); err != nil {
		return nil, err
	}
	clinicID, err := policy.StampClinic(actor)
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.PaymentPending
	}
	if !ledger.ValidStatus(in.Status) {
		return nil, apperror.Validation("status de pagamento inválido")
	}
	if err := ledger.ValidatePlan(in.PaymentPlan); err != nil {
		return nil, err
	}

	e := &models.FinancialEntry{ClinicID: &clinicID, Status: in.Status}
	if err := s.apply(ctx, actor, e, clinicID, in); err != nil {
		return nil, err
	}
	ledger.Settle(e)
	if err := s.entries.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Update requires the version the client last read. Status changes follow the
// ledger transition table.
func (s *FinancialService) Update(ctx context.Context, actor policy.Actor, id uint64, in models.FinancialInput) (*models.FinancialEntry, error) {
	if err := policy.Require(actor, policy.PermFinancial); err != nil {
		return nil, err
	}
	if in.Version == 0 {
		return nil, apperror.Validation("campo version é obrigatório")
	}
	e, err := s.entries.Get(ctx, mutationScope, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CheckMutation(actor, e.ClinicID); err != nil {
		return nil, err
	}
	if e.Version != in.Version {
		return nil, apperror.Conflict("o registro foi alterado por outro usuário, recarregue e tente novamente")
	}
	if in.Status != "" {
		if err := ledger.Transition(e.Status, in.Status); err != nil {
			return nil, err
		}
		e.Status = in.Status
	}
	if err := ledger.ValidatePlan(in.PaymentPlan); err != nil {
		return nil, err
	}

	var clinicID uint64
	if e.ClinicID != nil {
		clinicID = *e.ClinicID
	}
	if err := s.apply(ctx, actor, e, clinicID, in); err != nil {
		return nil, err
	}
	ledger.Settle(e)
	if err := s.entries.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *FinancialService) Delete(ctx context.Context, actor policy.Actor, id uint64) error {
	if err := policy.Require(actor, policy.PermFinancial); err != nil {
		return err
	}
	e, err := s.entries.Get(ctx, mutationScope, id)
	if err != nil {
		return err
	}
	if err := policy.CheckMutation(actor, e.ClinicID); err != nil {
		return err
	}
	return s.entries.Delete(ctx, id)
}

// apply copies the editable fields. clinicID 0 means the entry has no clinic
// and its patient is not checked.
func (s *FinancialService) apply(ctx context.Context, actor policy.Actor, e *models.FinancialEntry, clinicID uint64, in models.FinancialInput) error {
	if in.ProcedureID != nil && (e.ProcedureID == nil || *e.ProcedureID != *in.ProcedureID) {
		if err := s.checkProcedure(ctx, actor, clinicID, *in.ProcedureID); err != nil {
			return err
		}
	}

	e.Description = strings.TrimSpace(in.Description)
	e.Amount = in.Amount
	e.Date = in.Date
	if e.Date == "" {
		e.Date = s.now().Format(time.RFC3339)
	}
	e.Type = in.Type
	e.PaymentPlan = datatypes.NewJSONType(in.PaymentPlan)
	e.ProcedureID = in.ProcedureID

	if in.Signature != e.Signature {
		e.Signature = in.Signature
		e.SignatureDate = nil
		if in.Signature != "" {
			e.SignatureDate = ptr(s.now())
		}
	}

	e.PatientID = in.PatientID
	e.PatientName = strings.TrimSpace(in.PatientName)
	if in.PatientID != nil && clinicID != 0 {
		p, err := patientInClinic(ctx, s.patients, actor, clinicID, *in.PatientID)
		if err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				return apperror.Validation("paciente não pertence a esta clínica")
			}
			return err
		}
		if e.PatientName == "" {
			e.PatientName = p.Name
		}
	}
	return nil
}

func (s *FinancialService) checkProcedure(ctx context.Context, actor policy.Actor, clinicID, procedureID uint64) error {
	if clinicID == 0 {
		return apperror.Validation("lançamento sem clínica não pode ser vinculado a um procedimento")
	}
	_, err := s.procedures.Get(ctx, policy.ReferenceScope(actor, clinicID, policy.ResourceProcedures), procedureID)
	if apperror.Is(err, apperror.KindNotFound) {
		return apperror.Validation("procedimento não pertence a esta clínica")
	}
	return err
}

// PaymentLink creates a Midtrans Snap link for a pending revenue entry.
func (s *FinancialService) PaymentLink(ctx context.Context, actor policy.Actor, id uint64) (*payments.Link, error) {
	if err := policy.Require(actor, policy.PermFinancial); err != nil {
		return nil, err
	}
	e, err := s.entries.Get(ctx, policy.ReadScope(actor, policy.ResourceFinancial), id)
	if err != nil {
		return nil, err
	}
	if e.Type != models.EntryRevenue || e.Status != models.PaymentPending {
		return nil, apperror.Validation("apenas receitas pendentes podem gerar link de pagamento")
	}

	var email string
	if e.PatientID != nil {
		if p, err := s.patients.Get(ctx, policy.All(), *e.PatientID); err == nil {
			email = p.Email
		}
	}
	if s.gateway == nil {
		return nil, apperror.Validation("pagamento online não está configurado")
	}
	ref := fmt.Sprintf("FIN-%d-%d", e.ID, s.now().Unix())
	link, err := s.gateway.CreateLink(ctx, payments.LinkRequest{
		Ref:           ref,
		Amount:        e.Amount,
		Description:   e.Description,
		CustomerName:  e.PatientName,
		CustomerEmail: email,
		ItemID:        fmt.Sprintf("FIN-%d", e.ID),
	})
	if errors.Is(err, payments.ErrDisabled) {
		return nil, apperror.Validation("pagamento online não está configurado")
	}
	if err != nil {
		return nil, apperror.Internal("falha ao gerar link de pagamento", err)
	}

	e.PaymentRef = link.Ref
	e.PaymentURL = link.URL
	if err := s.entries.Update(ctx, e); err != nil {
		return nil, err
	}
	return link, nil
}

// HandleNotification applies a verified gateway webhook to its entry.
// Statuses the ledger cannot move to are logged and ignored.
func (s *FinancialService) HandleNotification(ctx context.Context, n payments.Notification) error {
	if s.gateway == nil || !s.gateway.Verify(n) {
		return apperror.Unauthorized("assinatura inválida")
	}
	e, err := s.entries.GetByPaymentRef(ctx, n.OrderID)
	if err != nil {
		return err
	}
	status, changed := ledger.StatusFromGateway(n.TransactionStatus, n.FraudStatus)
	log := s.log.With().Str("order_id", n.OrderID).Str("transaction_status", n.TransactionStatus).Logger()
	if !changed || status == e.Status {
		log.Debug().Msg("notification without status change")
		return nil
	}
	if err := ledger.Transition(e.Status, status); err != nil {
		log.Warn().Err(err).Str("from", e.Status).Msg("notification ignored")
		return nil
	}
	from := e.Status
	e.Status = status
	if err := s.entries.Update(ctx, e); err != nil {
		return err
	}
	log.Info().Str("from", from).Str("to", status).Msg("entry status updated by gateway")
	return nil
}

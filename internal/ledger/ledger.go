// Package ledger holds the financial entry rules: status transitions, payment
// plans and the entry generated for a priced procedure.
package ledger

import (
	"fmt"
	"math"
	"time"

	"clinic-backend/internal/models"
	"clinic-backend/pkg/apperror"
)

var transitions = map[string]map[string]bool{
	models.PaymentPending:   {models.PaymentPaid: true, models.PaymentCancelled: true},
	models.PaymentPaid:      {models.PaymentPending: true, models.PaymentCancelled: true},
	models.PaymentCancelled: {models.PaymentPending: true},
}

func ValidStatus(status string) bool {
	_, ok := transitions[status]
	return ok
}

// Transition checks from -> to. Staying in the same status is always allowed.
func Transition(from, to string) error {
	if !ValidStatus(to) {
		return apperror.Validation(fmt.Sprintf("status de pagamento inválido: %q", to))
	}
	if from == to {
		return nil
	}
	if !transitions[from][to] {
		return apperror.Validation(fmt.Sprintf("transição de %s para %s não permitida", from, to))
	}
	return nil
}

// PlanTotal sums the rows of a payment plan, rounded to cents.
func PlanTotal(plan []models.PaymentInstallment) float64 {
	var total float64
	for _, p := range plan {
		total += p.Amount
	}
	return math.Round(total*100) / 100
}

func ValidatePlan(plan []models.PaymentInstallment) error {
	for i, p := range plan {
		if p.Amount <= 0 {
			return apperror.Validation(fmt.Sprintf("parcela %d com valor inválido", i+1))
		}
	}
	return nil
}

// Settle marks a pending entry as paid once its plan covers the amount.
func Settle(e *models.FinancialEntry) {
	if e.Status != models.PaymentPending {
		return
	}
	if PlanTotal(e.PaymentPlan.Data()) >= e.Amount {
		e.Status = models.PaymentPaid
	}
}

// FromProcedure builds the pending revenue entry for a priced procedure. It
// returns nil when the procedure carries no price.
func FromProcedure(p *models.Procedure, patientName string, now time.Time) *models.FinancialEntry {
	if p.Price <= 0 {
		return nil
	}
	procID := p.ID
	patientID := p.PatientID
	return &models.FinancialEntry{
		Description: "Procedimento: " + p.Name,
		Amount:      p.Price,
		Date:        now.Format(time.RFC3339),
		Type:        models.EntryRevenue,
		Status:      models.PaymentPending,
		PatientID:   &patientID,
		PatientName: patientName,
		ProcedureID: &procID,
		ClinicID:    p.ClinicID,
		Version:     1,
	}
}

// StatusFromGateway maps a Midtrans transaction status onto an entry status.
// The second return is false when the entry should stay as it is.
func StatusFromGateway(transactionStatus, fraudStatus string) (string, bool) {
	switch transactionStatus {
	case "settlement":
		return models.PaymentPaid, true
	case "capture":
		if fraudStatus == "accept" {
			return models.PaymentPaid, true
		}
		return "", false
	case "deny", "cancel", "expire":
		return models.PaymentCancelled, true
	default:
		return "", false
	}
}

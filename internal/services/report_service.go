package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"

	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"
	"clinic-backend/internal/repository"

	"github.com/360EntSecGroup-Skylar/excelize"
)

type ReportService struct {
	reports    ReportStore
	clinics    ClinicStore
	financial  FinancialStore
	procedures ProcedureStore
}

func NewReportService(reports ReportStore, clinics ClinicStore, financial FinancialStore, procedures ProcedureStore) *ReportService {
	return &ReportService{reports: reports, clinics: clinics, financial: financial, procedures: procedures}
}

func newSummary(id *uint64, name string) *models.ClinicSummary {
	return &models.ClinicSummary{
		ClinicID:     id,
		ClinicName:   name,
		Appointments: map[string]int64{},
		Revenue:      map[string]float64{},
		Expense:      map[string]float64{},
	}
}

// Summary aggregates patients, appointments and money per clinic and in
// total. Rows without a clinic are counted under the matrix.
func (s *ReportService) Summary(ctx context.Context, actor policy.Actor) (*models.SummaryReport, error) {
	if err := policy.Require(actor, policy.PermReports); err != nil {
		return nil, err
	}
	clinics, err := s.clinics.List(ctx)
	if err != nil {
		return nil, err
	}
	patients, err := s.reports.PatientCounts(ctx, policy.ReadScope(actor, policy.ResourcePatients))
	if err != nil {
		return nil, err
	}
	appts, err := s.reports.AppointmentCounts(ctx, policy.ReadScope(actor, policy.ResourceAppointments))
	if err != nil {
		return nil, err
	}
	sums, err := s.reports.FinancialSums(ctx, policy.ReadScope(actor, policy.ResourceFinancial))
	if err != nil {
		return nil, err
	}

	names := make(map[uint64]string, len(clinics))
	var matrix uint64
	for i, c := range clinics {
		names[c.ID] = c.Name
		if i == 0 {
			matrix = c.ID
		}
	}

	byClinic := map[uint64]*models.ClinicSummary{}
	bucket := func(id *uint64) *models.ClinicSummary {
		key := matrix
		if id != nil {
			key = *id
		}
		if sum, ok := byClinic[key]; ok {
			return sum
		}
		name, ok := names[key]
		if !ok {
			name = fmt.Sprintf("Clínica #%d", key)
		}
		sum := newSummary(ptr(key), name)
		byClinic[key] = sum
		return sum
	}

	scope := policy.ReadScope(actor, policy.ResourceAppointments)
	for _, c := range clinics {
		if scope.Allows(ptr(c.ID)) {
			bucket(ptr(c.ID))
		}
	}

	total := newSummary(nil, "Total")
	for _, r := range patients {
		bucket(r.ClinicID).Patients += r.Count
		total.Patients += r.Count
	}
	for _, r := range appts {
		bucket(r.ClinicID).Appointments[r.Status] += r.Count
		total.Appointments[r.Status] += r.Count
	}
	for _, r := range sums {
		for _, sum := range []*models.ClinicSummary{bucket(r.ClinicID), total} {
			addMoney(sum, r)
		}
	}

	report := &models.SummaryReport{Total: *total}
	for _, sum := range byClinic {
		report.Clinics = append(report.Clinics, *sum)
	}
	sort.Slice(report.Clinics, func(i, j int) bool {
		return *report.Clinics[i].ClinicID < *report.Clinics[j].ClinicID
	})
	return report, nil
}

func addMoney(sum *models.ClinicSummary, r repository.SumRow) {
	switch r.Type {
	case models.EntryRevenue:
		sum.Revenue[r.Status] = round2(sum.Revenue[r.Status] + r.Total)
		if r.Status == models.PaymentPaid {
			sum.Balance = round2(sum.Balance + r.Total)
		}
	case models.EntryExpense:
		sum.Expense[r.Status] = round2(sum.Expense[r.Status] + r.Total)
		if r.Status == models.PaymentPaid {
			sum.Balance = round2(sum.Balance - r.Total)
		}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var financialHeaders = map[string]string{
	"A1": "ID",
	"B1": "Data",
	"C1": "Descrição",
	"D1": "Tipo",
	"E1": "Status",
	"F1": "Valor",
	"G1": "Paciente",
	"H1": "Clínica",
}

// ExportFinancial writes the visible ledger entries as an xlsx workbook.
func (s *ReportService) ExportFinancial(ctx context.Context, actor policy.Actor, f repository.FinancialFilter, w io.Writer) error {
	if err := policy.Require(actor, policy.PermReports); err != nil {
		return err
	}
	entries, err := s.financial.List(ctx, policy.ReadScope(actor, policy.ResourceFinancial), f)
	if err != nil {
		return err
	}
	clinics, err := s.clinics.List(ctx)
	if err != nil {
		return err
	}
	names := make(map[uint64]string, len(clinics))
	for _, c := range clinics {
		names[c.ID] = c.Name
	}

	file := excelize.NewFile()
	sheet := "Financeiro"
	file.NewSheet(sheet)
	file.DeleteSheet("Sheet1")
	for cell, title := range financialHeaders {
		file.SetCellValue(sheet, cell, title)
	}
	for i, e := range entries {
		row := i + 2
		clinic := ""
		if e.ClinicID != nil {
			clinic = names[*e.ClinicID]
		}
		file.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.ID)
		file.SetCellValue(sheet, fmt.Sprintf("B%d", row), e.Date)
		file.SetCellValue(sheet, fmt.Sprintf("C%d", row), e.Description)
		file.SetCellValue(sheet, fmt.Sprintf("D%d", row), e.Type)
		file.SetCellValue(sheet, fmt.Sprintf("E%d", row), e.Status)
		file.SetCellValue(sheet, fmt.Sprintf("F%d", row), e.Amount)
		file.SetCellValue(sheet, fmt.Sprintf("G%d", row), e.PatientName)
		file.SetCellValue(sheet, fmt.Sprintf("H%d", row), clinic)
	}
	return file.Write(w)
}

// LedgerDrift lists priced procedures that never got their ledger entry.
func (s *ReportService) LedgerDrift(ctx context.Context, actor policy.Actor) ([]models.Procedure, error) {
	if err := policy.Require(actor, policy.PermReports); err != nil {
		return nil, err
	}
	return s.procedures.Unledgered(ctx, policy.ReadScope(actor, policy.ResourceProcedures))
}

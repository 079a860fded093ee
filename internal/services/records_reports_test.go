package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"clinic-backend/internal/models"
	"clinic-backend/internal/repository"
	"clinic-backend/internal/scheduling"
	"clinic-backend/pkg/apperror"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCreate_SnapshotsPatientAndSigner(t *testing.T) {
	records := newMemRecords()
	svc := NewRecordService(records, seededPatients())
	doctor := employeeActor(u64(matrixID), models.SubRoleDoctor)
	doctor.UserID = 20

	rec, err := svc.Create(context.Background(), doctor, models.ClinicalRecordInput{
		PatientID: 10, Date: "2026-10-19", Anamnesis: "dor lombar", ProfessionalSignature: "sig",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", rec.PatientName)
	assert.Equal(t, "111", rec.PatientNationalID)
	assert.Equal(t, uint64(20), rec.ProfessionalID)
	assert.Equal(t, matrixID, *rec.ClinicID)
}

func TestRecordAndReminder_LegacyPatientRejectedOnBranch(t *testing.T) {
	ctx := context.Background()
	records := newMemRecords()
	recordSvc := NewRecordService(records, seededPatients())

	_, err := recordSvc.Create(ctx, employeeActor(u64(branchID), models.SubRoleDoctor), models.ClinicalRecordInput{
		PatientID: 12, Date: "2026-10-19", ProfessionalSignature: "sig",
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation), "record: %v", err)

	mail := &recordingMailer{}
	reminderSvc := NewReminderService(&memReminders{}, seededPatients(), newMemAppointments(), mail, scheduling.NewEngine(), zerolog.Nop())
	_, err = reminderSvc.Create(ctx, employeeActor(u64(branchID), ""), models.ReminderInput{PatientID: 12, Message: "Retorno"})
	assert.True(t, apperror.Is(err, apperror.KindValidation), "reminder: %v", err)
	assert.Empty(t, mail.sent)

	rec, err := recordSvc.Create(ctx, employeeActor(u64(matrixID), models.SubRoleDoctor), models.ClinicalRecordInput{
		PatientID: 12, Date: "2026-10-19", ProfessionalSignature: "sig",
	})
	require.NoError(t, err)
	assert.Equal(t, "Carla", rec.PatientName)
}

func TestRecord_ReceptionistForbidden(t *testing.T) {
	svc := NewRecordService(newMemRecords(), seededPatients())

	_, err := svc.List(context.Background(), employeeActor(u64(matrixID), models.SubRoleReceptionist), 0)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestRecordUpdate_PatientIsFixed(t *testing.T) {
	records := newMemRecords()
	svc := NewRecordService(records, seededPatients())
	doctor := employeeActor(u64(matrixID), models.SubRoleDoctor)
	ctx := context.Background()
	in := models.ClinicalRecordInput{PatientID: 10, Date: "2026-10-19", ProfessionalSignature: "sig"}

	rec, err := svc.Create(ctx, doctor, in)
	require.NoError(t, err)

	in.PatientID = 12
	_, err = svc.Update(ctx, doctor, rec.ID, in)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	in.PatientID = 10
	in.Evolution = "melhora"
	updated, err := svc.Update(ctx, doctor, rec.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "melhora", updated.Evolution)

	err = svc.Delete(ctx, employeeActor(u64(branchID), models.SubRoleDoctor), rec.ID)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestReminderCreate_MailsPatient(t *testing.T) {
	patients := newMemPatients(models.Patient{ID: 10, Name: "Ana", Email: "ana@example.com", ClinicID: u64(matrixID)})
	reminders := &memReminders{}
	mail := &recordingMailer{}
	svc := NewReminderService(reminders, patients, newMemAppointments(), mail, scheduling.NewEngine(), zerolog.Nop())

	r, err := svc.Create(context.Background(), employeeActor(u64(matrixID), ""), models.ReminderInput{PatientID: 10, Message: " Trazer exames "})
	require.NoError(t, err)
	assert.Equal(t, "Trazer exames", r.Message)
	require.Len(t, mail.sent, 1)
	assert.Contains(t, mail.sent[0].Body, "Trazer exames")

	list, err := svc.List(context.Background(), employeeActor(u64(branchID), ""))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSendTomorrow(t *testing.T) {
	ana := &models.Patient{ID: 10, Name: "Ana", Email: "ana@example.com"}
	appts := newMemAppointments(
		models.Appointment{ID: 1, PatientID: 10, Date: "2026-10-20", Time: "09:00", Status: models.AppointmentConfirmed, ClinicID: u64(matrixID), Patient: ana},
		models.Appointment{ID: 2, PatientID: 11, Date: "2026-10-20", Time: "10:00", Status: models.AppointmentConfirmed, ClinicID: u64(branchID)},
		models.Appointment{ID: 3, PatientID: 10, Date: "2026-10-20", Time: "11:00", Status: models.AppointmentCancelled, ClinicID: u64(matrixID)},
		models.Appointment{ID: 4, PatientID: 10, Date: "2026-10-21", Time: "09:00", Status: models.AppointmentConfirmed, ClinicID: u64(matrixID)},
	)
	reminders := &memReminders{}
	mail := &recordingMailer{}
	engine := scheduling.NewEngine(scheduling.WithClock(func() time.Time { return fixedNow }))
	svc := NewReminderService(reminders, seededPatients(), appts, mail, engine, zerolog.Nop())
	ctx := context.Background()

	n, err := svc.SendTomorrow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, mail.sent, 1)
	assert.Contains(t, mail.sent[0].Body, "20/10/2026")
	assert.Equal(t, branchID, *reminders.rows[1].ClinicID)

	n, err = svc.SendTomorrow(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "reruns skip reminded appointments")
}

func newReportFixture() (*ReportService, *memReports, *memFinancial, *memProcedures) {
	reports := &memReports{
		patients: []repository.CountRow{
			{ClinicID: u64(matrixID), Count: 3},
			{ClinicID: u64(branchID), Count: 2},
			{ClinicID: nil, Count: 4},
		},
		appointments: []repository.CountRow{
			{ClinicID: u64(matrixID), Status: models.AppointmentConfirmed, Count: 5},
			{ClinicID: u64(branchID), Status: models.AppointmentNoShow, Count: 1},
		},
		sums: []repository.SumRow{
			{ClinicID: u64(matrixID), Type: models.EntryRevenue, Status: models.PaymentPaid, Total: 1000.10},
			{ClinicID: nil, Type: models.EntryRevenue, Status: models.PaymentPaid, Total: 200.20},
			{ClinicID: u64(branchID), Type: models.EntryExpense, Status: models.PaymentPaid, Total: 300},
			{ClinicID: u64(branchID), Type: models.EntryRevenue, Status: models.PaymentPending, Total: 50},
		},
	}
	financial := newMemFinancial(
		models.FinancialEntry{ID: 1, Description: "Consulta", Amount: 200, Type: models.EntryRevenue, Status: models.PaymentPaid, ClinicID: u64(matrixID), PatientName: "Ana"},
		models.FinancialEntry{ID: 2, Description: "Aluguel", Amount: 900, Type: models.EntryExpense, Status: models.PaymentPending, ClinicID: u64(branchID)},
	)
	procedures := newMemProcedures()
	svc := NewReportService(reports, seededClinics(), financial, procedures)
	return svc, reports, financial, procedures
}

func TestSummary_LegacyRowsGoToMatrix(t *testing.T) {
	svc, _, _, _ := newReportFixture()

	report, err := svc.Summary(context.Background(), ownerActor(nil))
	require.NoError(t, err)
	require.Len(t, report.Clinics, 2)

	matrix, branch := report.Clinics[0], report.Clinics[1]
	assert.Equal(t, "Matriz", matrix.ClinicName)
	assert.Equal(t, int64(7), matrix.Patients)
	assert.Equal(t, 1200.30, matrix.Revenue[models.PaymentPaid])
	assert.Equal(t, 1200.30, matrix.Balance)

	assert.Equal(t, "Filial", branch.ClinicName)
	assert.Equal(t, int64(1), branch.Appointments[models.AppointmentNoShow])
	assert.Equal(t, -300.0, branch.Balance)
	assert.Equal(t, 50.0, branch.Revenue[models.PaymentPending])

	assert.Equal(t, int64(9), report.Total.Patients)
	assert.Equal(t, 900.30, report.Total.Balance)
	assert.Nil(t, report.Total.ClinicID)
}

func TestSummary_SelectedBranch(t *testing.T) {
	svc, _, _, _ := newReportFixture()

	report, err := svc.Summary(context.Background(), ownerActor(u64(branchID)))
	require.NoError(t, err)
	require.Len(t, report.Clinics, 1)
	assert.Equal(t, branchID, *report.Clinics[0].ClinicID)
	assert.Equal(t, int64(2), report.Total.Patients)
}

func TestSummary_Permissions(t *testing.T) {
	svc, _, _, _ := newReportFixture()

	_, err := svc.Summary(context.Background(), employeeActor(u64(matrixID), models.SubRoleReceptionist))
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = svc.Summary(context.Background(), employeeActor(u64(matrixID), models.SubRoleOwnerAlias))
	assert.NoError(t, err)
}

func TestExportFinancial(t *testing.T) {
	svc, _, _, _ := newReportFixture()
	var buf bytes.Buffer

	require.NoError(t, svc.ExportFinancial(context.Background(), ownerActor(nil), repository.FinancialFilter{}, &buf))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "Descrição", book.GetCellValue("Financeiro", "C1"))
	assert.Equal(t, "Consulta", book.GetCellValue("Financeiro", "C2"))
	assert.Equal(t, "Matriz", book.GetCellValue("Financeiro", "H2"))
	assert.Equal(t, "Filial", book.GetCellValue("Financeiro", "H3"))
}

func TestLedgerDrift(t *testing.T) {
	svc, _, _, procedures := newReportFixture()
	procedures.rows[1] = &models.Procedure{ID: 1, Name: "Botox", Price: 350, ClinicID: u64(branchID)}

	drift, err := svc.LedgerDrift(context.Background(), ownerActor(nil))
	require.NoError(t, err)
	require.Len(t, drift, 1)

	drift, err = svc.LedgerDrift(context.Background(), ownerActor(u64(matrixID)))
	require.NoError(t, err)
	assert.Empty(t, drift)
}

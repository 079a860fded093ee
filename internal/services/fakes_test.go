package services

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"clinic-backend/internal/events"
	"clinic-backend/internal/mailer"
	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"
	"clinic-backend/internal/repository"
	"clinic-backend/pkg/apperror"
)

// Compile-time checks that the gorm repositories satisfy the service stores.
var (
	_ ClinicStore      = (*repository.ClinicRepository)(nil)
	_ UserStore        = (*repository.UserRepository)(nil)
	_ PatientStore     = (*repository.PatientRepository)(nil)
	_ ProcedureStore   = (*repository.ProcedureRepository)(nil)
	_ AppointmentStore = (*repository.AppointmentRepository)(nil)
	_ FinancialStore   = (*repository.FinancialRepository)(nil)
	_ RecordStore      = (*repository.RecordRepository)(nil)
	_ ReminderStore    = (*repository.ReminderRepository)(nil)
	_ ReportStore      = (*repository.ReportRepository)(nil)
)

// --- clinics ---

type memClinics struct {
	rows  []models.Clinic
	users map[uint64]int64
}

func (m *memClinics) add(id uint64, name string, created time.Time) {
	m.rows = append(m.rows, models.Clinic{ID: id, Name: name, CreatedAt: created})
	sort.Slice(m.rows, func(i, j int) bool { return m.rows[i].CreatedAt.Before(m.rows[j].CreatedAt) })
}

func (m *memClinics) List(context.Context) ([]models.Clinic, error) {
	return append([]models.Clinic(nil), m.rows...), nil
}

func (m *memClinics) Get(_ context.Context, id uint64) (*models.Clinic, error) {
	for _, c := range m.rows {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, apperror.NotFound("clínica não encontrada")
}

func (m *memClinics) Matrix(context.Context) (*models.Clinic, error) {
	if len(m.rows) == 0 {
		return nil, nil
	}
	c := m.rows[0]
	return &c, nil
}

func (m *memClinics) Create(_ context.Context, c *models.Clinic) error {
	for _, r := range m.rows {
		if r.Name == c.Name {
			return apperror.Conflict("já existe uma clínica com este nome")
		}
	}
	c.ID = uint64(len(m.rows) + 100)
	c.CreatedAt = time.Now()
	m.rows = append(m.rows, *c)
	return nil
}

func (m *memClinics) Save(_ context.Context, c *models.Clinic) error {
	for i := range m.rows {
		if m.rows[i].ID == c.ID {
			m.rows[i] = *c
			return nil
		}
	}
	return apperror.NotFound("clínica não encontrada")
}

func (m *memClinics) Delete(_ context.Context, id uint64) error {
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("clínica não encontrada")
}

func (m *memClinics) CountUsers(_ context.Context, id uint64) (int64, error) {
	return m.users[id], nil
}

// --- users ---

type memUsers struct {
	rows map[uint64]*models.User
	next uint64
}

func newMemUsers(users ...models.User) *memUsers {
	m := &memUsers{rows: map[uint64]*models.User{}, next: 1000}
	for i := range users {
		u := users[i]
		m.rows[u.ID] = &u
	}
	return m
}

func (m *memUsers) Count(context.Context) (int64, error) { return int64(len(m.rows)), nil }

func (m *memUsers) Get(_ context.Context, id uint64) (*models.User, error) {
	if u, ok := m.rows[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, apperror.NotFound("usuário não encontrado")
}

func (m *memUsers) find(match func(*models.User) bool) (*models.User, error) {
	for _, u := range m.rows {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, apperror.NotFound("usuário não encontrado")
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Username == username })
}

func (m *memUsers) GetByResetToken(_ context.Context, token string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ResetToken != nil && *u.ResetToken == token })
}

func (m *memUsers) List(context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range m.rows {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) ListProfessionals(_ context.Context, scope policy.Scope, subRole string) ([]models.User, error) {
	var out []models.User
	for _, u := range m.rows {
		if scope.Allows(u.ClinicID) && (subRole == "" || u.SubRole == subRole) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	for _, r := range m.rows {
		if r.Username == u.Username {
			return apperror.Conflict("nome de usuário já está em uso")
		}
	}
	m.next++
	u.ID = m.next
	c := *u
	m.rows[u.ID] = &c
	return nil
}

func (m *memUsers) Save(_ context.Context, u *models.User) error {
	c := *u
	m.rows[u.ID] = &c
	return nil
}

func (m *memUsers) Delete(_ context.Context, id uint64) error {
	if _, ok := m.rows[id]; !ok {
		return apperror.NotFound("usuário não encontrado")
	}
	delete(m.rows, id)
	return nil
}

// --- patients ---

type memPatients struct {
	rows map[uint64]*models.Patient
	next uint64
}

func newMemPatients(patients ...models.Patient) *memPatients {
	m := &memPatients{rows: map[uint64]*models.Patient{}, next: 500}
	for i := range patients {
		p := patients[i]
		m.rows[p.ID] = &p
	}
	return m
}

func (m *memPatients) List(_ context.Context, scope policy.Scope, search string) ([]models.Patient, error) {
	var out []models.Patient
	for _, p := range m.rows {
		if !scope.Allows(p.ClinicID) {
			continue
		}
		if search != "" && !strings.Contains(p.Name, search) && !strings.Contains(p.NationalID, search) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memPatients) Get(_ context.Context, scope policy.Scope, id uint64) (*models.Patient, error) {
	if p, ok := m.rows[id]; ok && scope.Allows(p.ClinicID) {
		c := *p
		return &c, nil
	}
	return nil, apperror.NotFound("paciente não encontrado")
}

func (m *memPatients) unique(p *models.Patient) error {
	for _, r := range m.rows {
		if r.ID != p.ID && r.NationalID == p.NationalID && sameClinic(r.ClinicID, p.ClinicID) {
			return apperror.Conflict("já existe um paciente com este CPF nesta clínica")
		}
	}
	return nil
}

func (m *memPatients) Create(_ context.Context, p *models.Patient) error {
	if err := m.unique(p); err != nil {
		return err
	}
	m.next++
	p.ID = m.next
	c := *p
	m.rows[p.ID] = &c
	return nil
}

func (m *memPatients) Save(_ context.Context, p *models.Patient) error {
	if err := m.unique(p); err != nil {
		return err
	}
	c := *p
	m.rows[p.ID] = &c
	return nil
}

func (m *memPatients) Delete(_ context.Context, id uint64) error {
	delete(m.rows, id)
	return nil
}

func sameClinic(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// --- procedures ---

type memProcedures struct {
	rows map[uint64]*models.Procedure
	next uint64
}

func newMemProcedures() *memProcedures {
	return &memProcedures{rows: map[uint64]*models.Procedure{}, next: 300}
}

func (m *memProcedures) List(_ context.Context, scope policy.Scope, f repository.ProcedureFilter) ([]models.Procedure, error) {
	var out []models.Procedure
	for _, p := range m.rows {
		if scope.Allows(p.ClinicID) && (f.PatientID == 0 || p.PatientID == f.PatientID) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memProcedures) Get(_ context.Context, scope policy.Scope, id uint64) (*models.Procedure, error) {
	if p, ok := m.rows[id]; ok && scope.Allows(p.ClinicID) {
		c := *p
		return &c, nil
	}
	return nil, apperror.NotFound("procedimento não encontrado")
}

func (m *memProcedures) Create(_ context.Context, p *models.Procedure) error {
	m.next++
	p.ID = m.next
	c := *p
	m.rows[p.ID] = &c
	return nil
}

func (m *memProcedures) Save(_ context.Context, p *models.Procedure) error {
	c := *p
	m.rows[p.ID] = &c
	return nil
}

func (m *memProcedures) Delete(_ context.Context, id uint64) error {
	delete(m.rows, id)
	return nil
}

func (m *memProcedures) Unledgered(_ context.Context, scope policy.Scope) ([]models.Procedure, error) {
	return m.List(context.Background(), scope, repository.ProcedureFilter{})
}

// --- appointments ---

type memAppointments struct {
	rows map[uint64]*models.Appointment
	next uint64
}

func newMemAppointments(list ...models.Appointment) *memAppointments {
	m := &memAppointments{rows: map[uint64]*models.Appointment{}, next: 700}
	for i := range list {
		a := list[i]
		if a.Version == 0 {
			a.Version = 1
		}
		m.rows[a.ID] = &a
	}
	return m
}

func (m *memAppointments) List(_ context.Context, scope policy.Scope, f repository.AppointmentFilter) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range m.rows {
		switch {
		case !scope.Allows(a.ClinicID),
			f.ProfessionalID != 0 && a.ProfessionalID != f.ProfessionalID,
			f.PatientID != 0 && a.PatientID != f.PatientID,
			f.Date != "" && a.Date != f.Date,
			f.From != "" && a.Date < f.From,
			f.To != "" && a.Date > f.To,
			f.Status != "" && a.Status != f.Status:
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memAppointments) Get(_ context.Context, scope policy.Scope, id uint64) (*models.Appointment, error) {
	if a, ok := m.rows[id]; ok && scope.Allows(a.ClinicID) {
		c := *a
		return &c, nil
	}
	return nil, apperror.NotFound("agendamento não encontrado")
}

func (m *memAppointments) SlotTaken(_ context.Context, professionalID uint64, date, tm string, excludeID uint64) (bool, error) {
	for _, a := range m.rows {
		if a.ID != excludeID && a.ProfessionalID == professionalID && a.Date == date && a.Time == tm &&
			a.Status == models.AppointmentConfirmed {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAppointments) Create(_ context.Context, a *models.Appointment) error {
	m.next++
	a.ID = m.next
	a.Version = 1
	c := *a
	m.rows[a.ID] = &c
	return nil
}

func (m *memAppointments) Update(_ context.Context, a *models.Appointment) error {
	cur, ok := m.rows[a.ID]
	if !ok {
		return apperror.NotFound("agendamento não encontrado")
	}
	if cur.Version != a.Version {
		return apperror.Conflict("versão desatualizada")
	}
	a.Version++
	c := *a
	m.rows[a.ID] = &c
	return nil
}

func (m *memAppointments) Delete(_ context.Context, id uint64) error {
	delete(m.rows, id)
	return nil
}

// --- financial ---

type memFinancial struct {
	rows      map[uint64]*models.FinancialEntry
	next      uint64
	createErr error
}

func newMemFinancial(entries ...models.FinancialEntry) *memFinancial {
	m := &memFinancial{rows: map[uint64]*models.FinancialEntry{}, next: 900}
	for i := range entries {
		e := entries[i]
		if e.Version == 0 {
			e.Version = 1
		}
		m.rows[e.ID] = &e
	}
	return m
}

func (m *memFinancial) List(_ context.Context, scope policy.Scope, f repository.FinancialFilter) ([]models.FinancialEntry, error) {
	var out []models.FinancialEntry
	for _, e := range m.rows {
		if scope.Allows(e.ClinicID) && (f.Type == "" || e.Type == f.Type) && (f.Status == "" || e.Status == f.Status) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memFinancial) Get(_ context.Context, scope policy.Scope, id uint64) (*models.FinancialEntry, error) {
	if e, ok := m.rows[id]; ok && scope.Allows(e.ClinicID) {
		c := *e
		return &c, nil
	}
	return nil, apperror.NotFound("lançamento financeiro não encontrado")
}

func (m *memFinancial) GetByPaymentRef(_ context.Context, ref string) (*models.FinancialEntry, error) {
	for _, e := range m.rows {
		if e.PaymentRef == ref {
			c := *e
			return &c, nil
		}
	}
	return nil, apperror.NotFound("lançamento financeiro não encontrado")
}

func (m *memFinancial) Create(_ context.Context, e *models.FinancialEntry) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.next++
	e.ID = m.next
	e.Version = 1
	c := *e
	m.rows[e.ID] = &c
	return nil
}

func (m *memFinancial) Update(_ context.Context, e *models.FinancialEntry) error {
	cur, ok := m.rows[e.ID]
	if !ok {
		return apperror.NotFound("lançamento financeiro não encontrado")
	}
	if cur.Version != e.Version {
		return apperror.Conflict("versão desatualizada")
	}
	e.Version++
	c := *e
	m.rows[e.ID] = &c
	return nil
}

func (m *memFinancial) Delete(_ context.Context, id uint64) error {
	delete(m.rows, id)
	return nil
}

// --- records ---

type memRecords struct {
	rows map[uint64]*models.ClinicalRecord
	next uint64
}

func newMemRecords() *memRecords {
	return &memRecords{rows: map[uint64]*models.ClinicalRecord{}, next: 40}
}

func (m *memRecords) List(_ context.Context, scope policy.Scope, patientID uint64) ([]models.ClinicalRecord, error) {
	var out []models.ClinicalRecord
	for _, r := range m.rows {
		if scope.Allows(r.ClinicID) && (patientID == 0 || r.PatientID == patientID) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRecords) Get(_ context.Context, scope policy.Scope, id uint64) (*models.ClinicalRecord, error) {
	if r, ok := m.rows[id]; ok && scope.Allows(r.ClinicID) {
		c := *r
		return &c, nil
	}
	return nil, apperror.NotFound("prontuário não encontrado")
}

func (m *memRecords) Create(_ context.Context, r *models.ClinicalRecord) error {
	m.next++
	r.ID = m.next
	c := *r
	m.rows[r.ID] = &c
	return nil
}

func (m *memRecords) Save(_ context.Context, r *models.ClinicalRecord) error {
	c := *r
	m.rows[r.ID] = &c
	return nil
}

func (m *memRecords) Delete(_ context.Context, id uint64) error {
	delete(m.rows, id)
	return nil
}

// --- reminders ---

type memReminders struct {
	rows []models.Reminder
}

func (m *memReminders) List(_ context.Context, scope policy.Scope) ([]models.Reminder, error) {
	var out []models.Reminder
	for _, r := range m.rows {
		if scope.Allows(r.ClinicID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReminders) Create(_ context.Context, r *models.Reminder) error {
	r.ID = uint64(len(m.rows) + 1)
	m.rows = append(m.rows, *r)
	return nil
}

func (m *memReminders) ExistsForAppointment(_ context.Context, id uint64) (bool, error) {
	for _, r := range m.rows {
		if r.AppointmentID != nil && *r.AppointmentID == id {
			return true, nil
		}
	}
	return false, nil
}

// --- collaborators ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type recordingMailer struct {
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type memFiles struct {
	saved   map[string]string
	deleted []string
}

func (f *memFiles) Save(_ context.Context, folder, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	p := "/uploads/" + folder + "/" + filename
	f.saved[p] = string(data)
	return p, nil
}

func (f *memFiles) Delete(_ context.Context, p string) error {
	f.deleted = append(f.deleted, p)
	return nil
}

// --- actors ---

func u64(v uint64) *uint64 { return &v }

const (
	matrixID = uint64(1)
	branchID = uint64(2)
)

func ownerActor(selected *uint64) policy.Actor {
	return policy.Actor{UserID: 1, Role: models.RoleOwner, Selected: selected, MatrixID: u64(matrixID)}
}

func employeeActor(clinic *uint64, subRole string) policy.Actor {
	return policy.Actor{UserID: 2, Role: models.RoleEmployee, SubRole: subRole, ClinicID: clinic, MatrixID: u64(matrixID)}
}

// --- reports ---

type memReports struct {
	patients     []repository.CountRow
	appointments []repository.CountRow
	sums         []repository.SumRow
}

func (m *memReports) PatientCounts(_ context.Context, scope policy.Scope) ([]repository.CountRow, error) {
	return filterCounts(m.patients, scope), nil
}

func (m *memReports) AppointmentCounts(_ context.Context, scope policy.Scope) ([]repository.CountRow, error) {
	return filterCounts(m.appointments, scope), nil
}

func (m *memReports) FinancialSums(_ context.Context, scope policy.Scope) ([]repository.SumRow, error) {
	var out []repository.SumRow
	for _, r := range m.sums {
		if scope.Allows(r.ClinicID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func filterCounts(rows []repository.CountRow, scope policy.Scope) []repository.CountRow {
	var out []repository.CountRow
	for _, r := range rows {
		if scope.Allows(r.ClinicID) {
			out = append(out, r)
		}
	}
	return out
}

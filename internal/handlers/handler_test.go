package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"
	"clinic-backend/internal/scheduling"
	"clinic-backend/internal/services"
	"clinic-backend/pkg/apperror"
	"clinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patientStore struct {
	rows map[uint64]models.Patient
}

func (s *patientStore) List(_ context.Context, scope policy.Scope, _ string) ([]models.Patient, error) {
	var out []models.Patient
	for _, p := range s.rows {
		if scope.Allows(p.ClinicID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *patientStore) Get(_ context.Context, scope policy.Scope, id uint64) (*models.Patient, error) {
	p, ok := s.rows[id]
	if !ok || !scope.Allows(p.ClinicID) {
		return nil, apperror.NotFound("paciente não encontrado")
	}
	return &p, nil
}

func (s *patientStore) Create(_ context.Context, p *models.Patient) error {
	for _, r := range s.rows {
		if r.NationalID == p.NationalID {
			return apperror.Conflict("já existe um paciente com este CPF nesta clínica")
		}
	}
	p.ID = uint64(len(s.rows) + 100)
	s.rows[p.ID] = *p
	return nil
}

func (s *patientStore) Save(_ context.Context, p *models.Patient) error {
	s.rows[p.ID] = *p
	return nil
}

func (s *patientStore) Delete(_ context.Context, id uint64) error {
	delete(s.rows, id)
	return nil
}

func clinicID(v uint64) *uint64 { return &v }

// newTestRouter mounts the handlers with a fixed actor in place of the auth chain.
func newTestRouter(t *testing.T, actor policy.Actor) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &patientStore{rows: map[uint64]models.Patient{
		1: {ID: 1, Name: "Ana", NationalID: "111", ClinicID: clinicID(2)},
		2: {ID: 2, Name: "Bruno", NationalID: "222", ClinicID: clinicID(3)},
	}}
	engine := scheduling.NewEngine()
	h := &Handler{
		Patients:     services.NewPatientService(store),
		Appointments: services.NewAppointmentService(nil, store, nil, nil, engine, nil, zerolog.Nop()),
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("actor", actor)
		c.Next()
	})
	r.GET("/patients", h.ListPatients)
	r.GET("/patients/:id", h.GetPatient)
	r.POST("/patients", h.CreatePatient)
	r.PUT("/patients/:id", h.UpdatePatient)
	r.GET("/appointments/check-date", h.CheckDate)
	r.GET("/appointments", h.ListAppointments)
	r.GET("/schedule/:professionalId/month", h.MonthSchedule)
	r.POST("/payments/notification", h.PaymentNotification)
	return r
}

func receptionist(clinic uint64) policy.Actor {
	return policy.Actor{UserID: 5, Role: models.RoleEmployee, SubRole: models.SubRoleReceptionist, ClinicID: clinicID(clinic)}
}

func do(r http.Handler, method, target, body string) (*httptest.ResponseRecorder, utils.Response) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env utils.Response
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestListPatients_ScopedToClinic(t *testing.T) {
	r := newTestRouter(t, receptionist(2))

	rec, env := do(r, http.MethodGet, "/patients", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	list, ok := env.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana", list[0].(map[string]interface{})["name"])
}

func TestGetPatient_Errors(t *testing.T) {
	r := newTestRouter(t, receptionist(2))

	cases := []struct {
		name   string
		target string
		want   int
	}{
		{"found", "/patients/1", http.StatusOK},
		{"other clinic", "/patients/2", http.StatusNotFound},
		{"not a number", "/patients/abc", http.StatusBadRequest},
		{"zero", "/patients/0", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := do(r, http.MethodGet, tc.target, "")
			assert.Equal(t, tc.want, rec.Code)
			assert.Equal(t, tc.want == http.StatusOK, env.Success)
		})
	}
}

func TestCreatePatient_Binding(t *testing.T) {
	r := newTestRouter(t, receptionist(2))

	rec, env := do(r, http.MethodPost, "/patients", `{"name":"Carla","national_id":"333"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := env.Data.(map[string]interface{})
	assert.EqualValues(t, 2, created["clinic_id"])

	rec, env = do(r, http.MethodPost, "/patients", `{"name":"Eva","national_id":"444","clinic_id":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown fields are rejected")
	assert.Equal(t, "dados inválidos", env.Message)

	rec, _ = do(r, http.MethodPost, "/patients", `{"name":"Sem CPF"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(r, http.MethodPost, "/patients", `{"name":"Dup","national_id":"111"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)
}

func TestCreatePatient_OwnerWithoutSelection(t *testing.T) {
	r := newTestRouter(t, policy.Actor{UserID: 1, Role: models.RoleOwner, MatrixID: clinicID(2)})

	rec, _ := do(r, http.MethodPost, "/patients", `{"name":"Carla","national_id":"333"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePatient_ForeignClinicForbidden(t *testing.T) {
	r := newTestRouter(t, receptionist(2))

	rec, _ := do(r, http.MethodPut, "/patients/2", `{"name":"Bruno","national_id":"222"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCheckDate(t *testing.T) {
	r := newTestRouter(t, receptionist(2))

	rec, env := do(r, http.MethodGet, "/appointments/check-date?date=2026-10-25", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, false, data["valid"])
	assert.Equal(t, "a clínica não abre aos domingos", data["message"])
}

func TestQueryParameterValidation(t *testing.T) {
	r := newTestRouter(t, receptionist(2))

	rec, env := do(r, http.MethodGet, "/appointments?professional_id=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "parâmetro professional_id inválido", env.Message)

	rec, env = do(r, http.MethodGet, "/schedule/7/month?year=2026&month=", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "parâmetro month inválido", env.Message)
}

func TestPaymentNotification_RequiresOrderAndStatus(t *testing.T) {
	r := newTestRouter(t, policy.Actor{})

	rec, _ := do(r, http.MethodPost, "/payments/notification", `{"transaction_time":"2026-10-19 10:00:00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(r, http.MethodPost, "/payments/notification", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package handlers

import (
	"net/http"
	"time"

	"clinic-backend/internal/middleware"
	"clinic-backend/internal/models"
	"clinic-backend/internal/repository"
	"clinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ListAppointments filters by professional_id, patient_id, date, from, to and
// status, all optional.
func (h *Handler) ListAppointments(c *gin.Context) {
	professionalID, ok := queryID(c, "professional_id")
	if !ok {
		return
	}
	patientID, ok := queryID(c, "patient_id")
	if !ok {
		return
	}
	list, err := h.Appointments.List(c.Request.Context(), middleware.Actor(c), repository.AppointmentFilter{
		ProfessionalID: professionalID,
		PatientID:      patientID,
		Date:           c.Query("date"),
		From:           c.Query("from"),
		To:             c.Query("to"),
		Status:         c.Query("status"),
	})
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "agendamentos", list)
}

func (h *Handler) TodayAppointments(c *gin.Context) {
	list, err := h.Appointments.Today(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "agendamentos de hoje", list)
}

func (h *Handler) UpcomingAppointments(c *gin.Context) {
	list, err := h.Appointments.Upcoming(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "próximos agendamentos", list)
}

// CheckDate always answers 200; the verdict is in data.valid.
func (h *Handler) CheckDate(c *gin.Context) {
	utils.APIResponse(c, http.StatusOK, true, "verificação de data", h.Appointments.CheckDate(c.Query("date")))
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var input models.AppointmentInput
	if !bindJSON(c, &input) {
		return
	}
	a, err := h.Appointments.Create(c.Request.Context(), middleware.Actor(c), input)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "agendamento criado", a)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input models.AppointmentInput
	if !bindJSON(c, &input) {
		return
	}
	a, err := h.Appointments.Update(c.Request.Context(), middleware.Actor(c), id, input)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "agendamento atualizado", a)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Appointments.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "agendamento removido", nil)
}

// MonthSchedule answers GET /schedule/:professionalId/month?year=&month=.
func (h *Handler) MonthSchedule(c *gin.Context) {
	professionalID, ok := pathID(c, "professionalId")
	if !ok {
		return
	}
	year, ok := queryInt(c, "year")
	if !ok {
		return
	}
	month, ok := queryInt(c, "month")
	if !ok {
		return
	}
	days, err := h.Appointments.Month(c.Request.Context(), middleware.Actor(c), professionalID, year, time.Month(month))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "disponibilidade do mês", days)
}

// DaySchedule answers GET /schedule/:professionalId/day?date=.
func (h *Handler) DaySchedule(c *gin.Context) {
	professionalID, ok := pathID(c, "professionalId")
	if !ok {
		return
	}
	slots, err := h.Appointments.Day(c.Request.Context(), middleware.Actor(c), professionalID, c.Query("date"))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "horários do dia", slots)
}

package handlers

import (
	"net/http"

	"clinic-backend/internal/middleware"
	"clinic-backend/internal/models"
	"clinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ListPatients accepts ?q= to search by name or national id.
func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.Patients.List(c.Request.Context(), middleware.Actor(c), c.Query("q"))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "pacientes", patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	patient, err := h.Patients.Get(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "paciente", patient)
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var input models.PatientInput
	if !bindJSON(c, &input) {
		return
	}
	patient, err := h.Patients.Create(c.Request.Context(), middleware.Actor(c), input)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "paciente cadastrado", patient)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input models.PatientInput
	if !bindJSON(c, &input) {
		return
	}
	patient, err := h.Patients.Update(c.Request.Context(), middleware.Actor(c), id, input)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "paciente atualizado", patient)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Patients.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "paciente removido", nil)
}

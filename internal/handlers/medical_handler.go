package handlers

import (
	"net/http"

	"clinic-backend/internal/middleware"
	"clinic-backend/internal/models"
	"clinic-backend/internal/repository"
	"clinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ListProcedures accepts ?patient_id= and ?category=.
func (h *Handler) ListProcedures(c *gin.Context) {
	patientID, ok := queryID(c, "patient_id")
	if !ok {
		return
	}
	list, err := h.Procedures.List(c.Request.Context(), middleware.Actor(c), repository.ProcedureFilter{
		PatientID: patientID,
		Category:  c.Query("category"),
	})
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "procedimentos", list)
}

func (h *Handler) CreateProcedure(c *gin.Context) {
	var input models.ProcedureInput
	if !bindJSON(c, &input) {
		return
	}
	p, err := h.Procedures.Create(c.Request.Context(), middleware.Actor(c), input)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "procedimento cadastrado", p)
}

func (h *Handler) UpdateProcedure(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input models.ProcedureInput
	if !bindJSON(c, &input) {
		return
	}
	p, err := h.Procedures.Update(c.Request.Context(), middleware.Actor(c), id, input)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "procedimento atualizado", p)
}

func (h *Handler) DeleteProcedure(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Procedures.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "procedimento removido", nil)
}

// ListRecords accepts ?patient_id=.
func (h *Handler) ListRecords(c *gin.Context) {
	patientID, ok := queryID(c, "patient_id")
	if !ok {
		return
	}
	list, err := h.Records.List(c.Request.Context(), middleware.Actor(c), patientID)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "prontuários", list)
}

func (h *Handler) GetRecord(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rec, err := h.Records.Get(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "prontuário", rec)
}

func (h *Handler) CreateRecord(c *gin.Context) {
	var input models.ClinicalRecordInput
	if !bindJSON(c, &input) {
		return
	}
	rec, err := h.Records.Create(c.Request.Context(), middleware.Actor(c), input)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "prontuário registrado", rec)
}

func (h *Handler) UpdateRecord(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input models.ClinicalRecordInput
	if !bindJSON(c, &input) {
		return
	}
	rec, err := h.Records.Update(c.Request.Context(), middleware.Actor(c), id, input)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "prontuário atualizado", rec)
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Records.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "prontuário removido", nil)
}

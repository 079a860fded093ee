package handlers

import (
	"encoding/json"
	"net/http"

	"clinic-backend/internal/middleware"
	"clinic-backend/internal/models"
	"clinic-backend/internal/payments"
	"clinic-backend/internal/repository"
	"clinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// ListFinancial accepts ?type=, ?status= and ?patient_id=.
func (h *Handler) ListFinancial(c *gin.Context) {
	patientID, ok := queryID(c, "patient_id")
	if !ok {
		return
	}
	list, err := h.Financial.List(c.Request.Context(), middleware.Actor(c), repository.FinancialFilter{
		Type:      c.Query("type"),
		Status:    c.Query("status"),
		PatientID: patientID,
	})
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "lançamentos", list)
}

func (h *Handler) CreateFinancial(c *gin.Context) {
	var input models.FinancialInput
	if !bindJSON(c, &input) {
		return
	}
	e, err := h.Financial.Create(c.Request.Context(), middleware.Actor(c), input)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "lançamento criado", e)
}

func (h *Handler) UpdateFinancial(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input models.FinancialInput
	if !bindJSON(c, &input) {
		return
	}
	e, err := h.Financial.Update(c.Request.Context(), middleware.Actor(c), id, input)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "lançamento atualizado", e)
}

func (h *Handler) DeleteFinancial(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Financial.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "lançamento removido", nil)
}

func (h *Handler) CreatePaymentLink(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	link, err := h.Financial.PaymentLink(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "link de pagamento gerado", link)
}

// PaymentNotification is the Midtrans webhook. The payload carries many fields
// we ignore, so it is decoded without the strict binder.
func (h *Handler) PaymentNotification(c *gin.Context) {
	var n payments.Notification
	if err := json.NewDecoder(c.Request.Body).Decode(&n); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "dados inválidos", err.Error())
		return
	}
	if err := binding.Validator.ValidateStruct(&n); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "dados inválidos", err.Error())
		return
	}
	if err := h.Financial.HandleNotification(c.Request.Context(), n); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "notificação processada", nil)
}

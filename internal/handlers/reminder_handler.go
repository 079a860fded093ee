package handlers

import (
	"net/http"

	"clinic-backend/internal/middleware"
	"clinic-backend/internal/models"
	"clinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListReminders(c *gin.Context) {
	list, err := h.Reminders.List(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "lembretes", list)
}

func (h *Handler) CreateReminder(c *gin.Context) {
	var input models.ReminderInput
	if !bindJSON(c, &input) {
		return
	}
	r, err := h.Reminders.Create(c.Request.Context(), middleware.Actor(c), input)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "lembrete enviado", r)
}

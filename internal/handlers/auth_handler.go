package handlers

import (
	"net/http"

	"clinic-backend/internal/models"
	"clinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Login(c *gin.Context) {
	var input models.LoginInput
	if !bindJSON(c, &input) {
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), input)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "login realizado", res)
}

// Bootstrap creates the first owner. It only works while no user exists.
func (h *Handler) Bootstrap(c *gin.Context) {
	var input models.BootstrapInput
	if !bindJSON(c, &input) {
		return
	}
	res, err := h.Auth.Bootstrap(c.Request.Context(), input)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "proprietário criado", res)
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var input models.ForgotPasswordInput
	if !bindJSON(c, &input) {
		return
	}
	if err := h.Auth.ForgotPassword(c.Request.Context(), input); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "se o usuário existir, um e-mail foi enviado", nil)
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var input models.ResetPasswordInput
	if !bindJSON(c, &input) {
		return
	}
	if err := h.Auth.ResetPassword(c.Request.Context(), input); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "senha redefinida", nil)
}

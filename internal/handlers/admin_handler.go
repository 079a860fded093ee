package handlers

import (
	"net/http"

	"clinic-backend/internal/middleware"
	"clinic-backend/internal/models"
	"clinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Clinic and user management. The services enforce the owner-only rule; the
// router adds RequirePermission in front of the mutating routes too.

func (h *Handler) ListClinics(c *gin.Context) {
	clinics, err := h.Clinics.List(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "clínicas", clinics)
}

func (h *Handler) CreateClinic(c *gin.Context) {
	var input models.ClinicInput
	if !bindJSON(c, &input) {
		return
	}
	clinic, err := h.Clinics.Create(c.Request.Context(), middleware.Actor(c), input)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "clínica criada", clinic)
}

func (h *Handler) UpdateClinic(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input models.ClinicInput
	if !bindJSON(c, &input) {
		return
	}
	clinic, err := h.Clinics.Update(c.Request.Context(), middleware.Actor(c), id, input)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "clínica atualizada", clinic)
}

func (h *Handler) DeleteClinic(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Clinics.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "clínica removida", nil)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "usuários", users)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var input models.CreateUserInput
	if !bindJSON(c, &input) {
		return
	}
	user, err := h.Users.Create(c.Request.Context(), middleware.Actor(c), input)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "usuário criado", user)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input models.UpdateUserInput
	if !bindJSON(c, &input) {
		return
	}
	user, err := h.Users.Update(c.Request.Context(), middleware.Actor(c), id, input)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "usuário atualizado", user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Users.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "usuário removido", nil)
}

package handlers

import (
	"net/http"

	"clinic-backend/internal/middleware"
	"clinic-backend/internal/models"
	"clinic-backend/pkg/apperror"
	"clinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const maxPhotoBytes = 5 << 20

func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.Auth.Profile(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "perfil", user)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var input models.UpdateProfileInput
	if !bindJSON(c, &input) {
		return
	}
	user, err := h.Auth.UpdateProfile(c.Request.Context(), middleware.Actor(c), input)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "perfil atualizado", user)
}

// UploadPhoto expects multipart field "photo".
func (h *Handler) UploadPhoto(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBytes)
	fh, err := c.FormFile("photo")
	if err != nil {
		utils.ErrorResponse(c, apperror.Validation("arquivo \"photo\" ausente ou maior que 5 MB"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		utils.ErrorResponse(c, apperror.Internal("falha ao ler arquivo", err))
		return
	}
	defer f.Close()

	user, err := h.Auth.UploadPhoto(c.Request.Context(), middleware.Actor(c), fh.Filename, f)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "foto atualizada", user)
}

// ListProfessionals accepts ?sub_role=doctor to narrow the list.
func (h *Handler) ListProfessionals(c *gin.Context) {
	users, err := h.Users.Professionals(c.Request.Context(), middleware.Actor(c), c.Query("sub_role"))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "profissionais", users)
}

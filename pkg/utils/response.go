package utils

import (
	"net/http"

	"clinic-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func APIResponse(c *gin.Context, code int, success bool, message string, data interface{}) {
	c.JSON(code, Response{
		Success: success,
		Message: message,
		Data:    data,
	})
}

// StatusOf maps an error kind onto an HTTP status code.
func StatusOf(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse writes err through the standard envelope and records it on the
// gin context so the access log can pick it up.
func ErrorResponse(c *gin.Context, err error) {
	_ = c.Error(err)
	APIResponse(c, StatusOf(err), false, apperror.MessageOf(err), nil)
}

// Package handlers adapts HTTP requests onto the services. Every response uses
// the utils.APIResponse envelope.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"clinic-backend/internal/services"
	"clinic-backend/pkg/apperror"
	"clinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func init() {
	// Clients must not smuggle fields such as clinic_id into a body.
	binding.EnableDecoderDisallowUnknownFields = true
}

type Handler struct {
	Auth         *services.AuthService
	Clinics      *services.ClinicService
	Users        *services.UserService
	Patients     *services.PatientService
	Procedures   *services.ProcedureService
	Appointments *services.AppointmentService
	Financial    *services.FinancialService
	Records      *services.RecordService
	Reminders    *services.ReminderService
	Reports      *services.ReportService
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "dados inválidos", err.Error())
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := utils.ParseID(c.Param(name))
	if err != nil {
		utils.ErrorResponse(c, err)
		return 0, false
	}
	return id, true
}

// queryID reads an optional numeric filter. Absent means 0.
func queryID(c *gin.Context, name string) (uint64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	id, err := utils.ParseID(raw)
	if err != nil {
		utils.ErrorResponse(c, apperror.Validation("parâmetro "+name+" inválido"))
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil {
		utils.ErrorResponse(c, apperror.Validation("parâmetro "+name+" inválido"))
		return 0, false
	}
	return n, true
}

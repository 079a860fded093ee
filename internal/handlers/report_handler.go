package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"clinic-backend/internal/middleware"
	"clinic-backend/internal/repository"
	"clinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) ReportSummary(c *gin.Context) {
	report, err := h.Reports.Summary(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "resumo", report)
}

// ExportFinancial streams the ledger as an xlsx attachment. The workbook is
// built in memory first so failures still answer with the JSON envelope.
func (h *Handler) ExportFinancial(c *gin.Context) {
	patientID, ok := queryID(c, "patient_id")
	if !ok {
		return
	}
	var buf bytes.Buffer
	err := h.Reports.ExportFinancial(c.Request.Context(), middleware.Actor(c), repository.FinancialFilter{
		Type:      c.Query("type"),
		Status:    c.Query("status"),
		PatientID: patientID,
	}, &buf)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	name := fmt.Sprintf("financeiro-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handler) LedgerDrift(c *gin.Context) {
	list, err := h.Reports.LedgerDrift(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "procedimentos sem lançamento financeiro", list)
}

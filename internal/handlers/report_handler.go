package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rentara/rentara-api/internal/middleware"
	"github.com/rentara/rentara-api/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// @Summary Rent Statement PDF
// @Description Download the rent statement for a lease
// @Tags Reports
// @Produce application/pdf
// @Param lease_id path int true "Lease ID"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /leases/{lease_id}/statement [get]
func (h *ReportHandler) RentStatement(c *gin.Context) {
	leaseID, _ := strconv.ParseUint(c.Param("lease_id"), 10, 32)
	data, filename, err := h.reportService.RentStatementPDF(c.Request.Context(), middleware.GetCaller(c), uint(leaseID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}

// @Summary Schedule XLSX
// @Description Download a lease's installment schedule as a spreadsheet
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param lease_id path int true "Lease ID"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /leases/{lease_id}/schedule.xlsx [get]
func (h *ReportHandler) ScheduleXLSX(c *gin.Context) {
	leaseID, _ := strconv.ParseUint(c.Param("lease_id"), 10, 32)
	data, filename, err := h.reportService.ScheduleXLSX(c.Request.Context(), middleware.GetCaller(c), uint(leaseID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// @Summary Arrears CSV
// @Description Download the arrears report (staff only)
// @Tags Reports
// @Produce text/csv
// @Param min_unpaid query int false "Minimum unpaid installments" default(3)
// @Success 200 {file} file
// @Security BearerAuth
// @Router /reports/arrears.csv [get]
func (h *ReportHandler) ArrearsCSV(c *gin.Context) {
	minUnpaid, _ := strconv.Atoi(c.DefaultQuery("min_unpaid", "3"))
	data, filename, err := h.reportService.ArrearsCSV(c.Request.Context(), middleware.GetCaller(c), minUnpaid)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_backend/internal/core/ports/services"
	"github.com/SscSPs/ledger_backend/internal/dto"
	"github.com/SscSPs/ledger_backend/internal/middleware"
	"github.com/SscSPs/ledger_backend/internal/utils/export"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// RegisterReportingRoutes registers report routes on a workplace-scoped group.
func RegisterReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/trial-balance.csv", h.getTrialBalanceCSV)
	}
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Generates a trial balance report grouped by account category
// @Tags reports
// @Produce json
// @Param workplace_id path string true "Workplace ID"
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Param periodStart query string false "Period start (YYYY-MM-DD)" default(January 1 of asOf's year)
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden (User not authorized)"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	report, ok := h.trialBalance(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(report))
}

// getTrialBalanceCSV godoc
// @Summary Export trial balance as CSV
// @Tags reports
// @Produce text/csv
// @Param workplace_id path string true "Workplace ID"
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Param periodStart query string false "Period start (YYYY-MM-DD)"
// @Success 200 {string} string "CSV document"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/reports/trial-balance.csv [get]
func (h *reportingHandler) getTrialBalanceCSV(c *gin.Context) {
	report, ok := h.trialBalance(c)
	if !ok {
		return
	}
	filename := fmt.Sprintf("trial-balance-%s.csv", report.AsOf.Format(domain.DateLayout))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)
	if err := export.WriteTrialBalanceCSV(c.Writer, report); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to write trial balance CSV", slog.String("error", err.Error()))
	}
}

// trialBalance parses the report parameters and runs the report, responding on failure.
func (h *reportingHandler) trialBalance(c *gin.Context) (*domain.TrialBalanceReport, bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID, userID, ok := requestScope(c)
	if !ok {
		return nil, false
	}

	asOfStr := c.DefaultQuery("asOf", time.Now().UTC().Format(domain.DateLayout))
	asOf, err := time.Parse(domain.DateLayout, asOfStr)
	if err != nil {
		logger.Warn("Invalid asOf date format", slog.String("asOf", asOfStr), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return nil, false
	}

	var periodStart *time.Time
	if s := c.Query("periodStart"); s != "" {
		start, err := time.Parse(domain.DateLayout, s)
		if err != nil {
			logger.Warn("Invalid periodStart date format", slog.String("periodStart", s), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid periodStart format. Use YYYY-MM-DD"})
			return nil, false
		}
		periodStart = &start
	}

	report, err := h.reportingService.TrialBalance(c.Request.Context(), workplaceID, periodStart, asOf, userID)
	if err != nil {
		respondError(c, err, "Failed to generate trial balance report")
		return nil, false
	}
	return report, true
}

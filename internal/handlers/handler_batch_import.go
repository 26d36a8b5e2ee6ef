package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	portssvc "github.com/SscSPs/ledger_backend/internal/core/ports/services"
	"github.com/SscSPs/ledger_backend/internal/dto"
	"github.com/SscSPs/ledger_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// batchImportHandler handles bulk journal entry imports.
type batchImportHandler struct {
	batchService portssvc.BatchImportSvc
}

func newBatchImportHandler(bs portssvc.BatchImportSvc) *batchImportHandler {
	return &batchImportHandler{batchService: bs}
}

// importBatch godoc
// @Summary Validate or import a batch of journal entry rows
// @Description Groups rows by reference and validates each group. A group with any bad row is rejected whole.
// @Description With persist=true every valid group is created as a DRAFT entry.
// @Tags journal-entries
// @Accept json
// @Produce json
// @Param workplace_id path string true "Workplace ID"
// @Param persist query bool false "Create drafts for valid groups" default(false)
// @Param batch body dto.BatchImportRequest true "Rows"
// @Success 200 {object} dto.BatchImportResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/journal-entries/batch-import [post]
func (h *batchImportHandler) importBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID, userID, ok := requestScope(c)
	if !ok {
		return
	}

	persist, err := strconv.ParseBool(c.DefaultQuery("persist", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "persist must be a boolean"})
		return
	}

	var req dto.BatchImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for importBatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	run := h.batchService.ValidateBatch
	if persist {
		run = h.batchService.ImportBatch
	}
	result, err := run(c.Request.Context(), workplaceID, req.Rows, userID)
	if err != nil {
		respondError(c, err, "Failed to import batch")
		return
	}

	logger.Info("Batch processed",
		slog.Bool("persist", persist),
		slog.Int("rows", len(req.Rows)),
		slog.Int("valid_entries", len(result.ValidatedEntries)),
		slog.Int("row_errors", len(result.Errors)))
	c.JSON(http.StatusOK, dto.ToBatchImportResponse(result))
}

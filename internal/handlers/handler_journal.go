package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_backend/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_backend/internal/core/ports/services"
	"github.com/SscSPs/ledger_backend/internal/dto"
	"github.com/SscSPs/ledger_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journal entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: js}
}

// RegisterJournalRoutes registers journal entry routes on a workplace-scoped group.
func RegisterJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade, batchService portssvc.BatchImportSvc) {
	h := newJournalHandler(journalService)
	b := newBatchImportHandler(batchService)

	entries := rg.Group("/journal-entries")
	{
		entries.POST("", h.createDraft)
		entries.GET("", h.listEntries)
		entries.POST("/batch-import", b.importBatch)
		entries.GET("/:entry_id", h.getEntry)
		entries.PUT("/:entry_id", h.updateDraft)
		entries.GET("/:entry_id/postings", h.listPostings)
		entries.POST("/:entry_id/submit", h.submit)
		entries.POST("/:entry_id/approve", h.approve)
		entries.POST("/:entry_id/reject", h.reject)
		entries.POST("/:entry_id/post", h.post)
		entries.POST("/:entry_id/void", h.void)
		entries.POST("/:entry_id/duplicate", h.duplicate)
	}
}

// createDraft godoc
// @Summary Create a draft journal entry
// @Description Creates a new DRAFT entry. Lines may reference accounts by id or code; drafts may be unbalanced.
// @Tags journal-entries
// @Accept json
// @Produce json
// @Param workplace_id path string true "Workplace ID"
// @Param entry body dto.JournalEntryRequest true "Journal entry"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to create journal entry"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/journal-entries [post]
func (h *journalHandler) createDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID, userID, ok := requestScope(c)
	if !ok {
		return
	}

	var req dto.JournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createDraft", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	entry, err := h.journalService.CreateDraft(c.Request.Context(), workplaceID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to create journal entry")
		return
	}

	logger.Info("Journal entry draft created", slog.String("entry_id", entry.EntryID))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// updateDraft godoc
// @Summary Edit a draft journal entry
// @Description Replaces the header and lines of a DRAFT entry
// @Tags journal-entries
// @Accept json
// @Produce json
// @Param workplace_id path string true "Workplace ID"
// @Param entry_id path string true "Entry ID"
// @Param entry body dto.JournalEntryRequest true "Journal entry"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 404 {object} map[string]string "Journal entry not found"
// @Failure 409 {object} map[string]string "Entry is no longer a draft or was modified concurrently"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/journal-entries/{entry_id} [put]
func (h *journalHandler) updateDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID, userID, ok := requestScope(c)
	if !ok {
		return
	}
	entryID := c.Param("entry_id")

	var req dto.JournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for updateDraft", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	entry, err := h.journalService.UpdateDraft(c.Request.Context(), workplaceID, entryID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to update journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// getEntry godoc
// @Summary Get a journal entry
// @Tags journal-entries
// @Produce json
// @Param workplace_id path string true "Workplace ID"
// @Param entry_id path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Journal entry not found"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/journal-entries/{entry_id} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	workplaceID, userID, ok := requestScope(c)
	if !ok {
		return
	}
	entry, err := h.journalService.GetEntry(c.Request.Context(), workplaceID, c.Param("entry_id"), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Lists entries newest first with cursor pagination
// @Tags journal-entries
// @Produce json
// @Param workplace_id path string true "Workplace ID"
// @Param status query string false "Filter by status" Enums(DRAFT, PENDING_APPROVAL, APPROVED, POSTED, VOIDED, REJECTED)
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Token from a previous page"
// @Success 200 {object} dto.ListJournalEntriesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/journal-entries [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID, userID, ok := requestScope(c)
	if !ok {
		return
	}

	var params dto.ListJournalEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for listEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.journalService.ListEntries(c.Request.Context(), workplaceID, userID, params)
	if err != nil {
		respondError(c, err, "Failed to list journal entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listPostings godoc
// @Summary List the ledger postings of an entry
// @Tags journal-entries
// @Produce json
// @Param workplace_id path string true "Workplace ID"
// @Param entry_id path string true "Entry ID"
// @Success 200 {array} dto.LedgerPostingResponse
// @Failure 404 {object} map[string]string "Journal entry not found"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/journal-entries/{entry_id}/postings [get]
func (h *journalHandler) listPostings(c *gin.Context) {
	workplaceID, userID, ok := requestScope(c)
	if !ok {
		return
	}
	postings, err := h.journalService.ListPostings(c.Request.Context(), workplaceID, c.Param("entry_id"), userID)
	if err != nil {
		respondError(c, err, "Failed to list postings")
		return
	}
	c.JSON(http.StatusOK, dto.ToLedgerPostingResponses(postings))
}

// submit godoc
// @Summary Submit a draft for approval
// @Tags journal-entries
// @Produce json
// @Param workplace_id path string true "Workplace ID"
// @Param entry_id path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 409 {object} map[string]interface{} "Invalid transition or concurrent modification"
// @Failure 422 {object} map[string]interface{} "Entry failed validation"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/journal-entries/{entry_id}/submit [post]
func (h *journalHandler) submit(c *gin.Context) {
	h.runAction(c, domain.ActionSubmit)
}

// approve godoc
// @Summary Approve a pending entry
// @Tags journal-entries
// @Produce json
// @Param workplace_id path string true "Workplace ID"
// @Param entry_id path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]interface{} "Invalid transition or concurrent modification"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/journal-entries/{entry_id}/approve [post]
func (h *journalHandler) approve(c *gin.Context) {
	h.runAction(c, domain.ActionApprove)
}

// reject godoc
// @Summary Reject a pending entry
// @Tags journal-entries
// @Accept json
// @Produce json
// @Param workplace_id path string true "Workplace ID"
// @Param entry_id path string true "Entry ID"
// @Param body body dto.ReasonRequest true "Rejection reason"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Reason missing"
// @Failure 409 {object} map[string]interface{} "Invalid transition or concurrent modification"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/journal-entries/{entry_id}/reject [post]
func (h *journalHandler) reject(c *gin.Context) {
	h.runAction(c, domain.ActionReject)
}

// post godoc
// @Summary Post an approved entry to the ledger
// @Tags journal-entries
// @Produce json
// @Param workplace_id path string true "Workplace ID"
// @Param entry_id path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 409 {object} map[string]interface{} "Invalid transition or concurrent modification"
// @Failure 503 {object} map[string]interface{} "Posting failed; safe to retry"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/journal-entries/{entry_id}/post [post]
func (h *journalHandler) post(c *gin.Context) {
	h.runAction(c, domain.ActionPost)
}

// void godoc
// @Summary Void a posted entry
// @Description Appends reversing postings; the original postings are kept.
// @Tags journal-entries
// @Accept json
// @Produce json
// @Param workplace_id path string true "Workplace ID"
// @Param entry_id path string true "Entry ID"
// @Param body body dto.ReasonRequest true "Void reason"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Reason missing"
// @Failure 409 {object} map[string]interface{} "Invalid transition or concurrent modification"
// @Failure 503 {object} map[string]interface{} "Void failed; safe to retry"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/journal-entries/{entry_id}/void [post]
func (h *journalHandler) void(c *gin.Context) {
	h.runAction(c, domain.ActionVoid)
}

// duplicate godoc
// @Summary Copy an entry into a new draft
// @Tags journal-entries
// @Produce json
// @Param workplace_id path string true "Workplace ID"
// @Param entry_id path string true "Entry ID"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Journal entry not found"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/journal-entries/{entry_id}/duplicate [post]
func (h *journalHandler) duplicate(c *gin.Context) {
	h.runAction(c, domain.ActionDuplicate)
}

// runAction performs a lifecycle action on the entry named in the path.
func (h *journalHandler) runAction(c *gin.Context, action domain.EntryAction) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID, userID, ok := requestScope(c)
	if !ok {
		return
	}
	entryID := c.Param("entry_id")
	logger = logger.With(slog.String("entry_id", entryID), slog.String("action", string(action)))

	var reason string
	if action.RequiresReason() {
		var req dto.ReasonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Reason missing or invalid", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "A reason is required to " + string(action) + " an entry"})
			return
		}
		reason = req.Reason
	}

	ctx := c.Request.Context()
	var (
		entry *domain.JournalEntry
		err   error
	)
	switch action {
	case domain.ActionSubmit:
		entry, err = h.journalService.Submit(ctx, workplaceID, entryID, userID)
	case domain.ActionApprove:
		entry, err = h.journalService.Approve(ctx, workplaceID, entryID, userID)
	case domain.ActionReject:
		entry, err = h.journalService.Reject(ctx, workplaceID, entryID, reason, userID)
	case domain.ActionPost:
		entry, err = h.journalService.Post(ctx, workplaceID, entryID, userID)
	case domain.ActionVoid:
		entry, err = h.journalService.Void(ctx, workplaceID, entryID, reason, userID)
	case domain.ActionDuplicate:
		entry, err = h.journalService.Duplicate(ctx, workplaceID, entryID, userID)
	default:
		logger.Error("Unsupported lifecycle action")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported action"})
		return
	}
	if err != nil {
		respondError(c, err, "Failed to "+string(action)+" journal entry")
		return
	}

	status := http.StatusOK
	if action == domain.ActionDuplicate {
		status = http.StatusCreated
	}
	logger.Info("Journal entry action completed", slog.String("status", entry.Status.String()))
	c.JSON(status, dto.ToJournalEntryResponse(entry))
}

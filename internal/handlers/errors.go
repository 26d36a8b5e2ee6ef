package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_backend/internal/apperrors"
	"github.com/SscSPs/ledger_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Error codes returned in the "code" field of error bodies.
const (
	codeValidation             = "validation_error"
	codeInvalidTransition      = "invalid_transition"
	codeConcurrentModification = "concurrent_modification"
	codePostingFailed          = "posting_failed"
)

// respondError maps a service error onto an HTTP status and JSON body.
// fallback is the message sent for unexpected errors, whose details are only logged.
func respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var validationErr *apperrors.ValidationError
	var transitionErr *apperrors.TransitionError
	var concurrentErr *apperrors.ConcurrentModificationError
	var postingErr *apperrors.PostingError

	switch {
	case errors.As(err, &validationErr):
		logger.Warn("Journal entry failed validation", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      "journal entry is invalid",
			"code":       codeValidation,
			"violations": validationErr.Violations,
		})
	case errors.As(err, &transitionErr) && transitionErr.Kind == apperrors.InvalidTransition:
		logger.Warn("Invalid lifecycle transition", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{
			"error":  err.Error(),
			"code":   codeInvalidTransition,
			"from":   transitionErr.From,
			"action": transitionErr.Action,
		})
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Authorization denied", slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.As(err, &concurrentErr):
		logger.Warn("Concurrent modification", slog.String("entry_id", concurrentErr.EntryID))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": codeConcurrentModification})
	case errors.As(err, &postingErr):
		logger.Error("Posting failed", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Posting failed, the entry is unchanged", "code": codePostingFailed, "retryable": true})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Invalid input", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Conflict", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvariantViolation):
		logger.Error("Ledger invariant violated", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ledger invariant violated"})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// requestScope extracts the workplace id and authenticated user, responding on failure.
func requestScope(c *gin.Context) (workplaceID, userID string, ok bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID = c.Param("workplace_id")
	if workplaceID == "" {
		logger.Error("Workplace ID missing from path")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Workplace ID required in path"})
		return "", "", false
	}
	userID, ok = middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", "", false
	}
	return workplaceID, userID, true
}

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/finbooks/finbooks_core/internal/apperrors"
	"github.com/finbooks/finbooks_core/internal/core/domain"
	portssvc "github.com/finbooks/finbooks_core/internal/core/ports/services"
	"github.com/finbooks/finbooks_core/internal/dto"
	"github.com/finbooks/finbooks_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journal entries and the
// period balance cache.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{
		journalService: js,
	}
}

// registerJournalRoutes registers workplace-scoped journal routes.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	entries := rg.Group("/journal-entries")
	{
		entries.POST("", h.postEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:entry_id", h.getEntry)
		entries.POST("/:entry_id/reverse", h.reverseEntry)
	}

	// Account-scoped reads backed by the journal: the statement of lines and
	// the monthly balance cache.
	accounts := rg.Group("/accounts/:account_id")
	{
		accounts.GET("/lines", h.listLinesByAccount)
		accounts.GET("/balances/:year/:month", h.getCachedBalance)
		accounts.POST("/balances/:year/:month/recompute", h.recomputeBalance)
	}
}

// postEntry godoc
// @Summary Post a journal entry
// @Description Validates and posts a balanced journal entry, updating touched account balances atomically
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   entry body dto.PostJournalEntryRequest true "Entry details"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Invalid input, unbalanced lines, or closed period"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to post entry"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/journal-entries [post]
func (h *journalHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")

	var req dto.PostJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("creator_user_id", creatorUserID))
	logger.Info("Received request to post journal entry", slog.Int("line_count", len(req.Lines)))

	entry, err := h.journalService.PostEntry(c.Request.Context(), workplaceID, req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error posting entry", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found posting entry", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Conflict posting entry", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to post journal entry in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post entry"})
		}
		return
	}

	logger.Info("Journal entry posted successfully", slog.String("entry_id", entry.EntryID))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// getEntry godoc
// @Summary Get a journal entry by ID
// @Description Retrieves a journal entry with its lines
// @Tags journals
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   entry_id path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 500 {object} map[string]string "Failed to retrieve entry"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/journal-entries/{entry_id} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")
	entryID := c.Param("entry_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("Logged-in user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("entry_id", entryID))

	entry, err := h.journalService.GetEntryByID(c.Request.Context(), workplaceID, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Journal entry not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
		} else {
			logger.Error("Failed to get journal entry from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve entry"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Retrieves a paginated list of journal entries, newest first
// @Tags journals
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token from a previous page"
// @Param   includeReversals query bool false "Include reversal pairs" default(true)
// @Success 200 {object} dto.ListJournalEntriesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list entries"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/journal-entries [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("Logged-in user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListJournalEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.journalService.ListEntries(c.Request.Context(), workplaceID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid pagination token", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list journal entries from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list entries"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// reverseEntry godoc
// @Summary Reverse a journal entry
// @Description Posts an offsetting entry and links the pair; an entry can only be reversed once
// @Tags journals
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   entry_id path string true "Entry ID to reverse"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry already reversed"
// @Failure 500 {object} map[string]string "Failed to reverse entry"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/journal-entries/{entry_id}/reverse [post]
func (h *journalHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")
	entryID := c.Param("entry_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("entry_id", entryID), slog.String("user_id", userID))
	logger.Info("Received request to reverse journal entry")

	reversal, err := h.journalService.ReverseEntry(c.Request.Context(), workplaceID, entryID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Journal entry not found for reversal")
			c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Journal entry cannot be reversed", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error reversing entry", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to reverse journal entry in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reverse entry"})
		}
		return
	}

	logger.Info("Journal entry reversed successfully", slog.String("reversing_entry_id", reversal.EntryID))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(reversal))
}

// listLinesByAccount godoc
// @Summary List journal lines for an account
// @Description Retrieves posted lines touching an account, newest first, with running balances
// @Tags journals
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   account_id path string true "Account ID"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} map[string]interface{} "Lines and next token"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to list lines"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/accounts/{account_id}/lines [get]
func (h *journalHandler) listLinesByAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")
	accountID := c.Param("account_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("Logged-in user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}
	var nextToken *string
	if raw := c.Query("nextToken"); raw != "" {
		nextToken = &raw
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("target_account_id", accountID))

	lines, newToken, err := h.journalService.ListLinesByAccount(c.Request.Context(), workplaceID, accountID, limit, nextToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Account not found for line listing")
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid pagination token", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list account lines from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list lines"})
		}
		return
	}

	resp := make([]dto.JournalLineResponse, len(lines))
	for i := range lines {
		resp[i] = dto.ToJournalLineResponse(&lines[i])
	}
	c.JSON(http.StatusOK, gin.H{"lines": resp, "nextToken": newToken})
}

// getCachedBalance godoc
// @Summary Get a cached period balance
// @Description Retrieves the cached balance of an account for a calendar month
// @Tags journals
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   account_id path string true "Account ID"
// @Param   year path int true "Year"
// @Param   month path int true "Month (1-12)"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No cached balance for the period"
// @Failure 500 {object} map[string]string "Failed to retrieve balance"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/accounts/{account_id}/balances/{year}/{month} [get]
func (h *journalHandler) getCachedBalance(c *gin.Context) {
	h.serveBalance(c, h.journalService.GetAccountBalance)
}

// recomputeBalance godoc
// @Summary Recompute a cached period balance
// @Description Rebuilds a period balance from the underlying journal lines and returns the fresh value
// @Tags journals
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   account_id path string true "Account ID"
// @Param   year path int true "Year"
// @Param   month path int true "Month (1-12)"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to recompute balance"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/accounts/{account_id}/balances/{year}/{month}/recompute [post]
func (h *journalHandler) recomputeBalance(c *gin.Context) {
	h.serveBalance(c, h.journalService.RecomputeAccountBalance)
}

// serveBalance factors the shared param parsing and error mapping of the two
// period balance endpoints.
func (h *journalHandler) serveBalance(c *gin.Context, fetch func(ctx context.Context, workplaceID, accountID string, year, month int) (*domain.AccountBalance, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")
	accountID := c.Param("account_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("Logged-in user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year parameter"})
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month parameter"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("target_account_id", accountID), slog.Int("year", year), slog.Int("month", month))

	balance, err := fetch(c.Request.Context(), workplaceID, accountID, year, month)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Balance not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Balance not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error fetching balance", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to fetch account balance", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve balance"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountBalanceResponse(balance))
}

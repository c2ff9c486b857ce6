package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/finbooks/finbooks_core/internal/apperrors"
	portssvc "github.com/finbooks/finbooks_core/internal/core/ports/services"
	"github.com/finbooks/finbooks_core/internal/dto"
	"github.com/finbooks/finbooks_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// bankHandler handles HTTP requests for bank transaction import, matching and
// reconciliation.
type bankHandler struct {
	bankService portssvc.BankSvcFacade
}

// newBankHandler creates a new bankHandler.
func newBankHandler(bs portssvc.BankSvcFacade) *bankHandler {
	return &bankHandler{
		bankService: bs,
	}
}

// registerBankRoutes registers workplace-scoped bank reconciliation routes.
func registerBankRoutes(rg *gin.RouterGroup, bankService portssvc.BankSvcFacade) {
	h := newBankHandler(bankService)

	transactions := rg.Group("/bank-transactions")
	{
		transactions.POST("/import", h.importTransactions)
		transactions.POST("/suggest-matches", h.suggestMatches)
		transactions.GET("", h.listTransactions)
		transactions.GET("/:transaction_id", h.getTransaction)
		transactions.PUT("/:transaction_id/match", h.setMatchStatus)
		transactions.POST("/:transaction_id/reset-match", h.resetMatch)
		transactions.POST("/:transaction_id/reconcile", h.reconcileTransaction)
		transactions.POST("/:transaction_id/convert-to-payment", h.convertToPayment)
	}

	rules := rg.Group("/matching-rules")
	{
		rules.POST("", h.createRule)
		rules.GET("", h.listRules)
		rules.DELETE("/:rule_id", h.deactivateRule)
	}
}

// importTransactions godoc
// @Summary Import bank transactions
// @Description Imports a batch of transactions, screening each row against existing transactions for likely duplicates
// @Tags bank
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   import body dto.ImportBankTransactionsRequest true "Import batch"
// @Success 200 {object} dto.ImportBankTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Duplicate transaction within the batch"
// @Failure 500 {object} map[string]string "Failed to import transactions"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/bank-transactions/import [post]
func (h *bankHandler) importTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")

	var req dto.ImportBankTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ImportTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("bank_account_id", req.BankAccountID))
	logger.Info("Received request to import bank transactions", slog.Int("row_count", len(req.Transactions)))

	resp, err := h.bankService.ImportTransactions(c.Request.Context(), workplaceID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error importing transactions", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Duplicate transaction in import batch", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to import bank transactions in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import transactions"})
		}
		return
	}

	logger.Info("Bank transactions imported", slog.Int("imported", len(resp.Imported)), slog.Int("duplicates", len(resp.Duplicates)))
	c.JSON(http.StatusOK, resp)
}

// suggestMatches godoc
// @Summary Run matching rules over unmatched transactions
// @Description Applies the active rules to unmatched transactions of a bank account and marks the hits SUGGESTED
// @Tags bank
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   bankAccountID query string true "Bank account ID"
// @Success 200 {object} []dto.BankTransactionResponse
// @Failure 400 {object} map[string]string "Missing bank account ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to suggest matches"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/bank-transactions/suggest-matches [post]
func (h *bankHandler) suggestMatches(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")

	bankAccountID := c.Query("bankAccountID")
	if bankAccountID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bankAccountID query parameter is required"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("bank_account_id", bankAccountID))
	logger.Info("Received request to suggest matches")

	changed, err := h.bankService.SuggestMatches(c.Request.Context(), workplaceID, bankAccountID, userID)
	if err != nil {
		logger.Error("Failed to suggest matches in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to suggest matches"})
		return
	}

	resp := make([]dto.BankTransactionResponse, len(changed))
	for i := range changed {
		resp[i] = dto.ToBankTransactionResponse(&changed[i])
	}
	logger.Info("Match suggestions applied", slog.Int("suggested", len(resp)))
	c.JSON(http.StatusOK, resp)
}

// getTransaction godoc
// @Summary Get a bank transaction by ID
// @Description Retrieves a specific bank transaction
// @Tags bank
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   transaction_id path string true "Transaction ID"
// @Success 200 {object} dto.BankTransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to retrieve transaction"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/bank-transactions/{transaction_id} [get]
func (h *bankHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")
	transactionID := c.Param("transaction_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("Logged-in user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("transaction_id", transactionID))

	txn, err := h.bankService.GetTransactionByID(c.Request.Context(), workplaceID, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Bank transaction not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Bank transaction not found"})
		} else {
			logger.Error("Failed to get bank transaction from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transaction"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToBankTransactionResponse(txn))
}

// listTransactions godoc
// @Summary List bank transactions
// @Description Retrieves a paginated list of bank transactions, optionally filtered by match status
// @Tags bank
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   bankAccountID query string false "Filter by bank account"
// @Param   status query string false "Filter by match status"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.ListBankTransactionsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/bank-transactions [get]
func (h *bankHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("Logged-in user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListBankTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.bankService.ListTransactions(c.Request.Context(), workplaceID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid list parameters", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list bank transactions from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// setMatchStatus godoc
// @Summary Transition a transaction's match status
// @Description Moves a bank transaction between UNMATCHED, SUGGESTED, MATCHED and EXCLUDED
// @Tags bank
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   transaction_id path string true "Transaction ID"
// @Param   match body dto.SetMatchStatusRequest true "Target match status"
// @Success 200 {object} dto.BankTransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Illegal match status transition"
// @Failure 500 {object} map[string]string "Failed to update match status"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/bank-transactions/{transaction_id}/match [put]
func (h *bankHandler) setMatchStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")
	transactionID := c.Param("transaction_id")

	var req dto.SetMatchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetMatchStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("transaction_id", transactionID), slog.String("target_status", string(req.Status)))
	logger.Info("Received request to set match status")

	txn, err := h.bankService.SetMatchStatus(c.Request.Context(), workplaceID, transactionID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error setting match status", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Bank transaction not found for match update")
			c.JSON(http.StatusNotFound, gin.H{"error": "Bank transaction not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Illegal match status transition", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to set match status in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update match status"})
		}
		return
	}

	logger.Info("Match status updated successfully")
	c.JSON(http.StatusOK, dto.ToBankTransactionResponse(txn))
}

// resetMatch godoc
// @Summary Reset a transaction's match state
// @Description Returns a matched or excluded transaction to UNMATCHED, clearing its match fields
// @Tags bank
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   transaction_id path string true "Transaction ID"
// @Success 200 {object} dto.BankTransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Reconciled transactions cannot be reset"
// @Failure 500 {object} map[string]string "Failed to reset match"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/bank-transactions/{transaction_id}/reset-match [post]
func (h *bankHandler) resetMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")
	transactionID := c.Param("transaction_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("transaction_id", transactionID))
	logger.Info("Received request to reset transaction match")

	txn, err := h.bankService.ResetMatch(c.Request.Context(), workplaceID, transactionID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Bank transaction not found for match reset")
			c.JSON(http.StatusNotFound, gin.H{"error": "Bank transaction not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Transaction match cannot be reset", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to reset transaction match in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset match"})
		}
		return
	}

	logger.Info("Transaction match reset successfully")
	c.JSON(http.StatusOK, dto.ToBankTransactionResponse(txn))
}

// reconcileTransaction godoc
// @Summary Reconcile a matched transaction
// @Description Flags a MATCHED transaction as reconciled against the bank statement
// @Tags bank
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   transaction_id path string true "Transaction ID"
// @Success 200 {object} dto.BankTransactionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Only matched transactions can be reconciled"
// @Failure 500 {object} map[string]string "Failed to reconcile transaction"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/bank-transactions/{transaction_id}/reconcile [post]
func (h *bankHandler) reconcileTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")
	transactionID := c.Param("transaction_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("transaction_id", transactionID))
	logger.Info("Received request to reconcile transaction")

	txn, err := h.bankService.ReconcileTransaction(c.Request.Context(), workplaceID, transactionID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Bank transaction not found for reconciliation")
			c.JSON(http.StatusNotFound, gin.H{"error": "Bank transaction not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Transaction cannot be reconciled", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error reconciling transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to reconcile transaction in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reconcile transaction"})
		}
		return
	}

	logger.Info("Transaction reconciled successfully")
	c.JSON(http.StatusOK, dto.ToBankTransactionResponse(txn))
}

// convertToPayment godoc
// @Summary Convert a matched transaction into a payment
// @Description Records a payment from a matched bank transaction and allocates it to the matched document
// @Tags bank
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   transaction_id path string true "Transaction ID"
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} map[string]string "Transaction is not matched to a document"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Conflict converting the transaction"
// @Failure 500 {object} map[string]string "Failed to convert transaction"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/bank-transactions/{transaction_id}/convert-to-payment [post]
func (h *bankHandler) convertToPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")
	transactionID := c.Param("transaction_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("transaction_id", transactionID))
	logger.Info("Received request to convert transaction to payment")

	payment, err := h.bankService.ConvertToPayment(c.Request.Context(), workplaceID, transactionID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error converting transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Bank transaction not found for conversion")
			c.JSON(http.StatusNotFound, gin.H{"error": "Bank transaction not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Conflict converting transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to convert transaction in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to convert transaction"})
		}
		return
	}

	logger.Info("Transaction converted to payment", slog.String("payment_id", payment.PaymentID))
	c.JSON(http.StatusCreated, dto.ToPaymentResponse(payment))
}

// createRule godoc
// @Summary Create a matching rule
// @Description Persists a user-defined rule applied during match suggestion
// @Tags bank
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   rule body dto.CreateMatchingRuleRequest true "Rule details"
// @Success 201 {object} dto.MatchingRuleResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create rule"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/matching-rules [post]
func (h *bankHandler) createRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")

	var req dto.CreateMatchingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateRule", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("rule_name", req.Name))
	logger.Info("Received request to create matching rule")

	rule, err := h.bankService.CreateRule(c.Request.Context(), workplaceID, req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating rule", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create matching rule in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rule"})
		}
		return
	}

	logger.Info("Matching rule created successfully", slog.String("rule_id", rule.RuleID))
	c.JSON(http.StatusCreated, dto.ToMatchingRuleResponse(rule))
}

// listRules godoc
// @Summary List active matching rules
// @Description Retrieves the workplace's active matching rules ordered by priority
// @Tags bank
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Success 200 {object} []dto.MatchingRuleResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list rules"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/matching-rules [get]
func (h *bankHandler) listRules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("Logged-in user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rules, err := h.bankService.ListRules(c.Request.Context(), workplaceID)
	if err != nil {
		logger.Error("Failed to list matching rules from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rules"})
		return
	}

	resp := make([]dto.MatchingRuleResponse, len(rules))
	for i := range rules {
		resp[i] = dto.ToMatchingRuleResponse(&rules[i])
	}
	c.JSON(http.StatusOK, resp)
}

// deactivateRule godoc
// @Summary Deactivate a matching rule
// @Description Disables a rule without deleting its match history
// @Tags bank
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   rule_id path string true "Rule ID"
// @Success 204 "Rule deactivated"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Rule not found"
// @Failure 500 {object} map[string]string "Failed to deactivate rule"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/matching-rules/{rule_id} [delete]
func (h *bankHandler) deactivateRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")
	ruleID := c.Param("rule_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("rule_id", ruleID))
	logger.Info("Received request to deactivate matching rule")

	err := h.bankService.DeactivateRule(c.Request.Context(), workplaceID, ruleID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Matching rule not found for deactivation")
			c.JSON(http.StatusNotFound, gin.H{"error": "Matching rule not found"})
		} else {
			logger.Error("Failed to deactivate matching rule in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate rule"})
		}
		return
	}

	logger.Info("Matching rule deactivated successfully")
	c.Status(http.StatusNoContent)
}

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

// paymentHandler handles HTTP requests related to payments.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

// newPaymentHandler creates a new paymentHandler.
func newPaymentHandler(ps portssvc.PaymentSvcFacade) *paymentHandler {
	return &paymentHandler{
		paymentService: ps,
	}
}

// registerPaymentRoutes registers workplace-scoped payment routes.
func registerPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade) {
	h := newPaymentHandler(paymentService)

	payments := rg.Group("/payments")
	{
		payments.POST("", h.recordPayment)
		payments.GET("", h.listPayments)
		payments.GET("/:payment_id", h.getPayment)
		payments.POST("/:payment_id/allocations", h.allocatePayment)
		payments.POST("/:payment_id/reverse", h.reversePayment)
	}
}

// recordPayment godoc
// @Summary Record a payment
// @Description Records a payment against a document, settles the document when fully paid, and optionally posts a ledger entry
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   payment body dto.RecordPaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} map[string]string "Invalid input, overpayment, or document cannot receive payments"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 500 {object} map[string]string "Failed to record payment"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/payments [post]
func (h *paymentHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")

	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("creator_user_id", creatorUserID), slog.String("document_id", req.DocumentID))
	logger.Info("Received request to record payment", slog.String("amount", req.Amount.String()))

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), workplaceID, req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error recording payment", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Document not found recording payment", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Conflict recording payment", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to record payment in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		}
		return
	}

	logger.Info("Payment recorded successfully", slog.String("payment_id", payment.PaymentID))
	c.JSON(http.StatusCreated, dto.ToPaymentResponse(payment))
}

// getPayment godoc
// @Summary Get a payment by ID
// @Description Retrieves a payment with its allocations
// @Tags payments
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   payment_id path string true "Payment ID"
// @Success 200 {object} dto.PaymentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 500 {object} map[string]string "Failed to retrieve payment"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/payments/{payment_id} [get]
func (h *paymentHandler) getPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")
	paymentID := c.Param("payment_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("Logged-in user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("payment_id", paymentID))

	payment, err := h.paymentService.GetPaymentByID(c.Request.Context(), workplaceID, paymentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Payment not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		} else {
			logger.Error("Failed to get payment from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve payment"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// listPayments godoc
// @Summary List payments
// @Description Retrieves a paginated list of payments, newest first
// @Tags payments
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.ListPaymentsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list payments"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/payments [get]
func (h *paymentHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("Logged-in user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListPaymentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListPayments", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.paymentService.ListPayments(c.Request.Context(), workplaceID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid pagination token", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list payments from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list payments"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// allocatePayment godoc
// @Summary Allocate a payment's remainder
// @Description Applies additional allocations from an existing payment to further documents, bounded by the unallocated amount
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   payment_id path string true "Payment ID"
// @Param   allocations body dto.AllocatePaymentRequest true "Allocations to apply"
// @Success 200 {object} dto.PaymentResponse
// @Failure 400 {object} map[string]string "Invalid input, over-allocation, or document cannot receive payments"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Payment or document not found"
// @Failure 500 {object} map[string]string "Failed to allocate payment"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/payments/{payment_id}/allocations [post]
func (h *paymentHandler) allocatePayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")
	paymentID := c.Param("payment_id")

	var req dto.AllocatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AllocatePayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("payment_id", paymentID))
	logger.Info("Received request to allocate payment", slog.Int("allocation_count", len(req.Allocations)))

	payment, err := h.paymentService.AllocatePayment(c.Request.Context(), workplaceID, paymentID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error allocating payment", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Payment or document not found for allocation", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Conflict allocating payment", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to allocate payment in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate payment"})
		}
		return
	}

	logger.Info("Payment allocated successfully")
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// reversePayment godoc
// @Summary Reverse a payment
// @Description Reverses a completed payment with offsetting records, restoring the paid amounts of every allocated document
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   payment_id path string true "Payment ID"
// @Param   reversal body dto.ReversePaymentRequest true "Reversal reason"
// @Success 201 {object} dto.PaymentResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 409 {object} map[string]string "Payment is not in a reversible state"
// @Failure 500 {object} map[string]string "Failed to reverse payment"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/payments/{payment_id}/reverse [post]
func (h *paymentHandler) reversePayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")
	paymentID := c.Param("payment_id")

	var req dto.ReversePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReversePayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("payment_id", paymentID))
	logger.Info("Received request to reverse payment")

	reversal, err := h.paymentService.ReversePayment(c.Request.Context(), workplaceID, paymentID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error reversing payment", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Payment not found for reversal")
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Payment cannot be reversed", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to reverse payment in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reverse payment"})
		}
		return
	}

	logger.Info("Payment reversed successfully", slog.String("reversal_payment_id", reversal.PaymentID))
	c.JSON(http.StatusCreated, dto.ToPaymentResponse(reversal))
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/finbooks/finbooks_core/internal/apperrors"
	"github.com/finbooks/finbooks_core/internal/core/domain"
	portssvc "github.com/finbooks/finbooks_core/internal/core/ports/services"
	"github.com/finbooks/finbooks_core/internal/dto"
	"github.com/finbooks/finbooks_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// periodHandler handles HTTP requests related to accounting periods.
type periodHandler struct {
	periodService portssvc.PeriodSvcFacade
}

// newPeriodHandler creates a new periodHandler.
func newPeriodHandler(ps portssvc.PeriodSvcFacade) *periodHandler {
	return &periodHandler{
		periodService: ps,
	}
}

// registerPeriodRoutes registers workplace-scoped period routes.
func registerPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.PeriodSvcFacade) {
	h := newPeriodHandler(periodService)

	periods := rg.Group("/periods")
	{
		periods.POST("", h.createPeriod)
		periods.GET("", h.listPeriods)
		periods.GET("/lookup", h.lookupPeriod)
		periods.PUT("/:period_id/status", h.setPeriodStatus)
	}
}

// createPeriod godoc
// @Summary Open an accounting period
// @Description Opens a new monthly accounting period; overlapping periods are rejected
// @Tags periods
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   period body dto.CreatePeriodRequest true "Period details"
// @Success 201 {object} dto.PeriodResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Period already exists"
// @Failure 500 {object} map[string]string "Failed to create period"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/periods [post]
func (h *periodHandler) createPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")

	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePeriod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.Int("year", req.Year), slog.Int("month", req.Month))
	logger.Info("Received request to create accounting period")

	period, err := h.periodService.CreatePeriod(c.Request.Context(), workplaceID, req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error creating period", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Period already exists", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create period in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create period"})
		}
		return
	}

	logger.Info("Accounting period created successfully", slog.String("period_id", period.PeriodID))
	c.JSON(http.StatusCreated, dto.ToPeriodResponse(period))
}

// listPeriods godoc
// @Summary List accounting periods
// @Description Retrieves all periods in the workplace, newest first
// @Tags periods
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Success 200 {object} []dto.PeriodResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list periods"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/periods [get]
func (h *periodHandler) listPeriods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("Logged-in user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	periods, err := h.periodService.ListPeriods(c.Request.Context(), workplaceID)
	if err != nil {
		logger.Error("Failed to list periods from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list periods"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListPeriodResponse(periods))
}

// lookupPeriod godoc
// @Summary Look up an accounting period
// @Description Finds the period for a year and month, or the period containing a date
// @Tags periods
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   year query int false "Year (with month)"
// @Param   month query int false "Month 1-12 (with year)"
// @Param   date query string false "RFC 3339 date; alternative to year/month"
// @Success 200 {object} dto.PeriodResponse
// @Failure 400 {object} map[string]string "Missing or invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No period covers the requested month"
// @Failure 500 {object} map[string]string "Failed to look up period"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/periods/lookup [get]
func (h *periodHandler) lookupPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("Logged-in user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var (
		period *domain.AccountingPeriod
		err    error
	)
	if rawDate := c.Query("date"); rawDate != "" {
		date, parseErr := time.Parse(time.RFC3339, rawDate)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date parameter, expected RFC 3339"})
			return
		}
		period, err = h.periodService.GetPeriodForDate(c.Request.Context(), workplaceID, date)
	} else {
		year, yearErr := strconv.Atoi(c.Query("year"))
		month, monthErr := strconv.Atoi(c.Query("month"))
		if yearErr != nil || monthErr != nil || month < 1 || month > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Provide either date, or valid year and month"})
			return
		}
		period, err = h.periodService.GetPeriod(c.Request.Context(), workplaceID, year, month)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Period not found for lookup")
			c.JSON(http.StatusNotFound, gin.H{"error": "No period covers the requested month"})
		} else {
			logger.Error("Failed to look up period", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up period"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

// setPeriodStatus godoc
// @Summary Transition a period's status
// @Description Moves a period between OPEN, CLOSED and LOCKED; LOCKED is terminal
// @Tags periods
// @Accept  json
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   period_id path string true "Period ID"
// @Param   status body dto.SetPeriodStatusRequest true "Target status"
// @Success 200 {object} dto.PeriodResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Period not found"
// @Failure 409 {object} map[string]string "Illegal status transition"
// @Failure 500 {object} map[string]string "Failed to update period"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/periods/{period_id}/status [put]
func (h *periodHandler) setPeriodStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")
	periodID := c.Param("period_id")

	var req dto.SetPeriodStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetPeriodStatus", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("period_id", periodID), slog.String("target_status", string(req.Status)))
	logger.Info("Received request to transition period status")

	period, err := h.periodService.SetPeriodStatus(c.Request.Context(), workplaceID, periodID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Period not found for status transition")
			c.JSON(http.StatusNotFound, gin.H{"error": "Period not found"})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Illegal period status transition", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error transitioning period", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to transition period status in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update period"})
		}
		return
	}

	logger.Info("Period status updated successfully")
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

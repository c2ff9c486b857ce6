package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/finbooks/finbooks_core/internal/core/ports/services"
	"github.com/finbooks/finbooks_core/internal/dto"
	"github.com/finbooks/finbooks_core/internal/middleware"
	"github.com/gin-gonic/gin"
)

// activityHandler handles HTTP requests for the audit activity log.
type activityHandler struct {
	activityService portssvc.ActivityReaderSvc
}

// newActivityHandler creates a new activityHandler.
func newActivityHandler(as portssvc.ActivityReaderSvc) *activityHandler {
	return &activityHandler{
		activityService: as,
	}
}

// registerActivityRoutes registers workplace-scoped activity routes.
func registerActivityRoutes(rg *gin.RouterGroup, activityService portssvc.ActivityReaderSvc) {
	h := newActivityHandler(activityService)

	rg.GET("/activities", h.listActivities)
}

// listActivities godoc
// @Summary List activities for an entity
// @Description Retrieves the recorded audit activities for an entity, newest first
// @Tags activities
// @Produce  json
// @Param   workplace_id path string true "Workplace ID"
// @Param   entityType query string true "Entity type (DOCUMENT, PAYMENT, JOURNAL, BANK_TRANSACTION)"
// @Param   entityID query string true "Entity ID"
// @Param   limit query int false "Limit number of results" default(50)
// @Success 200 {object} dto.ListActivitiesResponse
// @Failure 400 {object} map[string]string "Missing or invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list activities"
// @Security BearerAuth
// @Router /workplaces/{workplace_id}/activities [get]
func (h *activityHandler) listActivities(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	workplaceID := c.Param("workplace_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		logger.Error("Logged-in user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListActivitiesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListActivities", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("workplace_id", workplaceID), slog.String("entity_type", string(params.EntityType)), slog.String("entity_id", params.EntityID))

	activities, err := h.activityService.ListActivities(c.Request.Context(), workplaceID, params.EntityType, params.EntityID, params.Limit)
	if err != nil {
		logger.Error("Failed to list activities from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list activities"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListActivitiesResponse(activities))
}

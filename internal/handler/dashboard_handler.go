package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/crediario/crediario-backend/internal/middleware"
	"github.com/crediario/crediario-backend/internal/service"
)

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetSummary handles GET /api/v1/dashboard/summary
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	summary, err := h.dashboardService.GetSummary(c.Request().Context(), storeID)
	if err != nil {
		log.Error().Err(err).Int32("store_id", storeID).Msg("Failed to compute store summary")
		return NewInternalError(c, "Failed to compute store summary")
	}

	return c.JSON(http.StatusOK, summary)
}

// RefreshSummary handles POST /api/v1/dashboard/summary/refresh
// Drops the cached summary so the next read recomputes from the portfolio.
func (h *DashboardHandler) RefreshSummary(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	h.dashboardService.InvalidateSummary(c.Request().Context(), storeID)

	summary, err := h.dashboardService.GetSummary(c.Request().Context(), storeID)
	if err != nil {
		log.Error().Err(err).Int32("store_id", storeID).Msg("Failed to recompute store summary")
		return NewInternalError(c, "Failed to recompute store summary")
	}

	return c.JSON(http.StatusOK, summary)
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/crediario/crediario-backend/internal/middleware"
	"github.com/crediario/crediario-backend/internal/service"
)

// OverdueHandler exposes the overdue sweep for manual runs. The cron
// scheduler drives the same service method on its own.
type OverdueHandler struct {
	overdueService *service.OverdueService
}

// NewOverdueHandler creates a new OverdueHandler
func NewOverdueHandler(overdueService *service.OverdueService) *OverdueHandler {
	return &OverdueHandler{overdueService: overdueService}
}

// RunSweep handles POST /api/v1/overdue/sweep
func (h *OverdueHandler) RunSweep(c echo.Context) error {
	storeID := middleware.GetStoreID(c)
	if storeID == 0 {
		return NewUnauthorizedError(c, "Store required")
	}

	result, err := h.overdueService.Sweep()
	if err != nil {
		log.Error().Err(err).Msg("Overdue sweep failed")
		return NewInternalError(c, "Overdue sweep failed")
	}

	return c.JSON(http.StatusOK, result)
}

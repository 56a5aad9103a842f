package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports service and store liveness
type HealthHandler struct {
	ping func(ctx context.Context) error
}

// NewHealthHandler creates a HealthHandler that checks the store with ping
func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

func (h *HealthHandler) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "unhealthy",
			"service": "userdir",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "userdir",
	})
}

package api

import (
	"backend/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	healthService service.HealthService
}

func NewHealthHandler(healthService service.HealthService) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

// Livez はプロセス生存のみ。依存は見ない。
func (h *HealthHandler) Livez(c echo.Context) error {
	if !h.healthService.Alive() {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.String(http.StatusOK, "ok")
}

// Readyz はreadyフラグとDB疎通。落ちていたら503でLBから外れる。
func (h *HealthHandler) Readyz(c echo.Context) error {
	if !h.healthService.Ready(c.Request().Context()) {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.String(http.StatusOK, "ok")
}

func (h *HealthHandler) Healthz(c echo.Context) error {
	return h.Readyz(c)
}

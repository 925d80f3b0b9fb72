package app

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/itemsorter/internal/middleware"
	"github.com/keyxmakerx/itemsorter/internal/plugins/items"
	"github.com/keyxmakerx/itemsorter/internal/plugins/settings"
	"github.com/keyxmakerx/itemsorter/internal/plugins/sheets"
)

// RegisterRoutes sets up the health check and the /api/v1 group.
func (a *App) RegisterRoutes() {
	e := a.Echo

	e.GET("/healthz", a.health)

	api := e.Group("/api/v1", middleware.APIKey(a.Config.Auth.APIKeyHash))
	if a.Config.RateLimit.Requests > 0 {
		api.Use(middleware.RateLimit(a.Redis, a.Config.RateLimit.Requests, a.Config.RateLimit.Window))
	}

	items.RegisterRoutes(api, items.NewHandler(a.Items))
	settings.RegisterRoutes(api, settings.NewHandler(a.Settings))
	sheets.RegisterRoutes(api, sheets.NewHandler(a.Sheets))
}

// health reports whether MariaDB and Redis answer.
func (a *App) health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok", "database": "ok", "redis": "ok"}
	code := http.StatusOK
	if err := a.DB.PingContext(ctx); err != nil {
		status["database"] = err.Error()
		status["status"] = "degraded"
		code = http.StatusServiceUnavailable
	}
	if err := a.Redis.Ping(ctx).Err(); err != nil {
		status["redis"] = err.Error()
		status["status"] = "degraded"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}

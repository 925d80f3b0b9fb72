// Package app is the bootstrap and dependency injection root. It holds the
// shared infrastructure (DB pool, Redis client, Echo instance) and wires
// the item store, the sort settings, and both ordering engines together.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/itemsorter/internal/apperror"
	"github.com/keyxmakerx/itemsorter/internal/config"
	"github.com/keyxmakerx/itemsorter/internal/middleware"
	"github.com/keyxmakerx/itemsorter/internal/plugins/items"
	"github.com/keyxmakerx/itemsorter/internal/plugins/settings"
	"github.com/keyxmakerx/itemsorter/internal/plugins/sheets"
	"github.com/keyxmakerx/itemsorter/internal/plugins/sorter"
	"github.com/keyxmakerx/itemsorter/internal/scheduler"
)

// App holds all shared dependencies and the Echo HTTP server instance.
type App struct {
	Config *config.Config
	DB     *sql.DB
	Redis  *redis.Client
	Echo   *echo.Echo

	Items    items.ItemService
	Settings settings.SettingsService
	Sorter   *sorter.Service
	Sheets   *sheets.Service
}

// New creates the App, wires the plugins and configures Echo.
func New(cfg *config.Config, db *sql.DB, rdb *redis.Client) *App {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Echo:   e,
	}
	app.wire()

	app.setupMiddleware()
	e.HTTPErrorHandler = app.errorHandler
	return app
}

// wire builds the plugins and connects their events.
func (a *App) wire() {
	a.Items = items.NewItemService(items.NewItemRepository(a.DB), nil)
	a.Settings = settings.NewSettingsService(
		settings.NewCachedRepository(settings.NewSettingsRepository(a.DB), a.Redis),
	)

	a.Sorter = sorter.NewService(
		a.Items,
		a.Settings,
		sorter.NewRedisMarker(a.Redis),
		scheduler.New(a.Config.Sorter.Debounce),
		sorter.Options{
			Stride:      a.Config.Sorter.Stride,
			LocalUserID: a.Config.Sorter.LocalUserID,
		},
	)
	a.Sheets = sheets.NewService(a.Items, a.Settings, sheets.DefaultFinders)
	a.Sorter.SetOpenSheets(a.Sheets)

	hooks := a.Items.Hooks()
	hooks.OnPreUpdate(a.Sorter.InterceptUpdate)
	hooks.Subscribe(a.Sorter.OnItemChanged)

	a.Sheets.OnRender(a.Sorter.OnSheetRendered)

	a.Settings.Subscribe(a.Sheets.OnSettingsChanged)
	a.Settings.Subscribe(a.Sorter.OnSettingsChanged)
}

// setupMiddleware registers global middleware. Recovery is outermost so it
// sees panics from everything below it.
func (a *App) setupMiddleware() {
	a.Echo.Use(middleware.Recovery())
	a.Echo.Use(middleware.RequestLogger())
	a.Echo.Use(middleware.SecurityHeaders())
}

// Prepare runs the startup steps that need the backing stores. The sorted
// marker only covers the lifetime of this process.
func (a *App) Prepare(ctx context.Context) error {
	if err := sorter.NewRedisMarker(a.Redis).Reset(ctx); err != nil {
		return fmt.Errorf("resetting sorted marker: %w", err)
	}
	return nil
}

// errorHandler maps AppErrors to JSON responses. Internal causes are
// logged, never returned.
func (a *App) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	errType := "internal_error"
	message := "An unexpected error occurred"

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		errType = appErr.Type
		message = appErr.Message
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	case errors.As(err, &echoErr):
		code = echoErr.Code
		errType = "http_error"
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	default:
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
		)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]string{
		"error":   errType,
		"message": message,
	})
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting item sorter server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
	)
	return a.Echo.Start(addr)
}

// Shutdown drains HTTP requests, then drops pending sort runs and waits for
// running ones.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	a.Sorter.Stop()
	return err
}

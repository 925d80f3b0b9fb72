// Package main is the entry point for the item sorter server. It loads
// configuration, connects MariaDB and Redis, applies migrations, wires the
// plugins and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/text/language"

	"github.com/keyxmakerx/itemsorter/internal/app"
	"github.com/keyxmakerx/itemsorter/internal/collator"
	"github.com/keyxmakerx/itemsorter/internal/config"
	"github.com/keyxmakerx/itemsorter/internal/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	setupLogging(cfg)

	tag, err := language.Parse(cfg.Sorter.Locale)
	if err != nil {
		slog.Warn("invalid SORT_LOCALE, using root collation",
			slog.String("locale", cfg.Sorter.Locale),
			slog.Any("error", err),
		)
		tag = language.Und
	}
	collator.SetDefaultLocale(tag)

	slog.Info("starting item sorter",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("locale", tag.String()),
	)

	db, err := database.NewMariaDB(cfg.Database)
	if err != nil {
		slog.Error("failed to connect to MariaDB", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to MariaDB")

	if err := database.RunMigrations(db, cfg.MigrationsPath); err != nil {
		slog.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to Redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer rdb.Close()
	slog.Info("connected to Redis")

	application := app.New(cfg, db, rdb)
	if err := application.Prepare(context.Background()); err != nil {
		slog.Error("failed to prepare application", slog.Any("error", err))
		os.Exit(1)
	}
	application.RegisterRoutes()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := application.Shutdown(ctx); err != nil {
			slog.Error("server forced shutdown", slog.Any("error", err))
		}
	}()

	if err := application.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// setupLogging installs the global slog handler: text at debug level in
// development, JSON at info level otherwise. LOG_LEVEL overrides the level.
func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	if cfg.IsDevelopment() {
		level = slog.LevelDebug
	}
	if cfg.LogLevel != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err == nil {
			level = l
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

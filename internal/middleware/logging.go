// Package middleware provides the Echo middleware of the item sorter API.
// Registration order lives in internal/app.
package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// UserHeader carries the identity of the user making the request.
const UserHeader = "X-User-ID"

// RequestLogger logs every request once it completes. 5xx responses log at
// error level and 4xx at warn.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the error handler commit the status before logging it.
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", status),
				slog.Duration("latency", time.Since(start)),
				slog.String("remote_ip", c.RealIP()),
			}
			if user := req.Header.Get(UserHeader); user != "" {
				attrs = append(attrs, slog.String("user_id", user))
			}

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			slog.LogAttrs(req.Context(), level, "request", attrs...)
			return nil
		}
	}
}

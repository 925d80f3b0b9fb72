package middleware

import (
	"crypto/subtle"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/keyxmakerx/itemsorter/internal/apperror"
)

// APIKey requires a Bearer token matching the bcrypt hash. An empty hash
// disables the check. The last accepted key is remembered so bcrypt runs
// once per key rather than once per request.
func APIKey(hash string) echo.MiddlewareFunc {
	var (
		mu       sync.RWMutex
		accepted string
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if hash == "" {
			return next
		}
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			key, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || key == "" {
				return apperror.NewUnauthorized("missing API key")
			}

			mu.RLock()
			known := accepted != "" && subtle.ConstantTimeCompare([]byte(accepted), []byte(key)) == 1
			mu.RUnlock()
			if known {
				return next(c)
			}

			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
				return apperror.NewUnauthorized("invalid API key")
			}
			mu.Lock()
			accepted = key
			mu.Unlock()
			return next(c)
		}
	}
}

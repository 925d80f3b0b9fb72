package settings

import "github.com/labstack/echo/v4"

// RegisterRoutes sets up sort settings routes on the API group.
func RegisterRoutes(api *echo.Group, h *Handler) {
	api.GET("/settings", h.List)
	api.PUT("/settings/:key", h.Update)
	api.GET("/settings/criteria/:itemType", h.Criteria)
}

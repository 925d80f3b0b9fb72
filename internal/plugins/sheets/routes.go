package sheets

import "github.com/labstack/echo/v4"

// RegisterRoutes adds the open sheet endpoints to the API group.
func RegisterRoutes(api *echo.Group, h *Handler) {
	api.POST("/actors/:actorID/sheets", h.Render)
	api.GET("/sheets", h.List)
	api.POST("/sheets/sort", h.SortAll)
	api.GET("/sheets/:sheetID", h.Get)
	api.DELETE("/sheets/:sheetID", h.Close)
}

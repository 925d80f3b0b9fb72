package items

import "github.com/labstack/echo/v4"

// RegisterRoutes adds the actor and item endpoints to the API group.
func RegisterRoutes(api *echo.Group, h *Handler) {
	api.POST("/actors", h.CreateActor)
	api.GET("/actors/:actorID", h.GetActor)

	ag := api.Group("/actors/:actorID/items")
	ag.GET("", h.List)
	ag.POST("", h.Create)
	ag.PATCH("", h.UpdateMany)
	ag.GET("/:itemID", h.Get)
	ag.PUT("/:itemID", h.Update)
	ag.DELETE("/:itemID", h.Delete)
}

package items

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/itemsorter/internal/apperror"
	"github.com/keyxmakerx/itemsorter/internal/middleware"
)

// Handler serves the actor and item REST endpoints.
type Handler struct {
	service ItemService
}

// NewHandler creates a new item handler.
func NewHandler(service ItemService) *Handler {
	return &Handler{service: service}
}

// optionsFrom builds the mutation options for a request.
func optionsFrom(c echo.Context) UpdateOptions {
	return UpdateOptions{UserID: c.Request().Header.Get(middleware.UserHeader)}
}

// createActorRequest is the JSON body for creating an actor.
type createActorRequest struct {
	Name string `json:"name"`
}

// CreateActor creates an empty actor.
// POST /api/v1/actors
func (h *Handler) CreateActor(c echo.Context) error {
	var req createActorRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	actor, err := h.service.CreateActor(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, actor)
}

// GetActor returns an actor.
// GET /api/v1/actors/:actorID
func (h *Handler) GetActor(c echo.Context) error {
	actor, err := h.service.GetActor(c.Request().Context(), c.Param("actorID"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actor)
}

// List returns the actor's items in insertion order.
// GET /api/v1/actors/:actorID/items
func (h *Handler) List(c echo.Context) error {
	coll, err := h.service.List(c.Request().Context(), c.Param("actorID"))
	if err != nil {
		return err
	}
	data := coll.All()
	if data == nil {
		data = []Item{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data":  data,
		"total": len(data),
	})
}

// Get returns one item.
// GET /api/v1/actors/:actorID/items/:itemID
func (h *Handler) Get(c echo.Context) error {
	item, err := h.service.Get(c.Request().Context(), c.Param("actorID"), c.Param("itemID"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Create adds an item.
// POST /api/v1/actors/:actorID/items
func (h *Handler) Create(c echo.Context) error {
	var input CreateItemInput
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	item, err := h.service.Create(c.Request().Context(), c.Param("actorID"), input, optionsFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

// Update applies a single change to one item. A vetoed change is not an
// error: it is reported as {"vetoed": true}.
// PUT /api/v1/actors/:actorID/items/:itemID
func (h *Handler) Update(c echo.Context) error {
	var ch Changes
	if err := c.Bind(&ch); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	ch.ID = c.Param("itemID")

	result, err := h.service.Update(c.Request().Context(), c.Param("actorID"), []Changes{ch}, optionsFrom(c))
	if err != nil {
		return err
	}
	if len(result.Vetoed) > 0 {
		return c.JSON(http.StatusOK, map[string]any{"vetoed": true})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"vetoed": false,
		"item":   result.Updated[0],
	})
}

// batchUpdateRequest is the JSON body for a batched update.
type batchUpdateRequest struct {
	Changes []Changes `json:"changes"`
}

// UpdateMany applies a batch of changes.
// PATCH /api/v1/actors/:actorID/items
func (h *Handler) UpdateMany(c echo.Context) error {
	var req batchUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if len(req.Changes) == 0 {
		return apperror.NewValidation("at least one change is required")
	}

	result, err := h.service.Update(c.Request().Context(), c.Param("actorID"), req.Changes, optionsFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Delete removes an item.
// DELETE /api/v1/actors/:actorID/items/:itemID
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("actorID"), c.Param("itemID"), optionsFrom(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

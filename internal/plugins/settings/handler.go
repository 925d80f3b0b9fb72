package settings

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/itemsorter/internal/apperror"
	"github.com/keyxmakerx/itemsorter/internal/plugins/items"
)

// Handler handles HTTP requests for sort settings.
type Handler struct {
	service SettingsService
}

// NewHandler creates a new settings handler.
func NewHandler(service SettingsService) *Handler {
	return &Handler{service: service}
}

// List returns every setting with its choices and effective value.
// GET /api/v1/settings
func (h *Handler) List(c echo.Context) error {
	all, err := h.service.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data":  all,
		"total": len(all),
	})
}

// updateRequest is the JSON body for changing a setting.
type updateRequest struct {
	Value string `json:"value"`
}

// Update changes one setting.
// PUT /api/v1/settings/:key
func (h *Handler) Update(c echo.Context) error {
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	key := c.Param("key")
	if err := h.service.Set(c.Request().Context(), key, req.Value); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"key": key, "value": req.Value})
}

// Criteria returns the effective criteria for an item type.
// GET /api/v1/settings/criteria/:itemType
func (h *Handler) Criteria(c echo.Context) error {
	t := items.ItemType(c.Param("itemType"))
	if !t.Valid() {
		return apperror.NewNotFound("unknown item type")
	}

	r, err := h.service.Resolver(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r.ForType(t))
}

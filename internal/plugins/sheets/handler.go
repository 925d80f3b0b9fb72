package sheets

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/itemsorter/internal/apperror"
	"github.com/keyxmakerx/itemsorter/internal/middleware"
)

// Handler serves the open sheet endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a new sheet handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// renderRequest is the JSON body for opening a sheet.
type renderRequest struct {
	HTML     string `json:"html"`
	Editable bool   `json:"editable"`
}

// Render opens a sheet for the actor and returns it in its sorted state.
// POST /api/v1/actors/:actorID/sheets
func (h *Handler) Render(c echo.Context) error {
	var req renderRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	sheet, err := h.service.Render(c.Request().Context(), c.Param("actorID"), req.HTML, req.Editable)
	if err != nil {
		return err
	}
	view, err := sheet.View()
	if err != nil {
		return apperror.NewInternal(err)
	}
	return c.JSON(http.StatusCreated, view)
}

// List returns the open sheets without their markup.
// GET /api/v1/sheets
func (h *Handler) List(c echo.Context) error {
	sheets := h.service.List()
	data := make([]View, 0, len(sheets))
	for _, sh := range sheets {
		data = append(data, View{ID: sh.ID, ActorID: sh.ActorID, Editable: sh.Editable, OpenedAt: sh.OpenedAt})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data":  data,
		"total": len(data),
	})
}

// Get writes the sheet's current markup. HTMX requests and clients asking
// for HTML get the fragment; everything else gets JSON.
// GET /api/v1/sheets/:sheetID
func (h *Handler) Get(c echo.Context) error {
	sheet, err := h.service.Get(c.Param("sheetID"))
	if err != nil {
		return err
	}
	if middleware.IsHTMX(c) || middleware.AcceptsHTML(c) {
		return middleware.Render(c, http.StatusOK, sheet.Component())
	}
	view, err := sheet.View()
	if err != nil {
		return apperror.NewInternal(err)
	}
	return c.JSON(http.StatusOK, view)
}

// Close removes a sheet from the registry.
// DELETE /api/v1/sheets/:sheetID
func (h *Handler) Close(c echo.Context) error {
	if err := h.service.Close(c.Param("sheetID")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SortAll reconciles every open sheet.
// POST /api/v1/sheets/sort
func (h *Handler) SortAll(c echo.Context) error {
	h.service.SortOpenSheets(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

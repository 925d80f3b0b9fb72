package sheets

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/itemsorter/internal/apperror"
)

func newTestServer(t *testing.T) (*echo.Echo, *Service) {
	t.Helper()
	svc, _ := newTestService(map[string]string{})
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			_ = c.NoContent(appErr.Code)
			return
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
	RegisterRoutes(e.Group("/api/v1"), NewHandler(svc))
	return e, svc
}

func TestHandler_RenderAndGet(t *testing.T) {
	e, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]any{"html": genericSheet, "editable": true})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/actors/actor-1/sheets", strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var view View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if view.ActorID != "actor-1" || !view.Editable || view.ID == "" {
		t.Errorf("unexpected view: %+v", view)
	}
	if strings.Index(view.HTML, "Alfa") > strings.Index(view.HTML, "Delta") {
		t.Errorf("expected sorted markup, got %s", view.HTML)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sheets/"+view.ID, nil)
	req.Header.Set(echo.HeaderAccept, echo.MIMETextHTML)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, echo.MIMETextHTML) {
		t.Errorf("expected an HTML fragment, got %s", ct)
	}
	if !strings.Contains(rec.Body.String(), `class="item-list"`) {
		t.Errorf("unexpected fragment: %s", rec.Body.String())
	}
}

func TestHandler_Close(t *testing.T) {
	e, svc := newTestServer(t)
	sheet, err := svc.Render(t.Context(), "actor-1", genericSheet, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/sheets/"+sheet.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sheets/"+sheet.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after close, got %d", rec.Code)
	}
}

// Package sheets is the live ordering engine. It keeps the panels rendered
// for each actor as parsed trees and reorders their item nodes in place by
// the configured criteria whenever a panel is rendered or the sort
// settings change.
package sheets

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/keyxmakerx/itemsorter/internal/apperror"
	"github.com/keyxmakerx/itemsorter/internal/plugins/items"
	"github.com/keyxmakerx/itemsorter/internal/plugins/settings"
	"github.com/keyxmakerx/itemsorter/internal/sanitize"
)

// ItemLister loads an actor's items.
type ItemLister interface {
	List(ctx context.Context, actorID string) (*items.Collection, error)
}

// ConfigSource provides the resolved sort configuration.
type ConfigSource interface {
	Resolver(ctx context.Context) (*settings.Resolver, error)
}

// RenderListener is notified after a panel is rendered and registered.
type RenderListener func(ctx context.Context, actorID string, editable bool)

// Sheet is an open panel.
type Sheet struct {
	ID       string
	ActorID  string
	Editable bool
	OpenedAt time.Time

	mu   sync.Mutex
	root *html.Node
}

// HTML renders the panel's current tree.
func (sh *Sheet) HTML() (string, error) {
	var b strings.Builder
	if err := sh.Component().Render(context.Background(), &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Component renders the panel's current tree as a templ component.
func (sh *Sheet) Component() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		sh.mu.Lock()
		defer sh.mu.Unlock()
		return html.Render(w, sh.root)
	})
}

// View is the JSON shape of an open panel.
type View struct {
	ID       string    `json:"id"`
	ActorID  string    `json:"actor_id"`
	Editable bool      `json:"editable"`
	OpenedAt time.Time `json:"opened_at"`
	HTML     string    `json:"html,omitempty"`
}

// View returns the panel's JSON shape including its current markup.
func (sh *Sheet) View() (View, error) {
	markup, err := sh.HTML()
	if err != nil {
		return View{}, err
	}
	return View{ID: sh.ID, ActorID: sh.ActorID, Editable: sh.Editable, OpenedAt: sh.OpenedAt, HTML: markup}, nil
}

// Service is the open panel registry and live reconciliation engine.
type Service struct {
	items   ItemLister
	config  ConfigSource
	finders []Finder

	mu        sync.RWMutex
	sheets    map[string]*Sheet
	listeners []RenderListener
}

// NewService creates the registry. A nil finders slice uses DefaultFinders.
func NewService(itemLister ItemLister, config ConfigSource, finders []Finder) *Service {
	if finders == nil {
		finders = DefaultFinders
	}
	return &Service{
		items:   itemLister,
		config:  config,
		finders: finders,
		sheets:  make(map[string]*Sheet),
	}
}

// OnRender registers a listener for rendered panels.
func (s *Service) OnRender(fn RenderListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Render sanitizes and parses panel markup for an actor, registers it as
// open, reconciles it unless the durable engine is live, and notifies the
// render listeners.
func (s *Service) Render(ctx context.Context, actorID, markup string, editable bool) (*Sheet, error) {
	if actorID == "" {
		return nil, apperror.NewBadRequest("actor id is required")
	}
	root, err := parseRoot(sanitize.HTML(markup))
	if err != nil {
		return nil, err
	}

	sheet := &Sheet{
		ID:       uuid.NewString(),
		ActorID:  actorID,
		Editable: editable,
		OpenedAt: time.Now().UTC(),
		root:     root,
	}

	s.mu.Lock()
	s.sheets[sheet.ID] = sheet
	listeners := append([]RenderListener(nil), s.listeners...)
	s.mu.Unlock()

	s.sortSheet(ctx, sheet)

	for _, fn := range listeners {
		fn(ctx, actorID, editable)
	}
	return sheet, nil
}

// Get returns an open panel.
func (s *Service) Get(id string) (*Sheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sheet, ok := s.sheets[id]
	if !ok {
		return nil, apperror.NewNotFound("sheet not found")
	}
	return sheet, nil
}

// List returns the open panels, oldest first.
func (s *Service) List() []*Sheet {
	s.mu.RLock()
	out := make([]*Sheet, 0, len(s.sheets))
	for _, sheet := range s.sheets {
		out = append(out, sheet)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].OpenedAt.Before(out[j].OpenedAt)
	})
	return out
}

// Close removes a panel from the registry.
func (s *Service) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sheets[id]; !ok {
		return apperror.NewNotFound("sheet not found")
	}
	delete(s.sheets, id)
	return nil
}

// ForEachOpenSheet calls fn for every open panel.
func (s *Service) ForEachOpenSheet(fn func(actorID string, editable bool)) {
	for _, sheet := range s.List() {
		fn(sheet.ActorID, sheet.Editable)
	}
}

// SortOpenSheets reconciles every open panel.
func (s *Service) SortOpenSheets(ctx context.Context) {
	for _, sheet := range s.List() {
		s.sortSheet(ctx, sheet)
	}
}

// OnSettingsChanged re-runs reconciliation on every open panel.
func (s *Service) OnSettingsChanged(ctx context.Context, ch settings.Change) {
	logger().Debug("sort settings changed", slog.String("key", ch.Key))
	s.SortOpenSheets(ctx)
}

// sortSheet reconciles one panel. Failures are logged and contained.
func (s *Service) sortSheet(ctx context.Context, sheet *Sheet) {
	resolver, err := s.config.Resolver(ctx)
	if err != nil {
		logger().Error("loading sort settings", slog.Any("error", err))
		return
	}
	if resolver.Flags().LegacySorter {
		return
	}

	coll, err := s.items.List(ctx, sheet.ActorID)
	if err != nil {
		logger().Debug("not sorting sheet - actor unavailable",
			slog.String("sheet_id", sheet.ID),
			slog.String("actor_id", sheet.ActorID),
			slog.Any("error", err),
		)
		return
	}

	sheet.mu.Lock()
	defer sheet.mu.Unlock()
	n, _ := Reconcile(sheet.root, coll, resolver.ForType, s.finders)
	logger().Debug("sorted sheet",
		slog.String("sheet_id", sheet.ID),
		slog.String("actor_id", sheet.ActorID),
		slog.Int("sections", n),
	)
}

// parseRoot parses a markup fragment. A single top-level element is the
// panel root; anything else is wrapped in a div.
func parseRoot(markup string) (*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, apperror.NewBadRequest("invalid sheet markup")
	}

	var elements []*html.Node
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			elements = append(elements, n)
		}
	}
	switch {
	case len(elements) == 0:
		return nil, apperror.NewValidation("sheet markup has no elements")
	case len(elements) == 1:
		return elements[0], nil
	}

	wrapper := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		wrapper.AppendChild(n)
	}
	return wrapper, nil
}

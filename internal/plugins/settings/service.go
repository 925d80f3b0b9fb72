package settings

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/keyxmakerx/itemsorter/internal/apperror"
)

// SettingsService handles business logic for sort settings. It validates
// writes against each key's choice list, merges stored values with
// defaults, and notifies subscribers after every successful write.
type SettingsService interface {
	// Get returns the effective value of one setting.
	Get(ctx context.Context, key string) (string, error)

	// Set validates and persists a setting, then notifies subscribers.
	Set(ctx context.Context, key, value string) error

	// GetAll returns every known setting with its effective value.
	GetAll(ctx context.Context) ([]SettingValue, error)

	// Resolver returns a resolver over the current stored values.
	Resolver(ctx context.Context) (*Resolver, error)

	// Flags returns the boolean switches.
	Flags(ctx context.Context) (Flags, error)

	// Subscribe registers a callback run after each successful Set.
	Subscribe(fn func(ctx context.Context, ch Change))
}

// settingsService implements SettingsService.
type settingsService struct {
	repo SettingsRepository

	mu          sync.RWMutex
	subscribers []func(ctx context.Context, ch Change)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(repo SettingsRepository) SettingsService {
	return &settingsService{repo: repo}
}

// Get returns the stored value or the key's default.
func (s *settingsService) Get(ctx context.Context, key string) (string, error) {
	r, err := s.Resolver(ctx)
	if err != nil {
		return "", err
	}
	if _, ok := Lookup(key); !ok {
		return "", apperror.NewNotFound(fmt.Sprintf("setting %q not found", key))
	}
	return r.value(key), nil
}

// Set rejects unknown keys and values outside the key's choices.
func (s *settingsService) Set(ctx context.Context, key, value string) error {
	def, ok := Lookup(key)
	if !ok {
		return apperror.NewNotFound(fmt.Sprintf("setting %q not found", key))
	}
	if !slices.Contains(def.Choices, value) {
		return apperror.NewValidation(fmt.Sprintf("%q is not a valid choice for %s", value, key))
	}

	if err := s.repo.Set(ctx, key, value); err != nil {
		return err
	}

	slog.Info("sort setting changed",
		slog.String("module", "item-sorter"),
		slog.String("key", key),
		slog.String("value", value),
	)
	s.notify(ctx, Change{Key: key, Value: value})
	return nil
}

// GetAll lists every definition with its effective value.
func (s *settingsService) GetAll(ctx context.Context) ([]SettingValue, error) {
	r, err := s.Resolver(ctx)
	if err != nil {
		return nil, err
	}

	defs := Definitions()
	result := make([]SettingValue, 0, len(defs))
	for _, d := range defs {
		result = append(result, SettingValue{Definition: d, Value: r.value(d.Key)})
	}
	return result, nil
}

// Resolver snapshots the stored values.
func (s *settingsService) Resolver(ctx context.Context) (*Resolver, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return NewResolver(all), nil
}

// Flags reads the boolean switches.
func (s *settingsService) Flags(ctx context.Context) (Flags, error) {
	r, err := s.Resolver(ctx)
	if err != nil {
		return Flags{}, err
	}
	return r.Flags(), nil
}

// Subscribe registers fn for change notifications.
func (s *settingsService) Subscribe(fn func(ctx context.Context, ch Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// notify runs every subscriber in registration order.
func (s *settingsService) notify(ctx context.Context, ch Change) {
	s.mu.RLock()
	subs := slices.Clone(s.subscribers)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(ctx, ch)
	}
}

// --- Parsing Helpers ---

// parseBool parses a string to bool, returning the fallback on failure.
func parseBool(s string, fallback bool) bool {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return v
}

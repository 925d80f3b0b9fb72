// Package sorter is the durable ordering engine. It recomputes every item's
// persisted sort value per actor (category, name, optional requirements)
// and writes back only what changed. Recomputation is debounced per actor;
// its own writes carry a marker so they do not trigger another run. While
// active it also intercepts foreign sort-only updates and substitutes the
// computed value, vetoing the update when nothing would change.
package sorter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/keyxmakerx/itemsorter/internal/apperror"
	"github.com/keyxmakerx/itemsorter/internal/plugins/items"
	"github.com/keyxmakerx/itemsorter/internal/plugins/settings"
	"github.com/keyxmakerx/itemsorter/internal/scheduler"
	"github.com/keyxmakerx/itemsorter/internal/sorting"
)

// logger returns the package logger tagged with the engine's module label.
func logger() *slog.Logger {
	return slog.Default().With(slog.String("module", "item-sorter"))
}

// ItemStore is the subset of the item service the engine reads and writes.
type ItemStore interface {
	List(ctx context.Context, actorID string) (*items.Collection, error)
	Update(ctx context.Context, actorID string, changes []items.Changes, opts items.UpdateOptions) (*items.UpdateResult, error)
}

// FlagSource provides the boolean switches.
type FlagSource interface {
	Flags(ctx context.Context) (settings.Flags, error)
}

// OpenSheets enumerates currently open panels.
type OpenSheets interface {
	ForEachOpenSheet(fn func(actorID string, editable bool))
}

// Options configures the engine.
type Options struct {
	// Stride spaces consecutive ranks. Zero means sorting.DefaultStride.
	Stride int

	// LocalUserID is the user whose own item changes trigger recomputation.
	// Empty accepts every user.
	LocalUserID string
}

// Service is the durable ordering engine.
type Service struct {
	store  ItemStore
	flags  FlagSource
	marker Marker
	sched  *scheduler.Scheduler
	sheets OpenSheets
	opts   Options
}

// NewService creates the engine. sheets may be nil until the panel registry
// is wired with SetOpenSheets.
func NewService(store ItemStore, flags FlagSource, marker Marker, sched *scheduler.Scheduler, opts Options) *Service {
	return &Service{
		store:  store,
		flags:  flags,
		marker: marker,
		sched:  sched,
		opts:   opts,
	}
}

// SetOpenSheets wires the panel registry used by settings-change passes.
func (s *Service) SetOpenSheets(sheets OpenSheets) {
	s.sheets = sheets
}

// flagsOrOff reads the switches. A read failure is logged and reads as
// every switch off.
func (s *Service) flagsOrOff(ctx context.Context) settings.Flags {
	f, err := s.flags.Flags(ctx)
	if err != nil {
		logger().Error("reading sort flags", slog.Any("error", err))
		return settings.Flags{}
	}
	return f
}

// calculate computes the target sort of every item of the actor.
func (s *Service) calculate(ctx context.Context, coll *items.Collection) map[string]sorting.ItemSort {
	return sorting.CalculateItemSorts(coll.All(), sorting.AssignOptions{
		Stride:             s.opts.Stride,
		FeatsByRequirement: s.flagsOrOff(ctx).FeatsByRequirement,
	})
}

// SortActor marks the actor sorted, recomputes its items and writes back
// the values that changed in one batch tagged as a sorter update. The
// marker stays set when the write fails.
func (s *Service) SortActor(ctx context.Context, actorID string) error {
	if err := s.marker.MarkSorted(ctx, actorID); err != nil {
		logger().Error("marking actor sorted", slog.String("actor_id", actorID), slog.Any("error", err))
	}

	coll, err := s.store.List(ctx, actorID)
	if err != nil {
		logger().Debug("not sorting actor - items unavailable",
			slog.String("actor_id", actorID),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: actor %s: %w", apperror.ErrMissingContext, actorID, err)
	}

	pending := sorting.PendingUpdates(coll.All(), s.calculate(ctx, coll))
	if len(pending) == 0 {
		return nil
	}

	changes := make([]items.Changes, 0, len(pending))
	for _, p := range pending {
		sort := p.Sort
		changes = append(changes, items.Changes{ID: p.ID, Sort: &sort})
	}
	logger().Debug("updating sort for items",
		slog.String("actor_id", actorID),
		slog.Int("count", len(changes)),
	)

	if _, err := s.store.Update(ctx, actorID, changes, items.UpdateOptions{SorterUpdate: true}); err != nil {
		logger().Error("error updating items for actor",
			slog.String("actor_id", actorID),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: actor %s: %w", apperror.ErrWriteBack, actorID, err)
	}
	return nil
}

// ScheduleSort debounces a SortActor run for the actor.
func (s *Service) ScheduleSort(actorID string) {
	if actorID == "" {
		return
	}
	s.sched.Schedule(actorID, func(ctx context.Context) {
		_ = s.SortActor(ctx, actorID)
	})
}

// OnItemChanged reacts to committed item events. Only changes made by the
// local user schedule recomputation, and the engine's own writes are
// ignored.
func (s *Service) OnItemChanged(ctx context.Context, ev items.Event) {
	if ev.Options.SorterUpdate {
		return
	}
	if !s.flagsOrOff(ctx).LegacySorter {
		return
	}
	if s.opts.LocalUserID != "" && ev.Options.UserID != s.opts.LocalUserID {
		return
	}
	s.ScheduleSort(ev.ActorID)
}

// OnSheetRendered schedules assignment the first time an editable panel for
// the actor is rendered.
func (s *Service) OnSheetRendered(ctx context.Context, actorID string, editable bool) {
	if !s.flagsOrOff(ctx).LegacySorter {
		return
	}
	s.sortIfUnsorted(ctx, actorID, editable)
}

func (s *Service) sortIfUnsorted(ctx context.Context, actorID string, editable bool) {
	if !editable || actorID == "" {
		return
	}
	sorted, err := s.marker.HasBeenSorted(ctx, actorID)
	if err != nil {
		logger().Error("reading sorted marker", slog.String("actor_id", actorID), slog.Any("error", err))
	}
	if !sorted {
		s.ScheduleSort(actorID)
	}
}

// OnSettingsChanged re-runs the open-panel pass when a switch that affects
// the durable order changes. A changed ordering rule invalidates earlier
// runs, so every editable open actor is scheduled, sorted or not.
func (s *Service) OnSettingsChanged(ctx context.Context, ch settings.Change) {
	if ch.Key != settings.KeyLegacySorter && ch.Key != settings.KeyFeatsByRequirement {
		return
	}
	if s.sheets == nil || !s.flagsOrOff(ctx).LegacySorter {
		return
	}
	s.sheets.ForEachOpenSheet(func(actorID string, editable bool) {
		if editable {
			s.ScheduleSort(actorID)
		}
	})
}

// InterceptUpdate is the pre-update hook. A foreign change to sort is
// replaced by the computed value; a sort-only change that would not move
// the item is vetoed. Changes without an item id pass through unmodified.
func (s *Service) InterceptUpdate(ctx context.Context, actorID string, current *items.Item, changes *items.Changes, opts items.UpdateOptions) bool {
	if changes.Sort == nil {
		return true
	}
	if !s.flagsOrOff(ctx).LegacySorter {
		return true
	}
	if changes.ID == "" {
		logger().Error("pre-update called with no item id",
			slog.String("actor_id", actorID),
			slog.Any("changes", changes),
			slog.Any("error", apperror.ErrMalformedMutation),
		)
		return true
	}

	if !opts.SorterUpdate {
		sorts, err := s.batchSorts(ctx, actorID)
		if err != nil {
			logger().Debug("not rewriting sort - items unavailable",
				slog.String("actor_id", actorID),
				slog.Any("error", err),
			)
		} else if computed, ok := sorts[changes.ID]; ok {
			sort := computed.Sort
			changes.Sort = &sort
		}
	}

	if current != nil && current.Sort == *changes.Sort && changes.OnlySort() {
		return false
	}
	return true
}

type batchSortsKey struct{ actorID string }

// batchSorts computes the actor's sorts once per update batch.
func (s *Service) batchSorts(ctx context.Context, actorID string) (map[string]sorting.ItemSort, error) {
	v, err := items.BatchFrom(ctx).Memo(batchSortsKey{actorID}, func() (any, error) {
		coll, err := s.store.List(ctx, actorID)
		if err != nil {
			return nil, err
		}
		return s.calculate(ctx, coll), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]sorting.ItemSort), nil
}

// Stop drops pending recomputations and waits for running ones.
func (s *Service) Stop() {
	s.sched.Stop()
}

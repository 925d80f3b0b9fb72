package items

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keyxmakerx/itemsorter/internal/apperror"
)

// ItemService handles business logic for actors and items. Every mutation
// goes through the hook bus so the ordering engines can observe, rewrite
// or veto it.
type ItemService interface {
	CreateActor(ctx context.Context, name string) (*Actor, error)
	GetActor(ctx context.Context, id string) (*Actor, error)

	// List returns the actor's items as an id-keyed collection.
	List(ctx context.Context, actorID string) (*Collection, error)
	Get(ctx context.Context, actorID, itemID string) (*Item, error)

	Create(ctx context.Context, actorID string, input CreateItemInput, opts UpdateOptions) (*Item, error)

	// Update applies a batch of changes to one actor's items. Pre-update
	// hooks run per change; vetoed changes are skipped and reported.
	Update(ctx context.Context, actorID string, changes []Changes, opts UpdateOptions) (*UpdateResult, error)

	Delete(ctx context.Context, actorID, itemID string, opts UpdateOptions) error

	// Hooks exposes the event bus for subscribers.
	Hooks() *Hooks
}

// itemService implements ItemService.
type itemService struct {
	repo  ItemRepository
	hooks *Hooks
	now   func() time.Time
}

// NewItemService creates a new item service with the given dependencies.
func NewItemService(repo ItemRepository, hooks *Hooks) ItemService {
	if hooks == nil {
		hooks = NewHooks()
	}
	return &itemService{
		repo:  repo,
		hooks: hooks,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Hooks returns the service's event bus.
func (s *itemService) Hooks() *Hooks {
	return s.hooks
}

// --- Actors ---

// CreateActor creates an empty actor.
func (s *itemService) CreateActor(ctx context.Context, name string) (*Actor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewValidation("actor name is required")
	}

	actor := &Actor{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateActor(ctx, actor); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating actor: %w", err))
	}
	return actor, nil
}

// GetActor retrieves an actor.
func (s *itemService) GetActor(ctx context.Context, id string) (*Actor, error) {
	return s.repo.FindActor(ctx, id)
}

// --- Items ---

// List loads the actor's items.
func (s *itemService) List(ctx context.Context, actorID string) (*Collection, error) {
	if _, err := s.repo.FindActor(ctx, actorID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByActor(ctx, actorID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing items: %w", err))
	}
	return NewCollection(list), nil
}

// Get retrieves one item and checks it belongs to the actor.
func (s *itemService) Get(ctx context.Context, actorID, itemID string) (*Item, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.ActorID != actorID {
		return nil, apperror.NewNotFound("item not found")
	}
	return item, nil
}

// Create adds an item to an actor and publishes EventCreated.
func (s *itemService) Create(ctx context.Context, actorID string, input CreateItemInput, opts UpdateOptions) (*Item, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Type == "" {
		input.Type = TypeBase
	}
	if msg := input.Validate(); msg != "" {
		return nil, apperror.NewValidation(msg)
	}
	if _, err := s.repo.FindActor(ctx, actorID); err != nil {
		return nil, err
	}

	now := s.now()
	item := &Item{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		Name:      input.Name,
		Type:      input.Type,
		Sort:      input.Sort,
		System:    input.System,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating item: %w", err))
	}

	s.hooks.publish(ctx, Event{Kind: EventCreated, ActorID: actorID, Item: *item, Options: opts})
	return item, nil
}

// Update runs the pre-update chain for each change, then writes the
// surviving changes in one transaction and publishes EventUpdated for each.
func (s *itemService) Update(ctx context.Context, actorID string, changes []Changes, opts UpdateOptions) (*UpdateResult, error) {
	coll, err := s.List(ctx, actorID)
	if err != nil {
		return nil, err
	}

	result := &UpdateResult{Updated: []Item{}, Vetoed: []string{}}
	var (
		pending []Item
		applied []*Changes
	)

	hookCtx := withBatch(ctx)
	for i := range changes {
		ch := &changes[i]
		current, _ := coll.Get(ch.ID)

		if !s.hooks.allowUpdate(hookCtx, actorID, current, ch, opts) {
			slog.Debug("item update vetoed",
				slog.String("actor_id", actorID),
				slog.String("item_id", ch.ID),
			)
			result.Vetoed = append(result.Vetoed, ch.ID)
			continue
		}

		if ch.ID == "" {
			return nil, apperror.NewValidation("item id is required")
		}
		if current == nil {
			return nil, apperror.NewNotFound("item not found")
		}
		if ch.Name != nil && strings.TrimSpace(*ch.Name) == "" {
			return nil, apperror.NewValidation("item name is required")
		}

		next := ch.Apply(*current)
		next.UpdatedAt = s.now()
		pending = append(pending, next)
		applied = append(applied, ch)
	}

	if len(pending) == 0 {
		return result, nil
	}

	if err := s.repo.UpdateMany(ctx, pending); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("updating items: %w", err))
	}

	for i, it := range pending {
		result.Updated = append(result.Updated, it)
		s.hooks.publish(ctx, Event{
			Kind:    EventUpdated,
			ActorID: actorID,
			Item:    it,
			Changes: applied[i],
			Options: opts,
		})
	}
	return result, nil
}

// Delete removes an item and publishes EventDeleted.
func (s *itemService) Delete(ctx context.Context, actorID, itemID string, opts UpdateOptions) error {
	item, err := s.Get(ctx, actorID, itemID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return err
	}

	s.hooks.publish(ctx, Event{Kind: EventDeleted, ActorID: actorID, Item: *item, Options: opts})
	return nil
}

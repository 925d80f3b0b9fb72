package items

import (
	"context"
	"sync"

	"github.com/keyxmakerx/itemsorter/internal/apperror"
)

// MemoryRepository is an ItemRepository held in process memory. It backs
// the engines' tests and single-process deployments without MariaDB.
type MemoryRepository struct {
	mu     sync.Mutex
	actors map[string]Actor
	items  []Item

	// FailUpdates makes UpdateMany return the given error.
	FailUpdates error
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{actors: make(map[string]Actor)}
}

func (r *MemoryRepository) CreateActor(_ context.Context, actor *Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actors[actor.ID] = *actor
	return nil
}

func (r *MemoryRepository) FindActor(_ context.Context, id string) (*Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actors[id]
	if !ok {
		return nil, apperror.NewNotFound("actor not found")
	}
	return &a, nil
}

func (r *MemoryRepository) Create(_ context.Context, item *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.actors[item.ActorID]; !ok {
		return apperror.NewNotFound("actor not found")
	}
	r.items = append(r.items, *item)
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, apperror.NewNotFound("item not found")
}

func (r *MemoryRepository) ListByActor(_ context.Context, actorID string) ([]Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []Item
	for _, it := range r.items {
		if it.ActorID == actorID {
			result = append(result, it)
		}
	}
	return result, nil
}

func (r *MemoryRepository) UpdateMany(_ context.Context, items []Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailUpdates != nil {
		return r.FailUpdates
	}
	for _, next := range items {
		for i := range r.items {
			if r.items[i].ID == next.ID {
				r.items[i] = next
			}
		}
	}
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.items {
		if it.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("item not found")
}

package items

import (
	"context"
	"sync"
)

// EventKind identifies what happened to an item.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// Event is published after an item mutation commits.
type Event struct {
	Kind    EventKind
	ActorID string
	Item    Item

	// Changes is set for EventUpdated.
	Changes *Changes

	Options UpdateOptions
}

// Listener reacts to committed item events. Listeners run synchronously on
// the mutating goroutine and must not block.
type Listener func(ctx context.Context, ev Event)

// PreUpdateHook runs before an update commits. It may rewrite changes in
// place. Returning false vetoes the update. current is nil when the change
// names no existing item.
type PreUpdateHook func(ctx context.Context, actorID string, current *Item, changes *Changes, opts UpdateOptions) bool

// Hooks is the item event bus.
type Hooks struct {
	mu        sync.RWMutex
	listeners []Listener
	preUpdate []PreUpdateHook
}

// NewHooks creates an empty event bus.
func NewHooks() *Hooks {
	return &Hooks{}
}

// Subscribe registers a listener for every committed event.
func (h *Hooks) Subscribe(l Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, l)
}

// OnPreUpdate registers an interception hook.
func (h *Hooks) OnPreUpdate(fn PreUpdateHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.preUpdate = append(h.preUpdate, fn)
}

// publish delivers ev to every listener.
func (h *Hooks) publish(ctx context.Context, ev Event) {
	h.mu.RLock()
	listeners := append([]Listener(nil), h.listeners...)
	h.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, ev)
	}
}

// allowUpdate runs the pre-update chain. The first veto stops the chain.
func (h *Hooks) allowUpdate(ctx context.Context, actorID string, current *Item, changes *Changes, opts UpdateOptions) bool {
	h.mu.RLock()
	hooks := append([]PreUpdateHook(nil), h.preUpdate...)
	h.mu.RUnlock()

	for _, fn := range hooks {
		if !fn(ctx, actorID, current, changes, opts) {
			return false
		}
	}
	return true
}

type batchKey struct{}

// Batch holds values shared by every pre-update hook call of one Update.
// Hooks use it to compute per-actor state once instead of once per change.
type Batch struct {
	mu     sync.Mutex
	values map[any]any
}

func withBatch(ctx context.Context) context.Context {
	return context.WithValue(ctx, batchKey{}, &Batch{values: make(map[any]any)})
}

// BatchFrom returns the batch attached by Update, or nil outside one.
func BatchFrom(ctx context.Context) *Batch {
	b, _ := ctx.Value(batchKey{}).(*Batch)
	return b
}

// Memo returns the value stored under key, calling fn to produce it on the
// first request. Errors are not cached. A nil batch always calls fn.
func (b *Batch) Memo(key any, fn func() (any, error)) (any, error) {
	if b == nil {
		return fn()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.values[key]; ok {
		return v, nil
	}
	v, err := fn()
	if err != nil {
		return nil, err
	}
	b.values[key] = v
	return v, nil
}

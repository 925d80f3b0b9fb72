// Package scheduler runs deferred work keyed by an id with debounce
// semantics: scheduling a key again within the window cancels the pending
// task and starts the window over. Different keys run independently.
package scheduler

import (
	"context"
	"sync"
	"time"
)

// Task is the deferred work. ctx is cancelled when the scheduler stops.
type Task func(ctx context.Context)

// pending is one scheduled, not yet started task.
type pending struct {
	timer *time.Timer
}

// Scheduler holds at most one pending task per key.
type Scheduler struct {
	window time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending map[string]*pending
	stopped bool
}

// New creates a scheduler that delays each task by window.
func New(window time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		window:  window,
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[string]*pending),
	}
}

// Schedule runs task after the window unless key is scheduled again first,
// in which case the earlier task is dropped. A task that has already started
// is not interrupted. Schedule is a no-op after Stop.
func (s *Scheduler) Schedule(key string, task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if prev, ok := s.pending[key]; ok {
		if prev.timer.Stop() {
			s.wg.Done()
		}
	}

	p := &pending{}
	s.wg.Add(1)
	p.timer = time.AfterFunc(s.window, func() { s.fire(key, p, task) })
	s.pending[key] = p
}

// fire runs task if p is still the current entry for key.
func (s *Scheduler) fire(key string, p *pending, task Task) {
	defer s.wg.Done()

	s.mu.Lock()
	if s.pending[key] != p {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.mu.Unlock()

	task(s.ctx)
}

// Pending reports whether key has a task waiting to run.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

// Stop drops every pending task, cancels the context of running tasks and
// waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for key, p := range s.pending {
		if p.timer.Stop() {
			s.wg.Done()
		}
		delete(s.pending, key)
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

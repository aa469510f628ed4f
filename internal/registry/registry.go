// Package registry maps owners to their active timers and persists the
// mapping as configuration-only snapshots.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/Reso1992/DmoTimer/internal/domain"
	"github.com/Reso1992/DmoTimer/internal/store"
)

// ErrNoTimer is returned by PopLast when the owner has nothing running.
var ErrNoTimer = errors.New("no timer running")

// Registry holds each owner's timers in insertion order. The last added timer
// is the first one stopped.
type Registry struct {
	repo  store.Repo
	clock clockwork.Clock
	log   *zap.Logger

	mu     sync.Mutex
	timers map[domain.OwnerID][]*domain.Timer
}

func New(repo store.Repo, clock clockwork.Clock, log *zap.Logger) *Registry {
	return &Registry{
		repo:   repo,
		clock:  clock,
		log:    log,
		timers: make(map[domain.OwnerID][]*domain.Timer),
	}
}

// Add appends t for owner and persists the registry.
func (r *Registry) Add(ctx context.Context, owner domain.OwnerID, t *domain.Timer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers[owner] = append(r.timers[owner], t)
	return r.persistLocked(ctx)
}

// Remove drops t from owner's list if present. The registry is persisted
// whether or not anything was removed.
func (r *Registry) Remove(ctx context.Context, owner domain.OwnerID, t *domain.Timer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.timers[owner]
	for i, cur := range list {
		if cur == t {
			r.timers[owner] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	r.dropEmptyLocked(owner)
	return r.persistLocked(ctx)
}

// PopLast removes and returns owner's most recently added timer.
// It returns ErrNoTimer, without persisting, when the owner has none.
func (r *Registry) PopLast(ctx context.Context, owner domain.OwnerID) (*domain.Timer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.timers[owner]
	if len(list) == 0 {
		return nil, ErrNoTimer
	}
	t := list[len(list)-1]
	list[len(list)-1] = nil
	r.timers[owner] = list[:len(list)-1]
	r.dropEmptyLocked(owner)
	return t, r.persistLocked(ctx)
}

// ListActive returns a copy of owner's timers in insertion order.
func (r *Registry) ListActive(owner domain.OwnerID) []*domain.Timer {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.timers[owner]
	out := make([]*domain.Timer, len(list))
	copy(out, list)
	return out
}

// Count is the number of timers across all owners.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, list := range r.timers {
		n += len(list)
	}
	return n
}

// Persist writes the whole registry to the backing store.
func (r *Registry) Persist(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.persistLocked(ctx)
}

// Restore replaces the registry with the stored snapshot. Restored timers
// are dormant: configuration only, started at the restore instant, never ticked.
func (r *Registry) Restore(ctx context.Context) error {
	snap, err := r.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore timers: %w", err)
	}
	now := r.clock.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers = make(map[domain.OwnerID][]*domain.Timer, len(snap))
	n := 0
	for owner, entries := range snap {
		if len(entries) == 0 {
			continue
		}
		list := make([]*domain.Timer, 0, len(entries))
		for _, e := range entries {
			list = append(list, domain.RestoreTimer(owner, e.DurationHours, e.ImageRef, e.CustomMessage, now))
		}
		r.timers[owner] = list
		n += len(list)
	}
	r.log.Info("timers restored", zap.Int("owners", len(r.timers)), zap.Int("timers", n))
	return nil
}

// persistLocked writes synchronously while holding mu, so snapshots reach the
// store in mutation order.
func (r *Registry) persistLocked(ctx context.Context) error {
	snap := make(store.Snapshot, len(r.timers))
	for owner, list := range r.timers {
		entries := make([]store.Entry, 0, len(list))
		for _, t := range list {
			entries = append(entries, store.Entry{
				DurationHours: t.DurationHours,
				ImageRef:      t.ImageRef,
				CustomMessage: t.CustomMessage,
			})
		}
		snap[owner] = entries
	}
	if err := r.repo.Save(ctx, snap); err != nil {
		r.log.Error("persist timers failed", zap.Error(err))
		return err
	}
	return nil
}

func (r *Registry) dropEmptyLocked(owner domain.OwnerID) {
	if len(r.timers[owner]) == 0 {
		delete(r.timers, owner)
	}
}

package builder

import (
	"context"
	"errors"
	"sync"

	"github.com/salesdesk/salesdesk/internal/cart"
	"github.com/salesdesk/salesdesk/internal/catalog"
)

// Sessions applies engine operations to stored drafts. Mutations on the same
// key are serialized and always start from the latest saved draft.
type Sessions struct {
	store Store

	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewSessions constructs Sessions over store.
func NewSessions(store Store) *Sessions {
	return &Sessions{store: store, locks: make(map[string]*keyLock)}
}

// View restores the engine for key without modifying it. A missing draft
// yields an empty engine.
func (s *Sessions) View(ctx context.Context, key string, c *catalog.Catalog) (*cart.Engine, error) {
	draft, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return cart.Restore(c, draft), nil
}

// Update loads the draft for key, applies fn and saves the result.
func (s *Sessions) Update(ctx context.Context, key string, c *catalog.Catalog, fn func(*cart.Engine)) (*cart.Engine, error) {
	unlock := s.lock(key)
	defer unlock()

	draft, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	engine := cart.Restore(c, draft)
	fn(engine)
	if err := s.store.Save(ctx, key, engine.Draft()); err != nil {
		return nil, err
	}
	return engine, nil
}

// Discard removes the draft for key.
func (s *Sessions) Discard(ctx context.Context, key string) error {
	unlock := s.lock(key)
	defer unlock()
	return s.store.Delete(ctx, key)
}

func (s *Sessions) load(ctx context.Context, key string) (cart.Draft, error) {
	draft, err := s.store.Load(ctx, key)
	if errors.Is(err, ErrCartNotFound) {
		return cart.Draft{}, nil
	}
	return draft, err
}

func (s *Sessions) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &keyLock{}
		s.locks[key] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}

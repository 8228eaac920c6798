package treestore

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. A single mutex serializes mutations,
// so transaction callbacks are never retried; callers still must keep them
// side-effect free to stay portable across backends. Values round-trip
// through JSON so readers see the same shapes the remote backends produce.
//
// Used by tests and as the dev-mode backend.
type MemoryStore struct {
	mu        sync.Mutex
	root      map[string]any
	listeners *listenerRegistry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		root:      make(map[string]any),
		listeners: newListenerRegistry(),
	}
}

func (s *MemoryStore) Read(_ context.Context, path string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return roundTrip(getIn(s.root, splitPath(path)))
}

func (s *MemoryStore) Write(_ context.Context, path string, value any) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return ErrBadPath
	}
	clean, err := roundTrip(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.setLocked(parts, clean)
	s.mu.Unlock()

	s.listeners.notify(s, path)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, path string, fields map[string]any) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return ErrBadPath
	}
	clean, err := roundTrip(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	target, _ := getIn(s.root, parts).(map[string]any)
	if target == nil {
		target = make(map[string]any)
	}
	for k, v := range clean.(map[string]any) {
		if v == nil {
			delete(target, k)
			continue
		}
		target[k] = v
	}
	s.setLocked(parts, target)
	s.mu.Unlock()

	s.listeners.notify(s, path)
	return nil
}

func (s *MemoryStore) Transact(_ context.Context, path string, fn TxnFunc) (any, error) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, ErrBadPath
	}

	s.mu.Lock()
	current, err := roundTrip(getIn(s.root, parts))
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	next, err := fn(current)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	clean, err := roundTrip(next)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.setLocked(parts, clean)
	s.mu.Unlock()

	s.listeners.notify(s, path)
	return clean, nil
}

func (s *MemoryStore) Subscribe(path string, fn func(value any)) (func(), error) {
	unsubscribe := s.listeners.add(path, fn)
	current, err := s.Read(context.Background(), path)
	if err != nil {
		unsubscribe()
		return nil, err
	}
	fn(current)
	return unsubscribe, nil
}

func (s *MemoryStore) Remove(_ context.Context, path string) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return ErrBadPath
	}
	s.mu.Lock()
	s.setLocked(parts, nil)
	s.mu.Unlock()

	s.listeners.notify(s, path)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) setLocked(parts []string, value any) {
	next := setIn(s.root, parts, value)
	if m, ok := next.(map[string]any); ok {
		s.root = m
	} else {
		s.root = make(map[string]any)
	}
}

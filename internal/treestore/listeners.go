package treestore

import (
	"context"
	"sync"
)

// listenerRegistry fans tree changes out to subscribers. A listener on a
// path is affected by any change at that path, below it, or above it.
type listenerRegistry struct {
	mu   sync.RWMutex
	next int
	subs map[int]*listener
}

type listener struct {
	path string
	fn   func(value any)
}

func newListenerRegistry() *listenerRegistry {
	return &listenerRegistry{subs: make(map[int]*listener)}
}

func (r *listenerRegistry) add(path string, fn func(value any)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.next
	r.next++
	r.subs[id] = &listener{path: path, fn: fn}

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.subs, id)
		})
	}
}

// notify re-reads each affected listener's path and delivers the snapshot.
// Reads happen through the owning store so every backend shares this code.
func (r *listenerRegistry) notify(store Store, changedPath string) {
	changed := splitPath(changedPath)

	r.mu.RLock()
	var affected []*listener
	for _, l := range r.subs {
		if pathsRelated(splitPath(l.path), changed) {
			affected = append(affected, l)
		}
	}
	r.mu.RUnlock()

	for _, l := range affected {
		value, err := store.Read(context.Background(), l.path)
		if err != nil {
			continue
		}
		l.fn(value)
	}
}

// pathsRelated reports whether one path is an ancestor of (or equal to) the
// other, segment-wise.
func pathsRelated(a, b []string) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

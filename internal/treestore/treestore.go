// Package treestore provides an abstract transactional key-value tree with
// path-addressed reads, subscriptions, and atomic read-modify-write
// transactions on a subtree. Backends (in-memory, postgres, redis) all
// deliver JSON shapes: map[string]any, []any, float64, string, bool, nil.
package treestore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// ErrBadPath is returned for empty paths or operations a backend cannot
// address at the given depth.
var ErrBadPath = errors.New("treestore: invalid path")

// TxnFunc maps the current value of a subtree to its next value. It must be
// free of side effects: the store re-invokes it with a fresher read when a
// concurrent write is detected before commit. Returning a nil next value
// deletes the subtree.
type TxnFunc func(current any) (any, error)

// Store is the transactional tree store consumed by every service.
// Both backends and the in-memory test double implement this interface.
type Store interface {
	// Read returns the value at path, or (nil, nil) when absent.
	Read(ctx context.Context, path string) (any, error)
	// Write unconditionally overwrites the subtree at path.
	Write(ctx context.Context, path string, value any) error
	// Update shallow-merges the named fields into the object at path.
	Update(ctx context.Context, path string, fields map[string]any) error
	// Transact atomically applies fn to the subtree at path and returns the
	// committed value.
	Transact(ctx context.Context, path string, fn TxnFunc) (any, error)
	// Subscribe registers fn for the subtree at path. It fires once
	// immediately with the current value (nil when absent), then on every
	// subsequent change, until the returned unsubscribe is called.
	Subscribe(path string, fn func(value any)) (func(), error)
	// Remove deletes the subtree at path.
	Remove(ctx context.Context, path string) error
	// Close releases the backend connection.
	Close() error
}

// Join builds a slash-separated path from segments.
func Join(parts ...string) string {
	return strings.Join(parts, "/")
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// roundTrip forces a value through JSON so every backend hands callers the
// same shapes regardless of what was written.
func roundTrip(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// getIn descends into a JSON tree. Missing segments yield nil.
func getIn(root any, parts []string) any {
	cur := root
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[p]
	}
	return cur
}

// setIn replaces the value at parts inside root, creating intermediate
// objects as needed, and returns the new root. A nil value deletes the node;
// empty containers left behind are pruned.
func setIn(root any, parts []string, value any) any {
	if len(parts) == 0 {
		return value
	}
	m, ok := root.(map[string]any)
	if !ok {
		m = make(map[string]any)
	}
	child := setIn(m[parts[0]], parts[1:], value)
	if child == nil {
		delete(m, parts[0])
	} else {
		m[parts[0]] = child
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

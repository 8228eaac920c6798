package treestore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStoreWriteRead(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Write(ctx, "rooms/AB12C", map[string]any{"name": "test", "createdAt": 42})
	assert.NoError(t, err)

	value, err := store.Read(ctx, "rooms/AB12C")
	assert.NoError(t, err)

	m, ok := value.(map[string]any)
	assert.True(t, ok, "expected a JSON object")
	assert.Equal(t, "test", m["name"])
	// numbers come back as float64, same as any remote backend
	assert.Equal(t, float64(42), m["createdAt"])

	nested, err := store.Read(ctx, "rooms/AB12C/name")
	assert.NoError(t, err)
	assert.Equal(t, "test", nested)
}

func TestMemoryStoreReadAbsent(t *testing.T) {
	store := NewMemoryStore()

	value, err := store.Read(context.Background(), "rooms/NOPE")
	assert.NoError(t, err)
	assert.Nil(t, value)
}

func TestMemoryStoreRejectsEmptyPath(t *testing.T) {
	store := NewMemoryStore()

	err := store.Write(context.Background(), "", "x")
	assert.ErrorIs(t, err, ErrBadPath)
}

func TestMemoryStoreUpdateMergesFields(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Write(ctx, "users/u1", map[string]any{"alias": "ann", "isBanned": false})
	err := store.Update(ctx, "users/u1", map[string]any{"isBanned": true, "nickname": "Annie"})
	assert.NoError(t, err)

	value, _ := store.Read(ctx, "users/u1")
	m := value.(map[string]any)
	assert.Equal(t, "ann", m["alias"])
	assert.Equal(t, true, m["isBanned"])
	assert.Equal(t, "Annie", m["nickname"])
}

func TestMemoryStoreTransactSerializesWriters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Transact(ctx, "counters/hits", func(current any) (any, error) {
				n, _ := current.(float64)
				return n + 1, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	value, _ := store.Read(ctx, "counters/hits")
	assert.Equal(t, float64(writers), value, "no increment may be lost")
}

func TestMemoryStoreTransactDeletesOnNil(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Write(ctx, "rooms/AB12C", map[string]any{"name": "test"})
	_, err := store.Transact(ctx, "rooms/AB12C", func(any) (any, error) {
		return nil, nil
	})
	assert.NoError(t, err)

	value, _ := store.Read(ctx, "rooms/AB12C")
	assert.Nil(t, value)
}

func TestMemoryStoreSubscribe(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Write(ctx, "rooms/AB12C", map[string]any{"name": "first"})

	var deliveries []any
	unsubscribe, err := store.Subscribe("rooms/AB12C", func(value any) {
		deliveries = append(deliveries, value)
	})
	assert.NoError(t, err)
	assert.Len(t, deliveries, 1, "must fire once immediately")

	// a write below the subscribed path re-delivers the whole subtree
	store.Write(ctx, "rooms/AB12C/name", "second")
	assert.Len(t, deliveries, 2)
	assert.Equal(t, "second", deliveries[1].(map[string]any)["name"])

	store.Remove(ctx, "rooms/AB12C")
	assert.Len(t, deliveries, 3)
	assert.Nil(t, deliveries[2], "deletion delivers an absent signal")

	unsubscribe()
	store.Write(ctx, "rooms/AB12C", map[string]any{"name": "third"})
	assert.Len(t, deliveries, 3, "no deliveries after unsubscribe")
}

func TestMemoryStoreSubscribeUnrelatedPath(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	calls := 0
	unsubscribe, _ := store.Subscribe("rooms/AB12C", func(any) { calls++ })
	defer unsubscribe()

	store.Write(ctx, "rooms/ZZ99Z", map[string]any{"name": "other"})
	assert.Equal(t, 1, calls, "only the immediate fire, not the unrelated write")
}

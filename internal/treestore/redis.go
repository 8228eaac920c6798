package treestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "tree:"

	// maxTxnRetries bounds optimistic retries when concurrent writers keep
	// invalidating the watched key.
	maxTxnRetries = 25
)

// RedisStore persists top-level documents as JSON strings. Transact uses
// WATCH/MULTI optimistic transactions: the callback is re-invoked with a
// fresher read whenever a concurrent write lands before commit, which is
// exactly the retry-on-conflict contract the services rely on.
type RedisStore struct {
	client    *redis.Client
	listeners *listenerRegistry
}

// NewRedisStore connects and pings the server.
func NewRedisStore(addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client, listeners: newListenerRegistry()}, nil
}

func (s *RedisStore) Read(ctx context.Context, path string) (any, error) {
	parts := splitPath(path)
	switch len(parts) {
	case 0:
		return nil, ErrBadPath
	case 1:
		return s.readCollection(ctx, parts[0])
	default:
		doc, err := s.readDoc(ctx, redisKeyPrefix+docKey(parts))
		if err != nil {
			return nil, err
		}
		return getIn(doc, parts[2:]), nil
	}
}

func (s *RedisStore) Write(ctx context.Context, path string, value any) error {
	parts := splitPath(path)
	switch len(parts) {
	case 0:
		return ErrBadPath
	case 1:
		clean, err := roundTrip(value)
		if err != nil {
			return err
		}
		if err := s.writeCollection(ctx, parts[0], clean); err != nil {
			return err
		}
		s.listeners.notify(s, path)
		return nil
	default:
		_, err := s.Transact(ctx, path, func(any) (any, error) {
			return value, nil
		})
		return err
	}
}

func (s *RedisStore) Update(ctx context.Context, path string, fields map[string]any) error {
	if len(splitPath(path)) < 2 {
		return ErrBadPath
	}
	_, err := s.Transact(ctx, path, func(current any) (any, error) {
		target, _ := current.(map[string]any)
		if target == nil {
			target = make(map[string]any)
		}
		for k, v := range fields {
			if v == nil {
				delete(target, k)
				continue
			}
			target[k] = v
		}
		return target, nil
	})
	return err
}

func (s *RedisStore) Transact(ctx context.Context, path string, fn TxnFunc) (any, error) {
	parts := splitPath(path)
	if len(parts) < 2 {
		return nil, ErrBadPath
	}
	key := redisKeyPrefix + docKey(parts)
	rest := parts[2:]

	var committed any
	txf := func(tx *redis.Tx) error {
		var doc any
		raw, err := tx.Get(ctx, key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			// new document
		case err != nil:
			return err
		default:
			if err := json.Unmarshal([]byte(raw), &doc); err != nil {
				return err
			}
		}

		next, err := fn(getIn(doc, rest))
		if err != nil {
			return err
		}
		clean, err := roundTrip(next)
		if err != nil {
			return err
		}
		committed = clean
		newDoc := setIn(doc, rest, clean)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if newDoc == nil {
				pipe.Del(ctx, key)
				return nil
			}
			body, err := json.Marshal(newDoc)
			if err != nil {
				return err
			}
			pipe.Set(ctx, key, body, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxnRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			s.listeners.notify(s, path)
			return committed, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("transaction on %s: too many conflicting writes", path)
}

func (s *RedisStore) Subscribe(path string, fn func(value any)) (func(), error) {
	unsubscribe := s.listeners.add(path, fn)
	current, err := s.Read(context.Background(), path)
	if err != nil {
		unsubscribe()
		return nil, err
	}
	fn(current)
	return unsubscribe, nil
}

func (s *RedisStore) Remove(ctx context.Context, path string) error {
	parts := splitPath(path)
	switch len(parts) {
	case 0:
		return ErrBadPath
	case 1:
		keys, err := s.collectionKeys(ctx, parts[0])
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		s.listeners.notify(s, path)
		return nil
	default:
		_, err := s.Transact(ctx, path, func(any) (any, error) {
			return nil, nil
		})
		return err
	}
}

func (s *RedisStore) Close() error { return s.client.Close() }

func (s *RedisStore) readDoc(ctx context.Context, key string) (any, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *RedisStore) readCollection(ctx context.Context, root string) (any, error) {
	keys, err := s.collectionKeys(ctx, root)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		doc, err := s.readDoc(ctx, key)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			continue
		}
		out[strings.TrimPrefix(key, redisKeyPrefix+root+"/")] = doc
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func (s *RedisStore) writeCollection(ctx context.Context, root string, value any) error {
	children, ok := value.(map[string]any)
	if value != nil && !ok {
		return ErrBadPath
	}
	existing, err := s.collectionKeys(ctx, root)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(existing) > 0 {
			pipe.Del(ctx, existing...)
		}
		for k, v := range children {
			body, err := json.Marshal(v)
			if err != nil {
				return err
			}
			pipe.Set(ctx, redisKeyPrefix+root+"/"+k, body, 0)
		}
		return nil
	})
	return err
}

func (s *RedisStore) collectionKeys(ctx context.Context, root string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+root+"/*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

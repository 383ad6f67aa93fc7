// Package redis implements the document store on a shared redis instance.
// Documents live in one hash per collection; every mutation publishes a
// change notification, and subscribers re-read the full collection on each
// notification so a snapshot always reflects the complete remote state.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/avelasco-dev/inventario/internal/common"
	"github.com/avelasco-dev/inventario/internal/logging"
	"github.com/avelasco-dev/inventario/internal/store"
)

const keyPrefix = "inventario:"

func hashKey(collection string) string {
	return keyPrefix + collection
}

func changeChannel(collection string) string {
	return hashKey(collection) + ":changes"
}

type Store struct {
	client *redis.Client
	log    logging.Logger
}

// New connects to redis and verifies the connection with a ping, retrying
// with a fibonacci backoff so a store that is still starting up does not
// fail the client immediately.
func New(ctx context.Context, addr, password string, db int, log logging.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(500*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping error: %w", err)
	}

	return &Store{client: client, log: log.With("module", "redisstore")}, nil
}

func (s *Store) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	data, err := store.EncodeFields(fields)
	if err != nil {
		return "", fmt.Errorf("encode error: %w", err)
	}

	id := uuid.NewString()
	if err := s.client.HSet(ctx, hashKey(collection), id, data).Err(); err != nil {
		return "", fmt.Errorf("redis hset error: %w", err)
	}
	s.publish(ctx, collection, id)
	return id, nil
}

func (s *Store) Update(ctx context.Context, collection string, id string, patch map[string]any) error {
	raw, err := s.client.HGet(ctx, hashKey(collection), id).Result()
	if err == redis.Nil {
		return common.ErrorNotFound
	}
	if err != nil {
		return fmt.Errorf("redis hget error: %w", err)
	}

	fields, err := store.DecodeFields([]byte(raw))
	if err != nil {
		return fmt.Errorf("decode error: %w", err)
	}
	encodedPatch, err := store.EncodeFields(patch)
	if err != nil {
		return fmt.Errorf("encode error: %w", err)
	}
	patchFields, err := store.DecodeFields(encodedPatch)
	if err != nil {
		return fmt.Errorf("decode error: %w", err)
	}
	for k, v := range patchFields {
		fields[k] = v
	}

	data, err := store.EncodeFields(fields)
	if err != nil {
		return fmt.Errorf("encode error: %w", err)
	}
	if err := s.client.HSet(ctx, hashKey(collection), id, data).Err(); err != nil {
		return fmt.Errorf("redis hset error: %w", err)
	}
	s.publish(ctx, collection, id)
	return nil
}

func (s *Store) Delete(ctx context.Context, collection string, id string) error {
	n, err := s.client.HDel(ctx, hashKey(collection), id).Result()
	if err != nil {
		return fmt.Errorf("redis hdel error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	s.publish(ctx, collection, id)
	return nil
}

func (s *Store) Get(ctx context.Context, collection string, id string) (store.Document, error) {
	raw, err := s.client.HGet(ctx, hashKey(collection), id).Result()
	if err == redis.Nil {
		return store.Document{}, common.ErrorNotFound
	}
	if err != nil {
		return store.Document{}, fmt.Errorf("redis hget error: %w", err)
	}

	fields, err := store.DecodeFields([]byte(raw))
	if err != nil {
		return store.Document{}, fmt.Errorf("decode error: %w", err)
	}
	return store.Document{ID: id, Fields: fields}, nil
}

// Subscribe opens a pubsub subscription on the collection's change channel
// and emits a full snapshot for the current state plus one per notification.
func (s *Store) Subscribe(ctx context.Context, collection string) (store.Subscription, error) {
	ps := s.client.Subscribe(ctx, changeChannel(collection))
	// Wait for the subscription confirmation so no change published after
	// the initial read is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe error: %w", err)
	}

	sub := newSubscription(s, collection, ps)
	go sub.run(ctx)
	return sub, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) publish(ctx context.Context, collection, id string) {
	if err := s.client.Publish(ctx, changeChannel(collection), id).Err(); err != nil {
		s.log.Warn(ctx, "change notification failed", "collection", collection, "error", err)
	}
}

func (s *Store) readSnapshot(ctx context.Context, collection string) (store.Snapshot, error) {
	vals, err := s.client.HGetAll(ctx, hashKey(collection)).Result()
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("redis hgetall error: %w", err)
	}

	docs := make([]store.Document, 0, len(vals))
	for id, raw := range vals {
		fields, err := store.DecodeFields([]byte(raw))
		if err != nil {
			return store.Snapshot{}, fmt.Errorf("decode error: %w", err)
		}
		docs = append(docs, store.Document{ID: id, Fields: fields})
	}
	return store.Snapshot{Docs: docs}, nil
}

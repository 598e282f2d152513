package meter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "meter:subscription:"

	// redisUpdateRetries bounds the optimistic retry loop. Contention on a
	// single subject is low (one subscriber, few concurrent callers), so a
	// handful of retries is enough in practice.
	redisUpdateRetries = 16
)

// redisStore persists subscriptions as JSON values in Redis. Update uses
// WATCH/MULTI optimistic transactions: the write aborts and retries when
// another caller commits the same key first, which preserves the
// no-lost-updates guarantee without server-side locking.
type redisStore struct {
	client *redis.Client
}

// NewRedisStore returns a Store backed by the given Redis client.
// Panics on a nil client to fail fast during initialization.
func NewRedisStore(client *redis.Client) Store {
	if client == nil {
		panic("meter: redis client is required")
	}
	return &redisStore{client: client}
}

func redisKey(subjectID uuid.UUID) string {
	return redisKeyPrefix + subjectID.String()
}

func (s *redisStore) Get(ctx context.Context, subjectID uuid.UUID) (*Subscription, error) {
	payload, err := s.client.Get(ctx, redisKey(subjectID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("meter: get subscription: %w", err)
	}
	return decodeSubscription(payload)
}

func (s *redisStore) Create(ctx context.Context, sub *Subscription) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("meter: encode subscription: %w", err)
	}

	ok, err := s.client.SetNX(ctx, redisKey(sub.SubjectID), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("meter: create subscription: %w", err)
	}
	if !ok {
		return ErrSubscriptionExists
	}
	return nil
}

func (s *redisStore) Update(ctx context.Context, subjectID uuid.UUID, fn UpdateFunc) (*Subscription, error) {
	key := redisKey(subjectID)

	var updated *Subscription
	attempt := func(tx *redis.Tx) error {
		payload, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrSubscriptionNotFound
			}
			return fmt.Errorf("meter: load for update: %w", err)
		}

		sub, err := decodeSubscription(payload)
		if err != nil {
			return err
		}

		if err := fn(sub); err != nil {
			return err
		}

		next, err := json.Marshal(sub)
		if err != nil {
			return fmt.Errorf("meter: encode subscription: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		if err == nil {
			updated = sub
		}
		return err
	}

	for range redisUpdateRetries {
		err := s.client.Watch(ctx, attempt, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue // another caller committed first, retry on fresh state
		}
		return nil, err
	}

	return nil, ErrUpdateConflict
}

func decodeSubscription(payload []byte) (*Subscription, error) {
	var sub Subscription
	if err := json.Unmarshal(payload, &sub); err != nil {
		return nil, fmt.Errorf("meter: decode subscription: %w", err)
	}
	return &sub, nil
}

package meter_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/meterkit/pkg/meter"
)

func newTestSubscription(subjectID uuid.UUID) *meter.Subscription {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return &meter.Subscription{
		ID:             uuid.New(),
		SubjectID:      subjectID,
		Tier:           "pro",
		Status:         meter.StatusActive,
		UnitsConsumed:  0,
		LastResetAt:    now,
		LastVerifiedAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestMemoryStore_GetTaxonomy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := meter.NewMemoryStore()

	t.Run("unknown subject", func(t *testing.T) {
		t.Parallel()
		_, err := store.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, meter.ErrSubscriptionNotFound)
	})

	t.Run("tracked subject without subscription", func(t *testing.T) {
		t.Parallel()
		subjectID := uuid.New()
		store.TrackSubject(subjectID)
		_, err := store.Get(ctx, subjectID)
		assert.ErrorIs(t, err, meter.ErrNoActiveSubscription)
	})
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := meter.NewMemoryStore()
	subjectID := uuid.New()
	sub := newTestSubscription(subjectID)

	require.NoError(t, store.Create(ctx, sub))

	t.Run("duplicate create rejected", func(t *testing.T) {
		err := store.Create(ctx, newTestSubscription(subjectID))
		assert.ErrorIs(t, err, meter.ErrSubscriptionExists)
	})

	t.Run("get returns a copy", func(t *testing.T) {
		got, err := store.Get(ctx, subjectID)
		require.NoError(t, err)
		assert.Equal(t, sub.ID, got.ID)

		got.UnitsConsumed = 999
		again, err := store.Get(ctx, subjectID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, again.UnitsConsumed, "caller mutations must not leak into the store")
	})
}

func TestMemoryStore_Update(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("applies and persists the mutation", func(t *testing.T) {
		t.Parallel()
		store := meter.NewMemoryStore()
		subjectID := uuid.New()
		require.NoError(t, store.Create(ctx, newTestSubscription(subjectID)))

		updated, err := store.Update(ctx, subjectID, func(sub *meter.Subscription) error {
			sub.UnitsConsumed += 3
			return nil
		})
		require.NoError(t, err)
		assert.EqualValues(t, 3, updated.UnitsConsumed)

		got, err := store.Get(ctx, subjectID)
		require.NoError(t, err)
		assert.EqualValues(t, 3, got.UnitsConsumed)
	})

	t.Run("aborted update leaves state untouched", func(t *testing.T) {
		t.Parallel()
		store := meter.NewMemoryStore()
		subjectID := uuid.New()
		require.NoError(t, store.Create(ctx, newTestSubscription(subjectID)))

		boom := errors.New("boom")
		_, err := store.Update(ctx, subjectID, func(sub *meter.Subscription) error {
			sub.UnitsConsumed = 42
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := store.Get(ctx, subjectID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, got.UnitsConsumed)
	})

	t.Run("missing subscription", func(t *testing.T) {
		t.Parallel()
		store := meter.NewMemoryStore()
		_, err := store.Update(ctx, uuid.New(), func(*meter.Subscription) error { return nil })
		assert.ErrorIs(t, err, meter.ErrSubscriptionNotFound)
	})
}

func TestMemoryStore_ConcurrentUpdates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := meter.NewMemoryStore()
	subjectID := uuid.New()
	require.NoError(t, store.Create(ctx, newTestSubscription(subjectID)))

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, subjectID, func(sub *meter.Subscription) error {
				sub.UnitsConsumed++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, subjectID)
	require.NoError(t, err)
	assert.EqualValues(t, n, got.UnitsConsumed, "no lost updates")
}

package meter

import (
	"context"

	"github.com/google/uuid"
)

// UpdateFunc mutates a subscription inside a store transaction. The store
// passes the latest committed state; returning an error aborts the update
// and nothing is persisted.
type UpdateFunc func(sub *Subscription) error

// Store defines the usage ledger persistence contract.
//
// Update is the single write gate for counter and anchor state: the load,
// the UpdateFunc, and the write execute as one atomic unit against the
// latest committed row. Two concurrent Updates on the same subject must
// serialize; a check-then-increment performed inside an UpdateFunc can
// never lose an update. Implementations use row locking (Postgres),
// optimistic transactions (Redis WATCH), or versioned compare-and-swap
// (Mongo) to provide this.
type Store interface {
	// Get retrieves the subscription for a subject without locking.
	// Returns ErrSubscriptionNotFound when the subject has no
	// subscription record, or ErrNoActiveSubscription when the store
	// tracks the subject but it carries no subscription reference.
	Get(ctx context.Context, subjectID uuid.UUID) (*Subscription, error)

	// Create persists a new subscription. Returns ErrSubscriptionExists
	// when the subject already has one.
	Create(ctx context.Context, sub *Subscription) error

	// Update atomically applies fn to the latest committed subscription
	// state and persists the result. Returns the persisted subscription.
	Update(ctx context.Context, subjectID uuid.UUID, fn UpdateFunc) (*Subscription, error)
}

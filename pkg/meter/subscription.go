package meter

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/meterkit/pkg/catalog"
)

// Subscription is the persisted usage ledger row for one subject.
// Each subject has exactly one subscription at a time.
//
// The counter and anchor fields are mutated only through Store.Update;
// tier, status and the provider reference are overwritten by the billing
// reconciliation collaborator and re-read fresh on every metering call.
type Subscription struct {
	ID        uuid.UUID
	SubjectID uuid.UUID // unique - one subscription per subject

	Tier   string
	Status Status

	// UnitsConsumed counts usage within the current period only. It is
	// never negative and only ever moves by whole cost deltas, atomically
	// against the previously committed value.
	UnitsConsumed int64

	// LastResetAt anchors the start of the current period. It only ever
	// advances, and only by whole multiples of the reset period length.
	LastResetAt time.Time

	// LimitOverride supersedes the plan's default limit when present.
	// Used for manual grants and for the annual-to-monthly installment.
	LimitOverride *int64

	LastVerifiedAt time.Time
	ProviderSubID  string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CancelledAt *time.Time
}

// EffectiveLimit returns the quota for the current period: the override
// when present, otherwise the plan default (the monthly installment for
// annual-monthly tiers).
func (s *Subscription) EffectiveLimit(plan catalog.Plan) int64 {
	if s.LimitOverride != nil {
		return *s.LimitOverride
	}
	return plan.MonthlyAllocation()
}

// Remaining returns the unconsumed quota for the given limit, clamped at
// zero. The clamp matters for subscriptions whose usage exceeds a freshly
// lowered limit.
func (s *Subscription) Remaining(limit int64) int64 {
	return max(0, limit-s.UnitsConsumed)
}

// IsActive returns true if the subscription is in the active status.
func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

// IsCancelled returns true if the subscription has been cancelled.
func (s *Subscription) IsCancelled() bool {
	return s.Status == StatusCancelled
}

// clone returns a deep copy so stores can hand callers mutable copies
// without exposing their committed state.
func (s *Subscription) clone() *Subscription {
	dup := *s
	if s.LimitOverride != nil {
		v := *s.LimitOverride
		dup.LimitOverride = &v
	}
	if s.CancelledAt != nil {
		t := *s.CancelledAt
		dup.CancelledAt = &t
	}
	return &dup
}

package meter

import "errors"

var (
	// ErrSubscriptionNotFound is returned when the subject has no
	// subscription record at all.
	ErrSubscriptionNotFound = errors.New("meter: subscription not found")

	// ErrNoActiveSubscription is returned when the subject exists but has
	// no usable subscription reference.
	ErrNoActiveSubscription = errors.New("meter: no active subscription")

	// ErrSubscriptionExists is returned by Create when the subject already
	// has a subscription. Each subject has exactly one.
	ErrSubscriptionExists = errors.New("meter: subscription already exists")

	// ErrInvalidCost is returned when a consumption or refund cost is
	// below one unit.
	ErrInvalidCost = errors.New("meter: cost must be at least 1")

	// ErrInvalidLimit is returned when a manual limit override is negative.
	ErrInvalidLimit = errors.New("meter: limit override must not be negative")

	// ErrUpdateConflict is returned by optimistic stores when an atomic
	// update could not be committed after exhausting retries.
	ErrUpdateConflict = errors.New("meter: concurrent update conflict, retries exhausted")
)

package meter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/meterkit/pkg/catalog"
	"github.com/dmitrymomot/meterkit/pkg/period"
)

// Service defines the public interface of the metering engine.
type Service interface {
	// RecordConsumption atomically charges cost units against the
	// subject's current-period quota. Hitting the limit is reported as a
	// Result with Success=false, not as an error; the counter is left
	// untouched in that case.
	RecordConsumption(ctx context.Context, subjectID uuid.UUID, cost int64) (Result, error)

	// RefundConsumption compensates for a previously recorded consumption
	// whose downstream operation failed. The decrement clamps at zero and
	// a missing subscription yields a failed Result, not an error:
	// refunds are best-effort.
	RefundConsumption(ctx context.Context, subjectID uuid.UUID, cost int64) (Result, error)

	// GetSnapshot returns the would-be resolved metering state without
	// writing anything, even when a period reset is logically due.
	// Returns (nil, nil) for a subject without a subscription.
	GetSnapshot(ctx context.Context, subjectID uuid.UUID) (*Snapshot, error)

	// CreateSubscription provisions the subject's ledger row with zero
	// usage and the period anchored at now. Called once per subject,
	// typically on signup.
	CreateSubscription(ctx context.Context, subjectID uuid.UUID, tier string) (*Subscription, error)

	// ApplyBillingUpdate overwrites tier, status and the provider
	// reference on behalf of the billing reconciliation collaborator.
	// The next metering call observes the new values with no
	// invalidation step.
	ApplyBillingUpdate(ctx context.Context, subjectID uuid.UUID, upd BillingUpdate) (*Subscription, error)

	// GrantLimitOverride sets a manual per-subscription limit that
	// supersedes the plan default until cleared or rewritten by an
	// annual-monthly reset.
	GrantLimitOverride(ctx context.Context, subjectID uuid.UUID, units int64) error

	// ClearLimitOverride removes a manual limit override.
	ClearLimitOverride(ctx context.Context, subjectID uuid.UUID) error
}

type service struct {
	catalog    *catalog.Catalog
	store      Store
	clock      period.Clock
	log        *slog.Logger
	statusGate bool
}

// New creates a metering Service. Panics if catalog or store is nil to
// fail fast during initialization. Use Option functions to inject a clock,
// a logger, or to enable the status gate.
func New(cat *catalog.Catalog, store Store, opts ...Option) Service {
	if cat == nil {
		panic("meter: catalog is required")
	}
	if store == nil {
		panic("meter: store is required")
	}

	s := &service{
		catalog: cat,
		store:   store,
		clock:   period.SystemClock{},
		log:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *service) RecordConsumption(ctx context.Context, subjectID uuid.UUID, cost int64) (Result, error) {
	if cost < 1 {
		return Result{}, ErrInvalidCost
	}

	var res Result
	_, err := s.store.Update(ctx, subjectID, func(sub *Subscription) error {
		plan, err := s.catalog.Plan(sub.Tier)
		if err != nil {
			// A stored row referencing an unknown tier is a data
			// integrity problem, not a quota outcome.
			return err
		}

		if s.statusGate && !sub.Status.Usable() {
			return ErrNoActiveSubscription
		}

		now := s.clock.Now()
		s.applyReset(ctx, sub, plan, now)

		limit := sub.EffectiveLimit(plan)
		if sub.Remaining(limit) < cost {
			s.log.DebugContext(ctx, "consumption denied",
				"subject_id", subjectID,
				"usage", sub.UnitsConsumed,
				"limit", limit,
				"cost", cost)
			res = Result{
				Success:      false,
				Reason:       ReasonLimitReached,
				CurrentUsage: sub.UnitsConsumed,
				Limit:        limit,
				Remaining:    0,
			}
			// Commit anyway: a period reset applied above must persist
			// even when the triggering call is denied.
			return nil
		}

		sub.UnitsConsumed += cost
		sub.LastVerifiedAt = now
		sub.UpdatedAt = now
		res = Result{
			Success:      true,
			CurrentUsage: sub.UnitsConsumed,
			Limit:        limit,
			Remaining:    sub.Remaining(limit),
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func (s *service) RefundConsumption(ctx context.Context, subjectID uuid.UUID, cost int64) (Result, error) {
	if cost < 1 {
		return Result{}, ErrInvalidCost
	}

	var res Result
	_, err := s.store.Update(ctx, subjectID, func(sub *Subscription) error {
		plan, err := s.catalog.Plan(sub.Tier)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		// Clamp at zero: a double refund or a refund without a matching
		// consumption is absorbed silently.
		sub.UnitsConsumed = max(0, sub.UnitsConsumed-cost)
		sub.UpdatedAt = now

		limit := sub.EffectiveLimit(plan)
		res = Result{
			Success:      true,
			CurrentUsage: sub.UnitsConsumed,
			Limit:        limit,
			Remaining:    sub.Remaining(limit),
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) || errors.Is(err, ErrNoActiveSubscription) {
			// Nothing to refund is not a hard error.
			return Result{Success: false, CurrentUsage: 0}, nil
		}
		return Result{}, err
	}
	return res, nil
}

func (s *service) GetSnapshot(ctx context.Context, subjectID uuid.UUID) (*Snapshot, error) {
	sub, err := s.store.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) || errors.Is(err, ErrNoActiveSubscription) {
			return nil, nil
		}
		return nil, err
	}

	plan, err := s.catalog.Plan(sub.Tier)
	if err != nil {
		return nil, err
	}

	// Same resolver as the mutating path, applied to an in-memory copy
	// only: the snapshot and the mutating path must never disagree about
	// the current numbers, but only the mutating path persists a reset.
	now := s.clock.Now()
	view := sub.clone()
	resetPending := s.applyReset(ctx, view, plan, now)

	limit := view.EffectiveLimit(plan)
	return &Snapshot{
		Tier:         view.Tier,
		Status:       view.Status,
		CurrentUsage: view.UnitsConsumed,
		Limit:        limit,
		Remaining:    view.Remaining(limit),
		PeriodStart:  view.LastResetAt,
		PeriodEnd:    period.End(view.LastResetAt, plan),
		ResetPending: resetPending,
	}, nil
}

func (s *service) CreateSubscription(ctx context.Context, subjectID uuid.UUID, tier string) (*Subscription, error) {
	if _, err := s.catalog.Plan(tier); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	sub := &Subscription{
		ID:             uuid.New(),
		SubjectID:      subjectID,
		Tier:           tier,
		Status:         StatusActive,
		UnitsConsumed:  0,
		LastResetAt:    now,
		LastVerifiedAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "subscription created",
		"subject_id", subjectID, "tier", tier)
	return sub, nil
}

func (s *service) ApplyBillingUpdate(ctx context.Context, subjectID uuid.UUID, upd BillingUpdate) (*Subscription, error) {
	if !s.catalog.Has(upd.Tier) {
		return nil, catalog.ErrTierNotFound
	}

	sub, err := s.store.Update(ctx, subjectID, func(sub *Subscription) error {
		now := s.clock.Now()
		sub.Tier = upd.Tier
		sub.Status = upd.Status
		sub.ProviderSubID = upd.ProviderSubID
		sub.UpdatedAt = now
		if upd.Status == StatusCancelled && sub.CancelledAt == nil {
			sub.CancelledAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "billing update applied",
		"subject_id", subjectID, "tier", upd.Tier, "status", upd.Status)
	return sub, nil
}

func (s *service) GrantLimitOverride(ctx context.Context, subjectID uuid.UUID, units int64) error {
	if units < 0 {
		return ErrInvalidLimit
	}

	_, err := s.store.Update(ctx, subjectID, func(sub *Subscription) error {
		sub.LimitOverride = &units
		sub.UpdatedAt = s.clock.Now()
		return nil
	})
	return err
}

func (s *service) ClearLimitOverride(ctx context.Context, subjectID uuid.UUID) error {
	_, err := s.store.Update(ctx, subjectID, func(sub *Subscription) error {
		sub.LimitOverride = nil
		sub.UpdatedAt = s.clock.Now()
		return nil
	})
	return err
}

// applyReset resolves the period for sub and applies the outcome in place.
// Reports whether a reset was applied. The caller decides whether the
// mutation is persisted (mutating path) or discarded (snapshot path).
func (s *service) applyReset(ctx context.Context, sub *Subscription, plan catalog.Plan, now time.Time) bool {
	r := period.Resolve(sub.LastResetAt, plan, now)
	if !r.ResetNeeded {
		return false
	}

	sub.LastResetAt = r.NewAnchor
	sub.UnitsConsumed = r.NewUnitsConsumed
	if r.NewLimitOverride != nil {
		sub.LimitOverride = r.NewLimitOverride
	}
	sub.UpdatedAt = now

	s.log.DebugContext(ctx, "usage period reset",
		"subject_id", sub.SubjectID,
		"tier", sub.Tier,
		"new_anchor", r.NewAnchor)
	return true
}

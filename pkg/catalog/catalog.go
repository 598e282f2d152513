package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Source defines how plans are loaded into the catalog.
type Source interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// Catalog is an immutable tier -> Plan lookup table built once at startup.
// Changing the catalog is a deploy-time operation, not a runtime API, so the
// map is never mutated after New returns and requires no locking.
type Catalog struct {
	plans map[string]Plan
}

// New loads plans from src and validates them. A misconfigured catalog is a
// deployment error: New fails instead of deferring the problem to the first
// metering call.
func New(ctx context.Context, src Source) (*Catalog, error) {
	if src == nil {
		panic("catalog: Source is required")
	}

	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	if err := validatePlans(plans); err != nil {
		return nil, err
	}

	return &Catalog{plans: plans}, nil
}

// Plan returns the plan for the given tier.
func (c *Catalog) Plan(tier string) (Plan, error) {
	plan, exists := c.plans[tier]
	if !exists {
		return Plan{}, fmt.Errorf("%w: %q", ErrTierNotFound, tier)
	}
	return plan, nil
}

// Has reports whether a tier is configured.
func (c *Catalog) Has(tier string) bool {
	_, exists := c.plans[tier]
	return exists
}

// LimitFor returns the per-period unit limit for the tier. For
// annual-monthly tiers this is the monthly installment, not the annual
// total, because the installment is what a period's quota check runs
// against.
func (c *Catalog) LimitFor(tier string) (int64, error) {
	plan, err := c.Plan(tier)
	if err != nil {
		return 0, err
	}
	return plan.MonthlyAllocation(), nil
}

// PeriodFor returns the usage-reset window length for the tier.
func (c *Catalog) PeriodFor(tier string) (time.Duration, error) {
	plan, err := c.Plan(tier)
	if err != nil {
		return 0, err
	}
	return plan.ResetPeriod(), nil
}

// Tiers returns the configured tier names in no particular order.
func (c *Catalog) Tiers() []string {
	tiers := make([]string, 0, len(c.plans))
	for tier := range c.plans {
		tiers = append(tiers, tier)
	}
	return tiers
}

// validatePlans ensures plan configurations are internally consistent.
// Catches configuration errors early to prevent runtime issues.
func validatePlans(plans map[string]Plan) error {
	if len(plans) == 0 {
		return errors.Join(ErrInvalidPlanConfiguration,
			errors.New("catalog has no plans"))
	}

	for tier, plan := range plans {
		if plan.Tier != tier {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("tier mismatch: map key %q != plan.Tier %q", tier, plan.Tier))
		}

		if plan.UnitLimit < 0 {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("tier %q has negative unit limit: %d", tier, plan.UnitLimit))
		}

		if plan.PeriodDays <= 0 {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("tier %q has non-positive period: %d days", tier, plan.PeriodDays))
		}

		if plan.AnnualMonthly && plan.BillingPeriod() < nominalMonth {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("tier %q is annual-monthly but its billing period is shorter than a month", tier))
		}
	}

	return nil
}

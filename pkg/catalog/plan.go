package catalog

import (
	"math"
	"time"
)

// Limit constants.
const (
	// UnlimitedUnits marks a tier with no practical quota. A very large
	// sentinel keeps the quota arithmetic uniform instead of branching on
	// a special "unlimited" case everywhere.
	UnlimitedUnits int64 = math.MaxInt32

	// NoRenewalDays marks a tier whose period never renews at any realistic
	// time horizon (~100 years).
	NoRenewalDays = 36500

	// monthlyInstallments is the number of allocations an annual quota is
	// split into.
	monthlyInstallments = 12
)

// nominalMonth is the reset period used by annual-monthly tiers.
// Period boundaries are anchored, not calendar-aligned, so a fixed 30-day
// window is used rather than calendar months.
const nominalMonth = 30 * 24 * time.Hour

// Money represents a monetary amount in the smallest currency unit.
// For example, $10.99 USD would be Amount: 1099, Currency: "USD".
// Informational only: the engine never does money arithmetic.
type Money struct {
	Amount   int64  `yaml:"amount"`
	Currency string `yaml:"currency"`
}

// Plan describes a metered subscription tier: how many units a subscriber
// may consume per period and how long that period is.
type Plan struct {
	Tier        string `yaml:"tier"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	UnitLimit   int64  `yaml:"unit_limit"`
	PeriodDays  int    `yaml:"period_days"`

	// AnnualMonthly marks tiers billed annually but metered in monthly
	// installments: the annual quota is split into 12 equal allocations
	// and the usage counter resets every nominal month.
	AnnualMonthly bool `yaml:"annual_monthly"`

	Price  Money `yaml:"price"`
	Public bool  `yaml:"public"` // available for self-service signup
}

// BillingPeriod returns the billing window length for the tier.
func (p Plan) BillingPeriod() time.Duration {
	return time.Duration(p.PeriodDays) * 24 * time.Hour
}

// ResetPeriod returns the usage-reset window length. For annual-monthly
// tiers this is one nominal month, not the billing period: the yearly
// allowance is spent down in equal monthly installments.
func (p Plan) ResetPeriod() time.Duration {
	if p.AnnualMonthly {
		return nominalMonth
	}
	return p.BillingPeriod()
}

// MonthlyAllocation returns the per-installment quota for annual-monthly
// tiers: ceil(UnitLimit / 12). For all other tiers it returns UnitLimit
// unchanged.
func (p Plan) MonthlyAllocation() int64 {
	if !p.AnnualMonthly {
		return p.UnitLimit
	}
	return (p.UnitLimit + monthlyInstallments - 1) / monthlyInstallments
}

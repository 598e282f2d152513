package meter

import "time"

// Status represents the billing state of a subscription. It is written
// exclusively by the billing reconciliation collaborator; the metering
// engine reads it but never derives it.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
	StatusGrace     Status = "grace"
)

// Usable reports whether consumption is permitted for the status when the
// status gate is enabled. Quota arithmetic itself is status-independent.
func (s Status) Usable() bool {
	return s == StatusActive || s == StatusGrace
}

// ReasonLimitReached is the machine-checkable reason carried by a denied
// consumption result.
const ReasonLimitReached = "Usage limit reached"

// Result is the structured outcome of a consumption or refund call.
// Hitting the quota is a routine business outcome, not an engine failure,
// so it is reported here with Success=false rather than as an error.
type Result struct {
	Success      bool   `json:"success"`
	Reason       string `json:"reason,omitempty"`
	CurrentUsage int64  `json:"current_usage"`
	Limit        int64  `json:"limit"`
	Remaining    int64  `json:"remaining"`
}

// Snapshot is a read-only view of a subscription's metering state with the
// current period already resolved. Producing it never writes, even when a
// period reset is logically due.
type Snapshot struct {
	Tier         string    `json:"tier"`
	Status       Status    `json:"status"`
	CurrentUsage int64     `json:"current_usage"`
	Limit        int64     `json:"limit"`
	Remaining    int64     `json:"remaining"`
	PeriodStart  time.Time `json:"period_start"`
	PeriodEnd    time.Time `json:"period_end"`

	// ResetPending is true when the reported values reflect a period
	// rollover that has not been persisted yet. The next mutating call
	// will persist it.
	ResetPending bool `json:"reset_pending"`
}

// BillingUpdate carries the fields the billing reconciliation collaborator
// is allowed to overwrite on a subscription.
type BillingUpdate struct {
	Tier          string
	Status        Status
	ProviderSubID string
}

package meter

import (
	"log/slog"

	"github.com/dmitrymomot/meterkit/pkg/period"
)

// Option configures a Service instance.
type Option func(*service)

// WithClock injects the time source used for period resolution. The
// default is the system clock in UTC; tests inject a frozen clock to pin
// period boundaries.
func WithClock(clock period.Clock) Option {
	return func(s *service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the logger for reset and denial events. Logging is off
// by default.
func WithLogger(log *slog.Logger) Option {
	return func(s *service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithStatusGate makes RecordConsumption reject subscriptions whose status
// is not usable (cancelled, expired) with ErrNoActiveSubscription. Off by
// default: status is owned by the billing collaborator and does not affect
// quota arithmetic.
func WithStatusGate() Option {
	return func(s *service) {
		s.statusGate = true
	}
}

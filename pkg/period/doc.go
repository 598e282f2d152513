// Package period decides when a subscription's usage window renews.
//
// The package exposes a single pure function, Resolve, shared by the
// mutating and read-only metering paths so they can never disagree about
// the current period, plus a Clock abstraction so callers inject time
// instead of reading the wall clock inside business logic.
package period

// Package catalog provides the static plan catalog for the metering engine:
// an immutable tier -> Plan lookup table loaded and validated once at
// startup.
//
// A Plan carries the per-period unit limit and the length of the renewing
// usage window. Tiers billed annually but metered monthly set AnnualMonthly;
// their yearly quota is split into 12 equal installments and their usage
// window is one nominal month.
//
// Plans are loaded through a Source. Two implementations ship with the
// package: NewInMemSource for programmatic configuration and tests, and
// NewYAMLSource for deploy-time file-based configuration.
//
//	src := catalog.NewYAMLSource("configs/plans.yml")
//	cat, err := catalog.New(ctx, src)
//	if err != nil {
//		log.Fatal(err) // misconfigured catalog, refuse to start
//	}
//
// An unknown tier at lookup time returns ErrTierNotFound. Configuration
// problems (duplicate tiers, negative limits, non-positive periods) fail
// New itself: the catalog is deploy-time configuration, so a bad catalog
// should prevent startup rather than surface per-call.
package catalog

// Package meter implements per-subscriber usage metering: it charges unit
// consumption against a quota that renews on a recurring window, enforces
// hard limits, and supports compensating refunds when the operation a
// credit was reserved for subsequently fails.
//
// # Architecture
//
// Three pieces cooperate, with a strict split between pure logic and
// persistence:
//
//   - Service: the public operations (RecordConsumption, RefundConsumption,
//     GetSnapshot, plus subscription lifecycle entry points).
//   - Store: the usage ledger. Its Update method is the single write gate;
//     the load, the mutation and the write execute as one atomic unit
//     against the latest committed row.
//   - period.Resolve (package period): the pure period-rollover decision,
//     shared by the mutating and the read-only paths so they can never
//     disagree about the current numbers.
//
// # Stores
//
// Four Store implementations ship with the package, mirroring how a
// billing provider adapter lives next to the service it serves:
//
//   - NewMemoryStore: mutex-guarded map for tests and single-process use.
//   - NewPostgresStore: pgx transaction with SELECT ... FOR UPDATE.
//   - NewRedisStore: WATCH/MULTI optimistic transaction over a JSON value.
//   - NewMongoStore: versioned compare-and-swap via ReplaceOne.
//
// All of them guarantee that N concurrent unit-cost consumptions starting
// from zero with a sufficient limit leave the counter at exactly N.
//
// # Quick start
//
//	cat, err := catalog.New(ctx, catalog.NewYAMLSource("configs/plans.yml"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	svc := meter.New(cat, meter.NewPostgresStore(pool))
//
//	res, err := svc.RecordConsumption(ctx, subjectID, 1)
//	switch {
//	case err != nil:
//		// no subscription, or the store failed
//	case !res.Success:
//		// quota exhausted: res.Reason, res.Limit, res.Remaining == 0
//	default:
//		if err := doBillableWork(ctx); err != nil {
//			// compensate the reserved credit
//			_, _ = svc.RefundConsumption(ctx, subjectID, 1)
//		}
//	}
//
// # Error taxonomy
//
// Quota exhaustion is a Result with Success=false, never an error. Errors
// are reserved for conditions the caller must handle explicitly: a missing
// subscription (ErrSubscriptionNotFound, ErrNoActiveSubscription), a
// stored tier absent from the catalog (catalog.ErrTierNotFound), or store
// failures. Refund underflow is absorbed silently by clamping at zero.
package meter

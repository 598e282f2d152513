// Package mongo bootstraps the MongoDB client used by the Mongo-backed
// usage ledger store. Configuration comes from the environment; New retries
// the initial connection, and Healthcheck exposes a probe-friendly ping.
//
// The subscriptions collection needs a unique index on subject_id, created
// once at deploy time:
//
//	db.subscriptions.createIndex({subject_id: 1}, {unique: true})
package mongo

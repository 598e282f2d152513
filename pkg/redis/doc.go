// Package redis bootstraps the Redis client used by the Redis-backed usage
// ledger store: URL-based configuration from the environment, connection
// with bounded retries, and a health check closure.
package redis

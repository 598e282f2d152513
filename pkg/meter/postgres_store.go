package meter

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/meterkit/pkg/pg"
)

const subscriptionColumns = `id, subject_id, tier, status, units_consumed, last_reset_at,
	limit_override, last_verified_at, provider_sub_id, created_at, updated_at, cancelled_at`

// postgresStore persists subscriptions in a PostgreSQL table. Update runs
// inside a transaction holding a SELECT ... FOR UPDATE row lock, so the
// read-modify-write on one subject serializes against concurrent callers.
type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by the given connection pool.
// Panics on a nil pool to fail fast during initialization. The schema is
// managed by the goose migrations shipped under migrations/.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	if pool == nil {
		panic("meter: pgx pool is required")
	}
	return &postgresStore{pool: pool}
}

func (s *postgresStore) Get(ctx context.Context, subjectID uuid.UUID) (*Subscription, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE subject_id = $1`,
		subjectID)

	sub, err := scanSubscription(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("meter: get subscription: %w", err)
	}
	return sub, nil
}

func (s *postgresStore) Create(ctx context.Context, sub *Subscription) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO subscriptions (`+subscriptionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		sub.ID, sub.SubjectID, sub.Tier, sub.Status, sub.UnitsConsumed, sub.LastResetAt,
		sub.LimitOverride, sub.LastVerifiedAt, sub.ProviderSubID,
		sub.CreatedAt, sub.UpdatedAt, sub.CancelledAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrSubscriptionExists
		}
		return fmt.Errorf("meter: create subscription: %w", err)
	}
	return nil
}

func (s *postgresStore) Update(ctx context.Context, subjectID uuid.UUID, fn UpdateFunc) (*Subscription, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("meter: begin update: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	row := tx.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE subject_id = $1 FOR UPDATE`,
		subjectID)

	sub, err := scanSubscription(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("meter: load for update: %w", err)
	}

	if err := fn(sub); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE subscriptions SET
			tier = $2, status = $3, units_consumed = $4, last_reset_at = $5,
			limit_override = $6, last_verified_at = $7, provider_sub_id = $8,
			updated_at = $9, cancelled_at = $10
		 WHERE subject_id = $1`,
		sub.SubjectID, sub.Tier, sub.Status, sub.UnitsConsumed, sub.LastResetAt,
		sub.LimitOverride, sub.LastVerifiedAt, sub.ProviderSubID,
		sub.UpdatedAt, sub.CancelledAt); err != nil {
		return nil, fmt.Errorf("meter: persist update: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("meter: commit update: %w", err)
	}
	return sub, nil
}

func scanSubscription(row pgx.Row) (*Subscription, error) {
	var sub Subscription
	if err := row.Scan(
		&sub.ID, &sub.SubjectID, &sub.Tier, &sub.Status, &sub.UnitsConsumed, &sub.LastResetAt,
		&sub.LimitOverride, &sub.LastVerifiedAt, &sub.ProviderSubID,
		&sub.CreatedAt, &sub.UpdatedAt, &sub.CancelledAt,
	); err != nil {
		return nil, err
	}
	return &sub, nil
}

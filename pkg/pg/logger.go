package pg

import "context"

// logger defines the interface required for migration logging integration.
// Compatible with slog; lets goose migration output flow through the
// application logger instead of stdout/stderr.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

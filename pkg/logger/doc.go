// Package logger is a small factory around log/slog: format and level
// selection via functional options, production/development presets, and a
// few attribute helpers shared across the module (Error, SubjectID, Tier).
package logger

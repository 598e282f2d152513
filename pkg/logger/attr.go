package logger

import "log/slog"

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// SubjectID records the metered subject identifier under the key "subject_id".
// If id is nil, it returns an empty Attr.
func SubjectID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("subject_id", id)
}

// Tier records a plan tier name under the key "tier".
func Tier(tier string) slog.Attr {
	if tier == "" {
		return slog.Attr{}
	}
	return slog.String("tier", tier)
}

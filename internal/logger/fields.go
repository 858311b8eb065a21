package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldSession is the structured log field key for the interview session id.
	FieldSession = "session_id"
	// FieldRole is the structured log field key for the interview role.
	FieldRole = "role"
)

// SessionFields returns standard zap fields describing an interview session.
// Empty values are skipped to keep log entries compact.
func SessionFields(sessionID, role string) []zap.Field {
	fields := make([]zap.Field, 0, 2)

	if id := strings.TrimSpace(sessionID); id != "" {
		fields = append(fields, zap.String(FieldSession, id))
	}

	if r := strings.TrimSpace(role); r != "" {
		fields = append(fields, zap.String(FieldRole, r))
	}

	return fields
}

// WithSession attaches the session fields to the provided logger, defaulting
// to a no-op logger when nil to avoid panics.
func WithSession(logger *zap.Logger, sessionID, role string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	fields := SessionFields(sessionID, role)
	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

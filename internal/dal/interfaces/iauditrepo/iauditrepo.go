package iauditrepo

import (
	"context"

	"github.com/corray333/backend-labs/crm/internal/service/models/jobrun"
)

// LogWriteError reports that the audit log target could not be written.
// The audit file is the sole contract with operators, so callers must
// surface this instead of swallowing it.
type LogWriteError struct {
	Path string
	Err  error
}

func (e *LogWriteError) Error() string {
	return "audit log " + e.Path + ": " + e.Err.Error()
}

func (e *LogWriteError) Unwrap() error {
	return e.Err
}

// IAuditRepository appends one line per job run to an append-only log.
// Append must be atomic under concurrent writers: whole lines only,
// never interleaved, never truncating prior content.
type IAuditRepository interface {
	Append(line string) error
}

// IOutcomePublisher fans job outcomes out to an event stream. Publishing
// is best-effort; the file log stays the primary audit channel.
type IOutcomePublisher interface {
	PublishOutcome(ctx context.Context, outcome jobrun.Outcome) error
}

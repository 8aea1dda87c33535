package audit

import (
	"os"
	"sync"

	"github.com/corray333/backend-labs/crm/internal/dal/interfaces/iauditrepo"
)

// FileAuditRepository appends job outcome lines to a shared append-only
// log file. The mutex serializes writers in this process; O_APPEND with
// a single write keeps appends whole against writers in other processes.
// The file only grows; rotation is handled externally.
type FileAuditRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileAuditRepository creates a new file audit repository.
func NewFileAuditRepository(path string) *FileAuditRepository {
	return &FileAuditRepository{
		path: path,
	}
}

// Append writes line plus a trailing newline as one durable write. The
// write is fsynced before Append returns success.
func (r *FileAuditRepository) Append(line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &iauditrepo.LogWriteError{Path: r.path, Err: err}
	}

	if _, err := f.Write([]byte(line + "\n")); err != nil {
		_ = f.Close()

		return &iauditrepo.LogWriteError{Path: r.path, Err: err}
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()

		return &iauditrepo.LogWriteError{Path: r.path, Err: err}
	}

	if err := f.Close(); err != nil {
		return &iauditrepo.LogWriteError{Path: r.path, Err: err}
	}

	return nil
}

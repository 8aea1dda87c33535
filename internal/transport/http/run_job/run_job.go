package runjob

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Job is the synchronous run-now trigger a handler invokes.
type Job interface {
	Run(ctx context.Context) error
}

// NamedJob is a Job that knows its route name.
type NamedJob interface {
	Job
	Name() string
}

func RunJob(w http.ResponseWriter, r *http.Request, jobs map[string]Job) {
	name := chi.URLParam(r, "job")

	job, ok := jobs[name]
	if !ok {
		http.Error(w, "unknown job", http.StatusNotFound)

		return
	}

	if err := job.Run(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Manual job run could not record its outcome", "job", name, "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(map[string]string{"job": name}); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}

package getmetrics

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/crm/internal/service/services/metricssvc"
)

type service interface {
	GetMetrics(ctx context.Context) (metricssvc.Metrics, error)
}

func GetMetrics(w http.ResponseWriter, r *http.Request, service service) {
	metrics, err := service.GetMetrics(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error getting metrics", "error", err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(metrics); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		slog.Error("Error sending response", "error", err)
	}
}

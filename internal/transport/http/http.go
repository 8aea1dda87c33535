package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/crm/internal/service/services/metricssvc"
	getmetrics "github.com/corray333/backend-labs/crm/internal/transport/http/get_metrics"
	runjob "github.com/corray333/backend-labs/crm/internal/transport/http/run_job"
	"github.com/corray333/backend-labs/crm/pkg/http/middleware/trace"
	"github.com/corray333/backend-labs/crm/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

type metricsService interface {
	GetMetrics(ctx context.Context) (metricssvc.Metrics, error)
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	metrics metricsService
	jobs    map[string]runjob.Job
}

func NewHTTPTransport(metrics metricsService, jobs ...runjob.NamedJob) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	jobsByName := make(map[string]runjob.Job, len(jobs))
	for _, j := range jobs {
		jobsByName[j.Name()] = j
	}

	return &HTTPTransport{
		server:  server,
		router:  router,
		metrics: metrics,
		jobs:    jobsByName,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Get("/metrics", h.getMetrics)
		r.Post("/jobs/{job}/run", h.runJob)
	})
}

func (h *HTTPTransport) getMetrics(w http.ResponseWriter, r *http.Request) {
	getmetrics.GetMetrics(w, r, h.metrics)
}

func (h *HTTPTransport) runJob(w http.ResponseWriter, r *http.Request) {
	runjob.RunJob(w, r, h.jobs)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}

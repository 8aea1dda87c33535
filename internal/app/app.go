package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/backend-labs/crm/internal/dal/postgres"
	"github.com/corray333/backend-labs/crm/internal/dal/rabbitmq"
	"github.com/corray333/backend-labs/crm/internal/dal/repositories/audit"
	postgresrepo "github.com/corray333/backend-labs/crm/internal/dal/repositories/crm/postgres"
	"github.com/corray333/backend-labs/crm/internal/jaeger"
	"github.com/corray333/backend-labs/crm/internal/service/services/cleanupsvc"
	"github.com/corray333/backend-labs/crm/internal/service/services/metricssvc"
	"github.com/corray333/backend-labs/crm/internal/service/services/remindersvc"
	"github.com/corray333/backend-labs/crm/internal/service/services/reportsvc"
	"github.com/corray333/backend-labs/crm/internal/service/services/restocksvc"
	httptransport "github.com/corray333/backend-labs/crm/internal/transport/http"
	"github.com/corray333/backend-labs/crm/internal/worker/scheduler"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// App represents the application.
type App struct {
	transport      *httptransport.HTTPTransport
	worker         *scheduler.Worker
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
	tracerProvider *sdktrace.TracerProvider
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	postgresClient := postgres.MustNewClient()

	var rabbitClient *rabbitmq.Client
	var events *audit.RabbitMQAuditRepository
	if viper.GetBool("rabbitmq.enabled") {
		rabbitClient = rabbitmq.MustNewClient()
		events = audit.NewRabbitMQAuditRepository(rabbitClient)
	}

	crmRepo := postgresrepo.NewCRMRepository(postgresClient)
	auditLog := audit.NewFileAuditRepository(viper.GetString("audit.log_path"))
	remindersLog := audit.NewFileAuditRepository(viper.GetString("audit.reminders_log_path"))

	reportOpts := []reportsvc.Option{
		reportsvc.WithCRMRepository(crmRepo),
		reportsvc.WithAuditRepository(auditLog),
	}
	cleanupOpts := []cleanupsvc.Option{
		cleanupsvc.WithCRMRepository(crmRepo),
		cleanupsvc.WithAuditRepository(auditLog),
		cleanupsvc.WithRetention(viper.GetDuration("jobs.cleanup.retention")),
	}
	remindersOpts := []remindersvc.Option{
		remindersvc.WithCRMRepository(crmRepo),
		remindersvc.WithAuditRepository(remindersLog),
		remindersvc.WithWindow(viper.GetDuration("jobs.reminders.window")),
	}
	restockOpts := []restocksvc.Option{
		restocksvc.WithCRMRepository(crmRepo),
		restocksvc.WithAuditRepository(auditLog),
		restocksvc.WithThresholds(
			viper.GetInt64("jobs.restock.threshold"),
			viper.GetInt64("jobs.restock.increment"),
		),
	}
	if events != nil {
		reportOpts = append(reportOpts, reportsvc.WithOutcomePublisher(events))
		cleanupOpts = append(cleanupOpts, cleanupsvc.WithOutcomePublisher(events))
		remindersOpts = append(remindersOpts, remindersvc.WithOutcomePublisher(events))
		restockOpts = append(restockOpts, restocksvc.WithOutcomePublisher(events))
	}

	reportSvc := reportsvc.MustNewReportService(reportOpts...)
	cleanupSvc := cleanupsvc.MustNewCleanupService(cleanupOpts...)
	remindersSvc := remindersvc.MustNewReminderService(remindersOpts...)
	restockSvc := restocksvc.MustNewRestockService(restockOpts...)
	metricsSvc := metricssvc.MustNewMetricsService(
		metricssvc.WithCRMRepository(crmRepo),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(jaeger.MustNewJaeger()),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("crm-jobs"),
		)),
	)
	otel.SetTracerProvider(tracerProvider)

	worker := scheduler.NewWorker()
	worker.Register(reportSvc, viper.GetDuration("jobs.report.interval"))
	worker.Register(cleanupSvc, viper.GetDuration("jobs.cleanup.interval"))
	worker.Register(remindersSvc, viper.GetDuration("jobs.reminders.interval"))
	worker.Register(restockSvc, viper.GetDuration("jobs.restock.interval"))

	transport := httptransport.NewHTTPTransport(
		metricsSvc,
		reportSvc,
		cleanupSvc,
		remindersSvc,
		restockSvc,
	)
	transport.RegisterRoutes()

	return &App{
		transport:      transport,
		worker:         worker,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
		tracerProvider: tracerProvider,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	// Create a channel to receive OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.worker.Start(runCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	cancel()
	a.worker.Stop()
	slog.Info("Job triggers stopped")

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	if err := a.tracerProvider.Shutdown(ctx); err != nil {
		slog.Error("Tracer provider shutdown error", "error", err)
	}

	if a.rabbitClient != nil {
		if err := a.rabbitClient.Close(); err != nil {
			slog.Error("RabbitMQ connection close error", "error", err)
		}
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	slog.Info("Application shutdown complete")
}

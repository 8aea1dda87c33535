package restocksvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/crm/internal/dal/interfaces/iauditrepo"
	"github.com/corray333/backend-labs/crm/internal/dal/interfaces/icrmrepo"
	"github.com/corray333/backend-labs/crm/internal/service/models/jobrun"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
)

const (
	defaultThreshold = 10
	defaultIncrement = 10
)

// RestockService tops up low-stock products. The whole restock is a
// single UPDATE, so there is no per-item failure mode to track.
type RestockService struct {
	repo      icrmrepo.ICRMRepository
	audit     iauditrepo.IAuditRepository
	events    iauditrepo.IOutcomePublisher
	threshold int64
	increment int64
	now       func() time.Time
}

// Option is a function that configures the RestockService.
type Option func(*RestockService)

// MustNewRestockService creates a new RestockService.
func MustNewRestockService(opts ...Option) *RestockService {
	s := &RestockService{
		threshold: defaultThreshold,
		increment: defaultIncrement,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.repo == nil || s.audit == nil {
		panic("restocksvc: CRM repository and audit log are required")
	}

	return s
}

// WithCRMRepository sets the CRM repository for the RestockService.
func WithCRMRepository(repo icrmrepo.ICRMRepository) Option {
	return func(s *RestockService) {
		s.repo = repo
	}
}

// WithAuditRepository sets the audit log for the RestockService.
func WithAuditRepository(audit iauditrepo.IAuditRepository) Option {
	return func(s *RestockService) {
		s.audit = audit
	}
}

// WithOutcomePublisher sets the optional outcome event publisher.
func WithOutcomePublisher(events iauditrepo.IOutcomePublisher) Option {
	return func(s *RestockService) {
		s.events = events
	}
}

// WithThresholds sets the low-stock threshold and the restock increment.
func WithThresholds(threshold, increment int64) Option {
	return func(s *RestockService) {
		if threshold > 0 {
			s.threshold = threshold
		}
		if increment > 0 {
			s.increment = increment
		}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *RestockService) {
		s.now = now
	}
}

func (s *RestockService) Name() string {
	return "restock"
}

func (s *RestockService) Enabled() bool {
	return viper.GetBool("jobs.restock.enabled")
}

// Run executes one restock job run.
func (s *RestockService) Run(ctx context.Context) error {
	ctx, span := otel.Tracer("crm-jobs").Start(ctx, "restock.run")
	defer span.End()

	started := s.now()

	products, err := s.repo.RestockLowStock(ctx, s.threshold, s.increment)
	if err != nil {
		return s.fail(ctx, started, err)
	}

	for _, p := range products {
		slog.Info("restocked product", "product_id", p.ID, "name", p.Name, "stock", p.Stock)
	}

	line := fmt.Sprintf(
		"%s - Restocked %d low-stock products",
		s.now().Format(jobrun.TimeLayout),
		len(products),
	)

	if err := s.audit.Append(line); err != nil {
		slog.Error("audit log unwritable, restock outcome lost", "job", s.Name(), "error", err)

		return err
	}

	s.publish(ctx, jobrun.Outcome{
		Job:        s.Name(),
		StartedAt:  started,
		FinishedAt: s.now(),
		Line:       line,
	})

	return nil
}

func (s *RestockService) fail(ctx context.Context, started time.Time, cause error) error {
	slog.Error("restock job run failed", "error", cause)

	line := fmt.Sprintf(
		"%s - Restock failed: %v",
		s.now().Format(jobrun.TimeLayout),
		cause,
	)

	if err := s.audit.Append(line); err != nil {
		slog.Error("audit log unwritable while reporting failure",
			"job", s.Name(),
			"cause", cause,
			"error", err,
		)

		return err
	}

	s.publish(ctx, jobrun.Outcome{
		Job:        s.Name(),
		StartedAt:  started,
		FinishedAt: s.now(),
		Line:       line,
		Error:      cause.Error(),
	})

	return nil
}

func (s *RestockService) publish(ctx context.Context, outcome jobrun.Outcome) {
	if s.events == nil {
		return
	}

	if err := s.events.PublishOutcome(ctx, outcome); err != nil {
		slog.Warn("failed to publish job outcome event", "job", outcome.Job, "error", err)
	}
}

package reportsvc

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

// ReportService is the weekly report job. One run reads the three
// aggregates and appends one summary line to the audit log. The three
// reads are not a snapshot; momentary skew between them is accepted.
type ReportService struct {
	repo   icrmrepo.ICRMRepository
	audit  iauditrepo.IAuditRepository
	events iauditrepo.IOutcomePublisher
	now    func() time.Time
}

// Option is a function that configures the ReportService.
type Option func(*ReportService)

// MustNewReportService creates a new ReportService.
func MustNewReportService(opts ...Option) *ReportService {
	s := &ReportService{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if s.repo == nil || s.audit == nil {
		panic("reportsvc: CRM repository and audit log are required")
	}

	return s
}

// WithCRMRepository sets the CRM repository for the ReportService.
func WithCRMRepository(repo icrmrepo.ICRMRepository) Option {
	return func(s *ReportService) {
		s.repo = repo
	}
}

// WithAuditRepository sets the audit log for the ReportService.
func WithAuditRepository(audit iauditrepo.IAuditRepository) Option {
	return func(s *ReportService) {
		s.audit = audit
	}
}

// WithOutcomePublisher sets the optional outcome event publisher.
func WithOutcomePublisher(events iauditrepo.IOutcomePublisher) Option {
	return func(s *ReportService) {
		s.events = events
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *ReportService) {
		s.now = now
	}
}

func (s *ReportService) Name() string {
	return "report"
}

func (s *ReportService) Enabled() bool {
	return viper.GetBool("jobs.report.enabled")
}

// Run executes one report job run. Store and log failures are contained:
// they become a failure line in the audit log and Run returns nil. The
// only error Run returns is an unwritable audit log, the one condition
// with no durable way to report itself.
func (s *ReportService) Run(ctx context.Context) error {
	ctx, span := otel.Tracer("crm-jobs").Start(ctx, "report.run")
	defer span.End()

	started := s.now()

	customers, err := s.repo.CountCustomers(ctx)
	if err != nil {
		return s.fail(ctx, started, err)
	}

	orders, err := s.repo.CountOrders(ctx)
	if err != nil {
		return s.fail(ctx, started, err)
	}

	revenue, err := s.repo.SumOrderAmounts(ctx)
	if err != nil {
		return s.fail(ctx, started, err)
	}

	line := fmt.Sprintf(
		"%s - Report: %d customers, %d orders, %s revenue",
		started.Format(jobrun.TimeLayout),
		customers,
		orders,
		revenue,
	)

	if err := s.audit.Append(line); err != nil {
		slog.Error("audit log unwritable, report outcome lost", "job", s.Name(), "error", err)

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

func (s *ReportService) fail(ctx context.Context, started time.Time, cause error) error {
	slog.Error("report job run failed", "error", cause)

	line := fmt.Sprintf(
		"%s - Report failed: %v",
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

func (s *ReportService) publish(ctx context.Context, outcome jobrun.Outcome) {
	if s.events == nil {
		return
	}

	if err := s.events.PublishOutcome(ctx, outcome); err != nil {
		slog.Warn("failed to publish job outcome event", "job", outcome.Job, "error", err)
	}
}

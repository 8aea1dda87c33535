package cleanupsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/crm/internal/dal/interfaces/iauditrepo"
	"github.com/corray333/backend-labs/crm/internal/dal/interfaces/icrmrepo"
	"github.com/corray333/backend-labs/crm/internal/service/models/jobrun"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
)

const defaultRetention = 365 * 24 * time.Hour

// CleanupService is the inactive-customer cleanup job. Eligibility is
// recomputed fresh against wall clock on every run, never cached. One
// failed delete does not abort the rest of the batch, and the summary
// line counts the customers actually deleted, not the ones selected.
type CleanupService struct {
	repo      icrmrepo.ICRMRepository
	audit     iauditrepo.IAuditRepository
	events    iauditrepo.IOutcomePublisher
	retention time.Duration
	now       func() time.Time
}

// Option is a function that configures the CleanupService.
type Option func(*CleanupService)

// MustNewCleanupService creates a new CleanupService.
func MustNewCleanupService(opts ...Option) *CleanupService {
	s := &CleanupService{
		retention: defaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.repo == nil || s.audit == nil {
		panic("cleanupsvc: CRM repository and audit log are required")
	}

	return s
}

// WithCRMRepository sets the CRM repository for the CleanupService.
func WithCRMRepository(repo icrmrepo.ICRMRepository) Option {
	return func(s *CleanupService) {
		s.repo = repo
	}
}

// WithAuditRepository sets the audit log for the CleanupService.
func WithAuditRepository(audit iauditrepo.IAuditRepository) Option {
	return func(s *CleanupService) {
		s.audit = audit
	}
}

// WithOutcomePublisher sets the optional outcome event publisher.
func WithOutcomePublisher(events iauditrepo.IOutcomePublisher) Option {
	return func(s *CleanupService) {
		s.events = events
	}
}

// WithRetention sets how long a customer's newest order keeps it active.
func WithRetention(retention time.Duration) Option {
	return func(s *CleanupService) {
		if retention > 0 {
			s.retention = retention
		}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *CleanupService) {
		s.now = now
	}
}

func (s *CleanupService) Name() string {
	return "cleanup"
}

func (s *CleanupService) Enabled() bool {
	return viper.GetBool("jobs.cleanup.enabled")
}

// Run executes one cleanup job run. Selection failure is contained into
// a failure line; per-item delete failures only lower the reported
// count. Run returns an error only when the audit log is unwritable.
func (s *CleanupService) Run(ctx context.Context) error {
	ctx, span := otel.Tracer("crm-jobs").Start(ctx, "cleanup.run")
	defer span.End()

	started := s.now()
	cutoff := started.Add(-s.retention)

	candidates, err := s.repo.FindInactiveCustomers(ctx, cutoff)
	if err != nil {
		return s.fail(ctx, started, err)
	}

	deleted := 0
	failed := 0
	for _, c := range candidates {
		if err := s.repo.DeleteCustomer(ctx, c.ID); err != nil {
			if errors.Is(err, icrmrepo.ErrCustomerNotFound) {
				slog.Info("inactive customer already deleted", "customer_id", c.ID)
			} else {
				failed++
				slog.Warn("failed to delete inactive customer", "customer_id", c.ID, "error", err)
			}

			continue
		}
		deleted++
	}

	line := fmt.Sprintf(
		"%s - Deleted %d inactive customers",
		s.now().Format(jobrun.TimeLayout),
		deleted,
	)

	if err := s.audit.Append(line); err != nil {
		slog.Error("audit log unwritable, cleanup outcome lost",
			"job", s.Name(),
			"deleted", deleted,
			"failed", failed,
			"error", err,
		)

		return err
	}

	outcome := jobrun.Outcome{
		Job:        s.Name(),
		StartedAt:  started,
		FinishedAt: s.now(),
		Line:       line,
	}
	if failed > 0 {
		outcome.Error = fmt.Sprintf("%d of %d deletions failed", failed, len(candidates))
	}
	s.publish(ctx, outcome)

	return nil
}

func (s *CleanupService) fail(ctx context.Context, started time.Time, cause error) error {
	slog.Error("cleanup job run failed", "error", cause)

	line := fmt.Sprintf(
		"%s - Cleanup failed: %v",
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

func (s *CleanupService) publish(ctx context.Context, outcome jobrun.Outcome) {
	if s.events == nil {
		return
	}

	if err := s.events.PublishOutcome(ctx, outcome); err != nil {
		slog.Warn("failed to publish job outcome event", "job", outcome.Job, "error", err)
	}
}

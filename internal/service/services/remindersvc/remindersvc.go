package remindersvc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/corray333/backend-labs/crm/internal/dal/interfaces/iauditrepo"
	"github.com/corray333/backend-labs/crm/internal/dal/interfaces/icrmrepo"
	"github.com/corray333/backend-labs/crm/internal/service/models/jobrun"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
)

const defaultWindow = 7 * 24 * time.Hour

// ReminderService logs reminders for orders placed within the recent
// window. The whole reminder block for a run goes to the log as a single
// append so concurrent runs never interleave their blocks.
type ReminderService struct {
	repo   icrmrepo.ICRMRepository
	audit  iauditrepo.IAuditRepository
	events iauditrepo.IOutcomePublisher
	window time.Duration
	now    func() time.Time
}

// Option is a function that configures the ReminderService.
type Option func(*ReminderService)

// MustNewReminderService creates a new ReminderService.
func MustNewReminderService(opts ...Option) *ReminderService {
	s := &ReminderService{
		window: defaultWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.repo == nil || s.audit == nil {
		panic("remindersvc: CRM repository and audit log are required")
	}

	return s
}

// WithCRMRepository sets the CRM repository for the ReminderService.
func WithCRMRepository(repo icrmrepo.ICRMRepository) Option {
	return func(s *ReminderService) {
		s.repo = repo
	}
}

// WithAuditRepository sets the reminders log for the ReminderService.
func WithAuditRepository(audit iauditrepo.IAuditRepository) Option {
	return func(s *ReminderService) {
		s.audit = audit
	}
}

// WithOutcomePublisher sets the optional outcome event publisher.
func WithOutcomePublisher(events iauditrepo.IOutcomePublisher) Option {
	return func(s *ReminderService) {
		s.events = events
	}
}

// WithWindow sets how far back an order still earns a reminder.
func WithWindow(window time.Duration) Option {
	return func(s *ReminderService) {
		if window > 0 {
			s.window = window
		}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *ReminderService) {
		s.now = now
	}
}

func (s *ReminderService) Name() string {
	return "reminders"
}

func (s *ReminderService) Enabled() bool {
	return viper.GetBool("jobs.reminders.enabled")
}

// Run executes one reminders job run.
func (s *ReminderService) Run(ctx context.Context) error {
	ctx, span := otel.Tracer("crm-jobs").Start(ctx, "reminders.run")
	defer span.End()

	started := s.now()
	since := started.Add(-s.window)

	orders, err := s.repo.FindRecentOrders(ctx, since)
	if err != nil {
		return s.fail(ctx, started, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s - Order reminders: %d orders",
		started.Format(jobrun.TimeLayout), len(orders))
	for _, o := range orders {
		fmt.Fprintf(&b, "\n  Order #%d: %s (%s) - %s - %s",
			o.ID,
			o.CustomerName,
			o.CustomerEmail,
			o.TotalAmountCents,
			o.OrderDate.Format(jobrun.TimeLayout),
		)
	}
	block := b.String()

	if err := s.audit.Append(block); err != nil {
		slog.Error("reminders log unwritable, outcome lost", "job", s.Name(), "error", err)

		return err
	}

	s.publish(ctx, jobrun.Outcome{
		Job:        s.Name(),
		StartedAt:  started,
		FinishedAt: s.now(),
		Line:       block,
	})

	return nil
}

func (s *ReminderService) fail(ctx context.Context, started time.Time, cause error) error {
	slog.Error("reminders job run failed", "error", cause)

	line := fmt.Sprintf(
		"%s - Order reminders failed: %v",
		s.now().Format(jobrun.TimeLayout),
		cause,
	)

	if err := s.audit.Append(line); err != nil {
		slog.Error("reminders log unwritable while reporting failure",
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

func (s *ReminderService) publish(ctx context.Context, outcome jobrun.Outcome) {
	if s.events == nil {
		return
	}

	if err := s.events.PublishOutcome(ctx, outcome); err != nil {
		slog.Warn("failed to publish job outcome event", "job", outcome.Job, "error", err)
	}
}

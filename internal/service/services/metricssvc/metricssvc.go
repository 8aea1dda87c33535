package metricssvc

import (
	"context"

	"github.com/corray333/backend-labs/crm/internal/dal/interfaces/icrmrepo"
)

// Metrics is the aggregate read API payload: pure reads, no side
// effects, queryable on demand independent of the scheduled report.
type Metrics struct {
	Customers int64  `json:"customers"`
	Orders    int64  `json:"orders"`
	Revenue   string `json:"revenue"`
}

// MetricsService backs the aggregate read API.
type MetricsService struct {
	repo icrmrepo.ICRMRepository
}

// option is a function that configures the MetricsService.
type option func(*MetricsService)

// MustNewMetricsService creates a new MetricsService.
func MustNewMetricsService(opts ...option) *MetricsService {
	s := &MetricsService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.repo == nil {
		panic("metricssvc: CRM repository is required")
	}

	return s
}

// WithCRMRepository sets the CRM repository for the MetricsService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCRMRepository(repo icrmrepo.ICRMRepository) option {
	return func(s *MetricsService) {
		s.repo = repo
	}
}

// GetMetrics reads the three aggregates. The reads are independent, not
// a snapshot.
func (s *MetricsService) GetMetrics(ctx context.Context) (Metrics, error) {
	customers, err := s.repo.CountCustomers(ctx)
	if err != nil {
		return Metrics{}, err
	}

	orders, err := s.repo.CountOrders(ctx)
	if err != nil {
		return Metrics{}, err
	}

	revenue, err := s.repo.SumOrderAmounts(ctx)
	if err != nil {
		return Metrics{}, err
	}

	return Metrics{
		Customers: customers,
		Orders:    orders,
		Revenue:   revenue.String(),
	}, nil
}

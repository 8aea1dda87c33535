package restocksvc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/corray333/backend-labs/crm/internal/dal/interfaces/icrmrepo"
	"github.com/corray333/backend-labs/crm/internal/service/models/customer"
	"github.com/corray333/backend-labs/crm/internal/service/models/money"
	"github.com/corray333/backend-labs/crm/internal/service/models/order"
	"github.com/corray333/backend-labs/crm/internal/service/models/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	restocked    []product.Product
	restockErr   error
	gotThreshold int64
	gotIncrement int64
}

func (f *fakeRepo) CountCustomers(ctx context.Context) (int64, error) {
	return 0, nil
}

func (f *fakeRepo) CountOrders(ctx context.Context) (int64, error) {
	return 0, nil
}

func (f *fakeRepo) SumOrderAmounts(ctx context.Context) (money.Cents, error) {
	return 0, nil
}

func (f *fakeRepo) FindInactiveCustomers(ctx context.Context, cutoff time.Time) ([]customer.Customer, error) {
	return nil, nil
}

func (f *fakeRepo) DeleteCustomer(ctx context.Context, id int64) error {
	return nil
}

func (f *fakeRepo) FindRecentOrders(ctx context.Context, since time.Time) ([]order.Order, error) {
	return nil, nil
}

func (f *fakeRepo) RestockLowStock(ctx context.Context, threshold, increment int64) ([]product.Product, error) {
	f.gotThreshold = threshold
	f.gotIncrement = increment
	if f.restockErr != nil {
		return nil, f.restockErr
	}

	return f.restocked, nil
}

type memAudit struct {
	mu    sync.Mutex
	lines []string
}

func (m *memAudit) Append(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)

	return nil
}

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestRunLogsRestockedCount(t *testing.T) {
	repo := &fakeRepo{
		restocked: []product.Product{
			{ID: 1, Name: "Monitor", Stock: 15},
			{ID: 2, Name: "Laptop", Stock: 12},
			{ID: 3, Name: "Headphones", Stock: 18},
		},
	}
	audit := &memAudit{}
	svc := MustNewRestockService(
		WithCRMRepository(repo),
		WithAuditRepository(audit),
		WithClock(func() time.Time { return testNow }),
	)

	require.NoError(t, svc.Run(context.Background()))

	require.Len(t, audit.lines, 1)
	assert.Equal(t, "2024-05-01 12:00:00 - Restocked 3 low-stock products", audit.lines[0])
}

func TestRunUsesConfiguredThresholds(t *testing.T) {
	repo := &fakeRepo{}
	svc := MustNewRestockService(
		WithCRMRepository(repo),
		WithAuditRepository(&memAudit{}),
		WithThresholds(5, 20),
	)

	require.NoError(t, svc.Run(context.Background()))

	assert.Equal(t, int64(5), repo.gotThreshold)
	assert.Equal(t, int64(20), repo.gotIncrement)
}

func TestRunContainsStoreFailure(t *testing.T) {
	repo := &fakeRepo{
		restockErr: &icrmrepo.DataSourceError{Op: "restock low stock", Err: errors.New("connection refused")},
	}
	audit := &memAudit{}
	svc := MustNewRestockService(
		WithCRMRepository(repo),
		WithAuditRepository(audit),
		WithClock(func() time.Time { return testNow }),
	)

	require.NoError(t, svc.Run(context.Background()))

	require.Len(t, audit.lines, 1)
	assert.Equal(t,
		"2024-05-01 12:00:00 - Restock failed: crm store: restock low stock: connection refused",
		audit.lines[0],
	)
}

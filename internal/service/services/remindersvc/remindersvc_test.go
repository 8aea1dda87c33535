package remindersvc

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
	recent   []order.Order
	findErr  error
	gotSince time.Time
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
	f.gotSince = since
	if f.findErr != nil {
		return nil, f.findErr
	}

	return f.recent, nil
}

func (f *fakeRepo) RestockLowStock(ctx context.Context, threshold, increment int64) ([]product.Product, error) {
	return nil, nil
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

func TestRunLogsOneBlockPerRun(t *testing.T) {
	repo := &fakeRepo{
		recent: []order.Order{
			{
				ID:               7,
				CustomerName:     "Alice Johnson",
				CustomerEmail:    "alice@example.com",
				TotalAmountCents: 102998,
				OrderDate:        time.Date(2024, 4, 29, 9, 30, 0, 0, time.UTC),
			},
			{
				ID:               9,
				CustomerName:     "Bob Smith",
				CustomerEmail:    "bob@example.com",
				TotalAmountCents: 2999,
				OrderDate:        time.Date(2024, 4, 30, 16, 45, 0, 0, time.UTC),
			},
		},
	}
	audit := &memAudit{}
	svc := MustNewReminderService(
		WithCRMRepository(repo),
		WithAuditRepository(audit),
		WithClock(func() time.Time { return testNow }),
	)

	err := svc.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, audit.lines, 1, "the whole reminder block must be one atomic append")
	assert.Equal(t,
		"2024-05-01 12:00:00 - Order reminders: 2 orders\n"+
			"  Order #7: Alice Johnson (alice@example.com) - 1029.98 - 2024-04-29 09:30:00\n"+
			"  Order #9: Bob Smith (bob@example.com) - 29.99 - 2024-04-30 16:45:00",
		audit.lines[0],
	)
}

func TestRunUsesSevenDayWindow(t *testing.T) {
	repo := &fakeRepo{}
	svc := MustNewReminderService(
		WithCRMRepository(repo),
		WithAuditRepository(&memAudit{}),
		WithClock(func() time.Time { return testNow }),
	)

	require.NoError(t, svc.Run(context.Background()))

	assert.Equal(t, testNow.Add(-7*24*time.Hour), repo.gotSince)
}

func TestRunWithNoRecentOrders(t *testing.T) {
	audit := &memAudit{}
	svc := MustNewReminderService(
		WithCRMRepository(&fakeRepo{}),
		WithAuditRepository(audit),
		WithClock(func() time.Time { return testNow }),
	)

	require.NoError(t, svc.Run(context.Background()))

	require.Len(t, audit.lines, 1)
	assert.Equal(t, "2024-05-01 12:00:00 - Order reminders: 0 orders", audit.lines[0])
}

func TestRunContainsSelectionFailure(t *testing.T) {
	repo := &fakeRepo{
		findErr: &icrmrepo.DataSourceError{Op: "find recent orders", Err: errors.New("timeout")},
	}
	audit := &memAudit{}
	svc := MustNewReminderService(
		WithCRMRepository(repo),
		WithAuditRepository(audit),
		WithClock(func() time.Time { return testNow }),
	)

	require.NoError(t, svc.Run(context.Background()))

	require.Len(t, audit.lines, 1)
	assert.Equal(t,
		"2024-05-01 12:00:00 - Order reminders failed: crm store: find recent orders: timeout",
		audit.lines[0],
	)
}

package cleanupsvc

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
	inactive    []customer.Customer
	findErr     error
	deleteErrs  map[int64]error
	deletedIds  []int64
	gotCutoff   time.Time
	deleteCalls int
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
	f.gotCutoff = cutoff
	if f.findErr != nil {
		return nil, f.findErr
	}

	return f.inactive, nil
}

func (f *fakeRepo) DeleteCustomer(ctx context.Context, id int64) error {
	f.deleteCalls++
	if err := f.deleteErrs[id]; err != nil {
		return err
	}
	f.deletedIds = append(f.deletedIds, id)

	return nil
}

func (f *fakeRepo) FindRecentOrders(ctx context.Context, since time.Time) ([]order.Order, error) {
	return nil, nil
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

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestRunDeletesInactiveCustomers(t *testing.T) {
	repo := &fakeRepo{
		inactive: []customer.Customer{{ID: 1}, {ID: 2}},
	}
	audit := &memAudit{}
	svc := MustNewCleanupService(
		WithCRMRepository(repo),
		WithAuditRepository(audit),
		WithClock(fixedClock(testNow)),
	)

	err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, repo.deletedIds)
	require.Len(t, audit.lines, 1)
	assert.Equal(t, "2024-05-01 12:00:00 - Deleted 2 inactive customers", audit.lines[0])
}

func TestRunUsesYearCutoff(t *testing.T) {
	repo := &fakeRepo{}
	svc := MustNewCleanupService(
		WithCRMRepository(repo),
		WithAuditRepository(&memAudit{}),
		WithClock(fixedClock(testNow)),
	)

	require.NoError(t, svc.Run(context.Background()))

	assert.Equal(t, testNow.Add(-365*24*time.Hour), repo.gotCutoff)
}

func TestRunCountsOnlySuccessfulDeletes(t *testing.T) {
	repo := &fakeRepo{
		inactive: []customer.Customer{{ID: 1}, {ID: 2}, {ID: 3}},
		deleteErrs: map[int64]error{
			2: &icrmrepo.DataSourceError{Op: "delete customer", Err: errors.New("deadlock detected")},
		},
	}
	audit := &memAudit{}
	svc := MustNewCleanupService(
		WithCRMRepository(repo),
		WithAuditRepository(audit),
		WithClock(fixedClock(testNow)),
	)

	err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, repo.deleteCalls, "one bad record must not abort the batch")
	require.Len(t, audit.lines, 1)
	assert.Equal(t, "2024-05-01 12:00:00 - Deleted 2 inactive customers", audit.lines[0])
}

func TestRunTreatsAlreadyDeletedAsBenign(t *testing.T) {
	repo := &fakeRepo{
		inactive: []customer.Customer{{ID: 1}, {ID: 2}},
		deleteErrs: map[int64]error{
			1: icrmrepo.ErrCustomerNotFound,
		},
	}
	audit := &memAudit{}
	svc := MustNewCleanupService(
		WithCRMRepository(repo),
		WithAuditRepository(audit),
		WithClock(fixedClock(testNow)),
	)

	require.NoError(t, svc.Run(context.Background()))

	require.Len(t, audit.lines, 1)
	assert.Equal(t, "2024-05-01 12:00:00 - Deleted 1 inactive customers", audit.lines[0])
}

func TestRunContainsSelectionFailure(t *testing.T) {
	repo := &fakeRepo{
		findErr: &icrmrepo.DataSourceError{Op: "find inactive customers", Err: errors.New("connection refused")},
	}
	audit := &memAudit{}
	svc := MustNewCleanupService(
		WithCRMRepository(repo),
		WithAuditRepository(audit),
		WithClock(fixedClock(testNow)),
	)

	err := svc.Run(context.Background())

	require.NoError(t, err, "a failed selection must not escape the job boundary")
	assert.Zero(t, repo.deleteCalls)
	require.Len(t, audit.lines, 1)
	assert.Equal(t,
		"2024-05-01 12:00:00 - Cleanup failed: crm store: find inactive customers: connection refused",
		audit.lines[0],
	)
}

func TestRunWithNoCandidatesStillLogs(t *testing.T) {
	audit := &memAudit{}
	svc := MustNewCleanupService(
		WithCRMRepository(&fakeRepo{}),
		WithAuditRepository(audit),
		WithClock(fixedClock(testNow)),
	)

	require.NoError(t, svc.Run(context.Background()))

	require.Len(t, audit.lines, 1)
	assert.Equal(t, "2024-05-01 12:00:00 - Deleted 0 inactive customers", audit.lines[0])
}

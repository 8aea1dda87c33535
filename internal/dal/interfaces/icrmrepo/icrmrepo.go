package icrmrepo

import (
	"context"
	"errors"
	"time"

	"github.com/corray333/backend-labs/crm/internal/service/models/customer"
	"github.com/corray333/backend-labs/crm/internal/service/models/money"
	"github.com/corray333/backend-labs/crm/internal/service/models/order"
	"github.com/corray333/backend-labs/crm/internal/service/models/product"
)

// ErrCustomerNotFound is returned by DeleteCustomer when the row is
// already gone. Overlapping cleanup runs treat it as a benign per-item
// failure.
var ErrCustomerNotFound = errors.New("customer not found")

// DataSourceError reports a failed read or delete against the CRM store.
// The repository performs no retries; retry policy belongs to the
// calling job.
type DataSourceError struct {
	Op  string
	Err error
}

func (e *DataSourceError) Error() string {
	return "crm store: " + e.Op + ": " + e.Err.Error()
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// ICRMRepository is an interface for the CRM postgres repository.
type ICRMRepository interface {
	CountCustomers(ctx context.Context) (int64, error)
	CountOrders(ctx context.Context) (int64, error)
	SumOrderAmounts(ctx context.Context) (money.Cents, error)
	FindInactiveCustomers(ctx context.Context, cutoff time.Time) ([]customer.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	FindRecentOrders(ctx context.Context, since time.Time) ([]order.Order, error)
	RestockLowStock(ctx context.Context, threshold, increment int64) ([]product.Product, error)
}

package postgresrepo

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/crm/internal/dal/interfaces/icrmrepo"
	"github.com/corray333/backend-labs/crm/internal/dal/postgres"
	"github.com/corray333/backend-labs/crm/internal/service/models/customer"
	"github.com/corray333/backend-labs/crm/internal/service/models/money"
	"github.com/corray333/backend-labs/crm/internal/service/models/order"
	"github.com/corray333/backend-labs/crm/internal/service/models/product"
)

// CustomerDal represents customer data access layer model
type CustomerDal struct {
	Id        int64     `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
}

// ToModel converts CustomerDal to service layer Customer model
func (c *CustomerDal) ToModel() customer.Customer {
	return customer.Customer{
		ID:        c.Id,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
	}
}

// CRMRepository implements the CRM store contract for PostgreSQL.
type CRMRepository struct {
	client *postgres.Client
}

// NewCRMRepository creates a new CRM repository.
func NewCRMRepository(client *postgres.Client) *CRMRepository {
	return &CRMRepository{
		client: client,
	}
}

// CountCustomers returns the total number of customers in the store.
func (r *CRMRepository) CountCustomers(ctx context.Context) (int64, error) {
	return r.count(ctx, "count customers", "customers")
}

// CountOrders returns the total number of orders in the store.
func (r *CRMRepository) CountOrders(ctx context.Context) (int64, error) {
	return r.count(ctx, "count orders", "orders")
}

func (r *CRMRepository) count(ctx context.Context, op, table string) (int64, error) {
	query, args, err := sq.Select("count(*)").
		From(table).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, &icrmrepo.DataSourceError{Op: op, Err: err}
	}

	var n int64
	if err := r.client.Pool().QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, &icrmrepo.DataSourceError{Op: op, Err: err}
	}

	return n, nil
}

// SumOrderAmounts returns the sum of all order amounts, zero when no
// orders exist.
func (r *CRMRepository) SumOrderAmounts(ctx context.Context) (money.Cents, error) {
	query, args, err := sq.Select("coalesce(sum(total_amount_cents), 0)").
		From("orders").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, &icrmrepo.DataSourceError{Op: "sum order amounts", Err: err}
	}

	var sum int64
	if err := r.client.Pool().QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return 0, &icrmrepo.DataSourceError{Op: "sum order amounts", Err: err}
	}

	return money.Cents(sum), nil
}

// FindInactiveCustomers returns every customer with no order dated at or
// after cutoff. The anti-join returns each customer at most once.
func (r *CRMRepository) FindInactiveCustomers(
	ctx context.Context,
	cutoff time.Time,
) ([]customer.Customer, error) {
	query, args, err := sq.Select("c.id", "c.name", "c.email", "c.phone", "c.created_at").
		From("customers c").
		Where(sq.Expr(
			"NOT EXISTS (SELECT 1 FROM orders o WHERE o.customer_id = c.id AND o.order_date >= ?)",
			cutoff,
		)).
		OrderBy("c.id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, &icrmrepo.DataSourceError{Op: "find inactive customers", Err: err}
	}

	rows, err := r.client.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, &icrmrepo.DataSourceError{Op: "find inactive customers", Err: err}
	}
	defer rows.Close()

	var result []customer.Customer
	for rows.Next() {
		var dal CustomerDal
		if err := rows.Scan(&dal.Id, &dal.Name, &dal.Email, &dal.Phone, &dal.CreatedAt); err != nil {
			return nil, &icrmrepo.DataSourceError{Op: "find inactive customers", Err: err}
		}
		result = append(result, dal.ToModel())
	}

	if err := rows.Err(); err != nil {
		return nil, &icrmrepo.DataSourceError{Op: "find inactive customers", Err: err}
	}

	return result, nil
}

// DeleteCustomer deletes the customer; its orders go with it by
// referential cascade. A missing row reports ErrCustomerNotFound so
// overlapping cleanup runs stay benign.
func (r *CRMRepository) DeleteCustomer(ctx context.Context, id int64) error {
	query, args, err := sq.Delete("customers").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return &icrmrepo.DataSourceError{Op: "delete customer", Err: err}
	}

	tag, err := r.client.Pool().Exec(ctx, query, args...)
	if err != nil {
		return &icrmrepo.DataSourceError{Op: "delete customer", Err: err}
	}

	if tag.RowsAffected() == 0 {
		return icrmrepo.ErrCustomerNotFound
	}

	return nil
}

// FindRecentOrders returns orders dated at or after since, with the
// owning customer's name and email for reminder lines.
func (r *CRMRepository) FindRecentOrders(
	ctx context.Context,
	since time.Time,
) ([]order.Order, error) {
	query, args, err := sq.Select(
		"o.id",
		"o.customer_id",
		"c.name",
		"c.email",
		"o.total_amount_cents",
		"o.order_date",
	).
		From("orders o").
		Join("customers c ON c.id = o.customer_id").
		Where(sq.GtOrEq{"o.order_date": since}).
		OrderBy("o.order_date ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, &icrmrepo.DataSourceError{Op: "find recent orders", Err: err}
	}

	rows, err := r.client.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, &icrmrepo.DataSourceError{Op: "find recent orders", Err: err}
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var o order.Order
		var amountCents int64
		err := rows.Scan(
			&o.ID,
			&o.CustomerID,
			&o.CustomerName,
			&o.CustomerEmail,
			&amountCents,
			&o.OrderDate,
		)
		if err != nil {
			return nil, &icrmrepo.DataSourceError{Op: "find recent orders", Err: err}
		}
		o.TotalAmountCents = money.Cents(amountCents)
		result = append(result, o)
	}

	if err := rows.Err(); err != nil {
		return nil, &icrmrepo.DataSourceError{Op: "find recent orders", Err: err}
	}

	return result, nil
}

// RestockLowStock tops up every product with stock below threshold by
// increment and returns the updated rows.
func (r *CRMRepository) RestockLowStock(
	ctx context.Context,
	threshold, increment int64,
) ([]product.Product, error) {
	query, args, err := sq.Update("products").
		Set("stock", sq.Expr("stock + ?", increment)).
		Where(sq.Lt{"stock": threshold}).
		Suffix("RETURNING id, name, price_cents, stock").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, &icrmrepo.DataSourceError{Op: "restock low stock", Err: err}
	}

	rows, err := r.client.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, &icrmrepo.DataSourceError{Op: "restock low stock", Err: err}
	}
	defer rows.Close()

	var result []product.Product
	for rows.Next() {
		var p product.Product
		var priceCents int64
		if err := rows.Scan(&p.ID, &p.Name, &priceCents, &p.Stock); err != nil {
			return nil, &icrmrepo.DataSourceError{Op: "restock low stock", Err: err}
		}
		p.PriceCents = money.Cents(priceCents)
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, &icrmrepo.DataSourceError{Op: "restock low stock", Err: err}
	}

	return result, nil
}

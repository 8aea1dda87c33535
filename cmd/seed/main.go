package main

import (
	"context"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/crm/internal/config"
	"github.com/corray333/backend-labs/crm/internal/dal/postgres"
)

type seedCustomer struct {
	name  string
	email string
	phone string
}

type seedProduct struct {
	name       string
	priceCents int64
	stock      int64
}

// Seeds a demo dataset: a few customers, products, and orders spread
// over the last two years so both the report and the cleanup job have
// something to chew on.
func main() {
	config.MustInit()

	client := postgres.MustNewClient()
	defer client.Close()

	ctx := context.Background()

	customers := []seedCustomer{
		{name: "Alice Johnson", email: "alice@example.com", phone: "+1234567890"},
		{name: "Bob Smith", email: "bob@example.com", phone: "123-456-7890"},
		{name: "Carol Davis", email: "carol@example.com", phone: "+447700900123"},
		{name: "David Wilson", email: "david@example.com"},
	}

	customerIds := make(map[string]int64, len(customers))
	for _, c := range customers {
		query, args, err := sq.Insert("customers").
			Columns("name", "email", "phone").
			Values(c.name, c.email, c.phone).
			Suffix("ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name RETURNING id").
			PlaceholderFormat(sq.Dollar).
			ToSql()
		if err != nil {
			panic(err)
		}

		var id int64
		if err := client.Pool().QueryRow(ctx, query, args...).Scan(&id); err != nil {
			panic(err)
		}
		customerIds[c.email] = id
	}

	products := []seedProduct{
		{name: "Laptop", priceCents: 99999, stock: 10},
		{name: "Mouse", priceCents: 2999, stock: 50},
		{name: "Keyboard", priceCents: 7999, stock: 25},
		{name: "Monitor", priceCents: 29999, stock: 5},
		{name: "Headphones", priceCents: 14999, stock: 15},
	}

	for _, p := range products {
		query, args, err := sq.Insert("products").
			Columns("name", "price_cents", "stock").
			Values(p.name, p.priceCents, p.stock).
			PlaceholderFormat(sq.Dollar).
			ToSql()
		if err != nil {
			panic(err)
		}

		if _, err := client.Pool().Exec(ctx, query, args...); err != nil {
			panic(err)
		}
	}

	now := time.Now()
	orders := []struct {
		email       string
		amountCents int64
		orderDate   time.Time
	}{
		{email: "alice@example.com", amountCents: 102998, orderDate: now.Add(-2 * 24 * time.Hour)},
		{email: "alice@example.com", amountCents: 7999, orderDate: now.Add(-30 * 24 * time.Hour)},
		{email: "bob@example.com", amountCents: 29999, orderDate: now.Add(-400 * 24 * time.Hour)},
	}

	for _, o := range orders {
		query, args, err := sq.Insert("orders").
			Columns("customer_id", "total_amount_cents", "order_date").
			Values(customerIds[o.email], o.amountCents, o.orderDate).
			PlaceholderFormat(sq.Dollar).
			ToSql()
		if err != nil {
			panic(err)
		}

		if _, err := client.Pool().Exec(ctx, query, args...); err != nil {
			panic(err)
		}
	}

	slog.Info("seeded demo dataset",
		"customers", len(customers),
		"products", len(products),
		"orders", len(orders),
	)
}

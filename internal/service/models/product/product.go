package product

import "github.com/corray333/backend-labs/crm/internal/service/models/money"

// Product represents a CRM product.
type Product struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	PriceCents money.Cents `json:"priceCents"`
	Stock      int64       `json:"stock"`
}

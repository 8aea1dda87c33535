package order

import (
	"time"

	"github.com/corray333/backend-labs/crm/internal/service/models/money"
)

// Order represents a customer order. Orders are read-only from this
// service's perspective; they are created elsewhere and removed only by
// the referential cascade when their customer is deleted.
type Order struct {
	ID               int64       `json:"id"`
	CustomerID       int64       `json:"customerId"`
	CustomerName     string      `json:"customerName,omitempty"`
	CustomerEmail    string      `json:"customerEmail,omitempty"`
	TotalAmountCents money.Cents `json:"totalAmountCents"`
	OrderDate        time.Time   `json:"orderDate"`
}

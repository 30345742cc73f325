package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses as reported by the backend. Transitions happen server-side
// only; an unlisted status is pending.
const (
	OrderProcessing = "processing"
	OrderCompleted  = "completed"
	OrderFailed     = "failed"
	OrderCancelled  = "cancelled"
)

// OrderItem is one line of an order.
type OrderItem struct {
	ItemID   string          `json:"itemId"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Order is a read-only view of a placed order.
type Order struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"orderId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	Items         []OrderItem     `json:"items"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"createdAt"`
}

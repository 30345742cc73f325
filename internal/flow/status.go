package flow

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/hongminglow/all-in-store/internal/models"
)

// MissingParameterMessage is shown when a status URL carries no id.
const MissingParameterMessage = "Missing required parameter"

// ErrMissingParameter means no alias of the id was present in the query.
var ErrMissingParameter = errors.New("missing required parameter")

// Query parameter names accepted for the id, in lookup order.
var (
	OrderIDAliases = []string{"orderId", "order_id", "id"}
	TxnIDAliases   = []string{"client_txn_id", "clientTxnId", "txnId", "txn_id", "transactionId"}
)

// ResolveID returns the first non-empty alias value.
func ResolveID(q url.Values, aliases []string) (string, bool) {
	for _, name := range aliases {
		if v := strings.TrimSpace(q.Get(name)); v != "" {
			return v, true
		}
	}
	return "", false
}

// Display states.
const (
	StatePending    = "pending"
	StateProcessing = "processing"
	StateSuccess    = "success"
	StateFailed     = "failed"
	StateCancelled  = "cancelled"
)

// Display is how a backend status is presented.
type Display struct {
	State string
	Icon  string
	Tone  string
	Title string
}

// Classify maps a raw backend status onto a display state. Unknown values are
// treated as pending.
func Classify(status string) Display {
	s := strings.ToLower(strings.TrimSpace(status))
	switch {
	case slices.Contains([]string{models.OrderCompleted, models.TxnSuccess, "paid"}, s):
		return Display{State: StateSuccess, Icon: "✓", Tone: "success", Title: "Payment successful"}
	case slices.Contains([]string{models.OrderFailed, models.TxnFailed, "failure", "rejected"}, s):
		return Display{State: StateFailed, Icon: "✕", Tone: "danger", Title: "Payment failed"}
	case slices.Contains([]string{models.OrderCancelled, models.TxnCancelled, "canceled"}, s):
		return Display{State: StateCancelled, Icon: "⊘", Tone: "muted", Title: "Payment cancelled"}
	case s == models.OrderProcessing:
		return Display{State: StateProcessing, Icon: "↻", Tone: "info", Title: "Processing your order"}
	default:
		return Display{State: StatePending, Icon: "…", Tone: "warning", Title: "Payment pending"}
	}
}

// StatusAPI looks up orders and transactions.
type StatusAPI interface {
	OrderStatus(ctx context.Context, orderID string) (models.Order, error)
	TransactionStatus(ctx context.Context, clientTxnID string) (models.Transaction, error)
}

// Status backs the order and payment status screens. Each call does at most
// one lookup.
type Status struct {
	api StatusAPI
}

func NewStatus(api StatusAPI) *Status {
	return &Status{api: api}
}

// Order resolves the order id from q and fetches it.
func (s *Status) Order(ctx context.Context, q url.Values) (models.Order, Display, error) {
	id, ok := ResolveID(q, OrderIDAliases)
	if !ok {
		return models.Order{}, Display{}, ErrMissingParameter
	}
	order, err := s.api.OrderStatus(ctx, id)
	if err != nil {
		return models.Order{}, Display{}, fmt.Errorf("order status %s: %w", id, err)
	}
	if order.OrderID == "" {
		order.OrderID = id
	}
	return order, Classify(order.Status), nil
}

// Payment resolves the client transaction id from q and fetches it.
func (s *Status) Payment(ctx context.Context, q url.Values) (models.Transaction, Display, error) {
	id, ok := ResolveID(q, TxnIDAliases)
	if !ok {
		return models.Transaction{}, Display{}, ErrMissingParameter
	}
	txn, err := s.api.TransactionStatus(ctx, id)
	if err != nil {
		return models.Transaction{}, Display{}, fmt.Errorf("transaction status %s: %w", id, err)
	}
	if txn.ClientTxnID == "" {
		txn.ClientTxnID = id
	}
	return txn, Classify(txn.Status), nil
}

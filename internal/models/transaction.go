package models

import "github.com/shopspring/decimal"

// Payment-gateway transaction statuses. Anything else is still pending.
const (
	TxnSuccess   = "success"
	TxnFailed    = "failed"
	TxnCancelled = "cancelled"
)

// Transaction is the payment-gateway record for a UPI payment.
type Transaction struct {
	OrderID        string          `json:"orderId"`
	ClientTxnID    string          `json:"clientTxnId"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	UTR            string          `json:"utr,omitempty"`
	CustomerName   string          `json:"customerName"`
	CustomerEmail  string          `json:"customerEmail"`
	CustomerMobile string          `json:"customerMobile"`
}

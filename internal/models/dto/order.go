package dto

import "github.com/hongminglow/all-in-store/internal/models"

// PaymentReply is returned by order creation and wallet top-up calls. The
// identifiers may arrive at the top level or nested under data.
type PaymentReply struct {
	Outcome
	OrderID       string `json:"orderId"`
	TransactionID string `json:"transactionId"`
	ClientTxnID   string `json:"client_txn_id"`
	PaymentURL    string `json:"paymentUrl"`
	Data          struct {
		OrderID       string `json:"orderId"`
		TransactionID string `json:"transactionId"`
		ClientTxnID   string `json:"client_txn_id"`
		PaymentURL    string `json:"paymentUrl"`
	} `json:"data"`
}

// Order returns the created order id, if any.
func (p PaymentReply) Order() string {
	return first(p.OrderID, p.Data.OrderID)
}

// Transaction returns the client or gateway transaction id, if any.
func (p PaymentReply) Transaction() string {
	return first(p.ClientTxnID, p.TransactionID, p.Data.ClientTxnID, p.Data.TransactionID)
}

// URL returns the hosted checkout page, if any.
func (p PaymentReply) URL() string {
	return first(p.PaymentURL, p.Data.PaymentURL)
}

type OrderStatusResponse struct {
	Outcome
	Data models.Order `json:"data"`
}

type OrderHistoryResponse struct {
	Outcome
	Orders []models.Order `json:"orders"`
}

type TransactionStatusResponse struct {
	Outcome
	Data models.Transaction `json:"data"`
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

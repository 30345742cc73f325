package flow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrMissingFields is wrapped by MissingFieldsError.
	ErrMissingFields = errors.New("missing validation fields")
	// ErrLoginRequired means the action needs an authenticated session.
	ErrLoginRequired = errors.New("login required")
	// ErrNoSelection means checkout was opened without a selected pack.
	ErrNoSelection = errors.New("no pack selected")
	// ErrUnknownMethod is an unsupported payment method.
	ErrUnknownMethod = errors.New("unknown payment method")
	// ErrNoPaymentLink means the gateway reply carried no checkout URL.
	ErrNoPaymentLink = errors.New("payment link unavailable")
	// ErrPackNotFound means the chosen pack is not part of the game.
	ErrPackNotFound = errors.New("diamond pack not found")
)

// MissingFieldsError lists the labels of empty validation fields.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Please fill in: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingFields }

// RejectedError is an identity the game provider refused.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return e.Message }

// InsufficientBalanceError pre-empts a wallet payment the balance cannot cover.
type InsufficientBalanceError struct {
	Balance decimal.Decimal
	Amount  decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Insufficient CRED Coins: balance %s, pack costs %s", e.Balance.String(), e.Amount.String())
}

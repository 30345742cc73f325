package flow

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/all-in-store/internal/clientstore"
	"github.com/hongminglow/all-in-store/internal/models"
	"github.com/hongminglow/all-in-store/internal/models/dto"
)

// Method is a checkout payment method.
type Method string

const (
	MethodWallet Method = "wallet"
	MethodUPI    Method = "upi"
)

// ParseMethod accepts the form value of the payment method picker.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodWallet, MethodUPI:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// CheckoutAPI is the part of the remote API checkout talks to.
type CheckoutAPI interface {
	Me(ctx context.Context) (models.UserProfile, error)
	CreateWalletOrder(ctx context.Context, body map[string]any) (dto.PaymentReply, error)
	CreateUPIOrder(ctx context.Context, body map[string]any) (dto.PaymentReply, error)
}

// CheckoutContext is what the checkout screen renders.
type CheckoutContext struct {
	Pack    models.SelectedPackDetails
	User    models.UserProfile
	Balance decimal.Decimal
}

// CanPayWithWallet reports whether the balance covers the pack.
func (c CheckoutContext) CanPayWithWallet() bool {
	return c.Balance.GreaterThanOrEqual(c.Pack.Amount)
}

// PayResult is where the browser goes after a successful payment call.
type PayResult struct {
	Location string
	// External is set for payment-gateway URLs outside this site.
	External bool
	// User is the refreshed profile after a wallet purchase; nil when the
	// refetch failed or the method does not touch the wallet.
	User *models.UserProfile
}

// Checkout places orders for the selected pack.
type Checkout struct {
	api         CheckoutAPI
	redirectURL string
}

// NewCheckout builds a Checkout. redirectURL is where the payment gateway
// sends the browser back to.
func NewCheckout(api CheckoutAPI, redirectURL string) *Checkout {
	return &Checkout{api: api, redirectURL: redirectURL}
}

// LoadContext reads the selected pack and the current wallet balance.
func (c *Checkout) LoadContext(ctx context.Context, session *clientstore.Session) (CheckoutContext, error) {
	pack, ok := session.SelectedPack()
	if !ok {
		return CheckoutContext{}, ErrNoSelection
	}
	user, err := c.api.Me(ctx)
	if err != nil {
		return CheckoutContext{Pack: pack}, fmt.Errorf("load wallet balance: %w", err)
	}
	return CheckoutContext{Pack: pack, User: user, Balance: user.WalletBalance}, nil
}

// ChoosePaymentMethod rejects a wallet payment the balance cannot cover. The
// server stays authoritative; this only saves a doomed round trip.
func ChoosePaymentMethod(method Method, balance, amount decimal.Decimal) error {
	switch method {
	case MethodUPI:
		return nil
	case MethodWallet:
		if balance.LessThan(amount) {
			return &InsufficientBalanceError{Balance: balance, Amount: amount}
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

// OrderBody is the order request for pack: the pack id, a quantity of one and
// every validation-field value at the top level.
func OrderBody(pack models.SelectedPackDetails) map[string]any {
	body := make(map[string]any, len(pack.Fields)+2)
	for k, v := range pack.Fields {
		body[k] = v
	}
	body["diamondPackId"] = pack.PackID
	body["quantity"] = 1
	return body
}

// Pay places the order and clears the selection on success.
func (c *Checkout) Pay(ctx context.Context, session *clientstore.Session, method Method, pack models.SelectedPackDetails) (PayResult, error) {
	var (
		res PayResult
		err error
	)
	switch method {
	case MethodWallet:
		res, err = c.payWithWallet(ctx, pack)
	case MethodUPI:
		res, err = c.payWithUPI(ctx, pack)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if err != nil {
		return PayResult{}, err
	}
	if err := session.ClearSelectedPack(ctx); err != nil {
		return PayResult{}, fmt.Errorf("clear selected pack: %w", err)
	}
	return res, nil
}

func (c *Checkout) payWithWallet(ctx context.Context, pack models.SelectedPackDetails) (PayResult, error) {
	reply, err := c.api.CreateWalletOrder(ctx, OrderBody(pack))
	if err != nil {
		return PayResult{}, fmt.Errorf("wallet order: %w", err)
	}

	res := PayResult{Location: nextAfterOrder(reply)}
	if user, err := c.api.Me(ctx); err == nil {
		res.User = &user
	}
	return res, nil
}

func (c *Checkout) payWithUPI(ctx context.Context, pack models.SelectedPackDetails) (PayResult, error) {
	body := OrderBody(pack)
	body["redirectUrl"] = c.redirectURL

	reply, err := c.api.CreateUPIOrder(ctx, body)
	if err != nil {
		return PayResult{}, fmt.Errorf("upi order: %w", err)
	}
	if reply.URL() == "" {
		return PayResult{}, ErrNoPaymentLink
	}
	return PayResult{Location: reply.URL(), External: true}, nil
}

func nextAfterOrder(reply dto.PaymentReply) string {
	if id := reply.Order(); id != "" {
		return "/order-status?" + url.Values{"orderId": {id}}.Encode()
	}
	if txn := reply.Transaction(); txn != "" {
		return "/payment-status?" + url.Values{"client_txn_id": {txn}}.Encode()
	}
	return "/dashboard"
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/all-in-store/internal/auth"
	"github.com/hongminglow/all-in-store/internal/flow"
	"github.com/hongminglow/all-in-store/internal/middleware"
)

// CheckoutHandler serves checkout and the order/payment status screens.
type CheckoutHandler struct {
	*Screens
	checkout *flow.Checkout
	status   *flow.Status
}

// NewCheckoutHandler constructs the handler.
func NewCheckoutHandler(screens *Screens, checkout *flow.Checkout, status *flow.Status) *CheckoutHandler {
	return &CheckoutHandler{Screens: screens, checkout: checkout, status: status}
}

// Register attaches checkout routes behind ProtectedRoute.
func (h *CheckoutHandler) Register(r chi.Router, guards *middleware.Guards) {
	r.Group(func(r chi.Router) {
		r.Use(guards.Protected)
		r.Get("/checkout", h.showCheckout)
		r.Post("/checkout", h.pay)
		r.Get("/order-status", h.orderStatus)
		r.Get("/payment-status", h.paymentStatus)
	})
}

type checkoutData struct {
	Context flow.CheckoutContext
	Method  flow.Method
}

func defaultMethod(cc flow.CheckoutContext) flow.Method {
	if cc.CanPayWithWallet() {
		return flow.MethodWallet
	}
	return flow.MethodUPI
}

func (h *CheckoutHandler) loadContext(w http.ResponseWriter, r *http.Request) (flow.CheckoutContext, bool) {
	cc, err := h.checkout.LoadContext(r.Context(), sessionFrom(r))
	switch {
	case errors.Is(err, flow.ErrNoSelection):
		h.flash(r, flashInfo, "Pick a pack to check out.")
		h.redirect(w, r, "/")
		return cc, false
	case err != nil:
		h.failAPI(w, r, err)
		return cc, false
	}
	storeFrom(r).Dispatch(auth.RefreshUser(cc.User))
	return cc, true
}

func (h *CheckoutHandler) showCheckout(w http.ResponseWriter, r *http.Request) {
	cc, ok := h.loadContext(w, r)
	if !ok {
		return
	}
	h.page(w, r, http.StatusOK, "checkout", "Checkout", checkoutData{Context: cc, Method: defaultMethod(cc)}, "")
}

func (h *CheckoutHandler) pay(w http.ResponseWriter, r *http.Request) {
	cc, ok := h.loadContext(w, r)
	if !ok {
		return
	}

	method, err := flow.ParseMethod(r.PostFormValue("method"))
	if err == nil {
		err = flow.ChoosePaymentMethod(method, cc.Balance, cc.Pack.Amount)
	}
	if err != nil {
		h.page(w, r, http.StatusUnprocessableEntity, "checkout", "Checkout", checkoutData{Context: cc, Method: defaultMethod(cc)}, userMessage(err))
		return
	}

	res, err := h.checkout.Pay(r.Context(), sessionFrom(r), method, cc.Pack)
	if err != nil {
		h.logger.Warnw("payment failed", "method", method, "pack", cc.Pack.PackID, "error", err)
		status := http.StatusUnprocessableEntity
		if !errors.Is(err, flow.ErrNoPaymentLink) {
			status = statusFor(err)
		}
		h.page(w, r, status, "checkout", "Checkout", checkoutData{Context: cc, Method: method}, userMessage(err))
		return
	}

	if res.User != nil {
		storeFrom(r).Dispatch(auth.RefreshUser(*res.User))
	}
	if res.External {
		http.Redirect(w, r, res.Location, http.StatusSeeOther)
		return
	}
	h.flash(r, flashSuccess, "Order placed.")
	h.redirect(w, r, res.Location)
}

type statusRow struct {
	Label string
	Value string
}

type statusData struct {
	Display flow.Display
	Rows    []statusRow
}

func rows(pairs ...string) []statusRow {
	var out []statusRow
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			out = append(out, statusRow{Label: pairs[i], Value: pairs[i+1]})
		}
	}
	return out
}

func (h *CheckoutHandler) statusFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, flow.ErrMissingParameter) {
		h.Fail(w, r, http.StatusBadRequest, err)
		return
	}
	h.failAPI(w, r, err)
}

func (h *CheckoutHandler) orderStatus(w http.ResponseWriter, r *http.Request) {
	order, display, err := h.status.Order(r.Context(), r.URL.Query())
	if err != nil {
		h.statusFailure(w, r, err)
		return
	}
	data := statusData{
		Display: display,
		Rows: rows(
			"Order", order.OrderID,
			"Item", order.Description,
			"Amount", order.Amount.StringFixed(2)+" "+order.Currency,
			"Payment method", order.PaymentMethod,
			"Status", order.Status,
		),
	}
	h.page(w, r, http.StatusOK, "status", display.Title, data, "")
}

func (h *CheckoutHandler) paymentStatus(w http.ResponseWriter, r *http.Request) {
	txn, display, err := h.status.Payment(r.Context(), r.URL.Query())
	if err != nil {
		h.statusFailure(w, r, err)
		return
	}
	data := statusData{
		Display: display,
		Rows: rows(
			"Transaction", txn.ClientTxnID,
			"Order", txn.OrderID,
			"Amount", txn.Amount.StringFixed(2),
			"UTR", txn.UTR,
			"Name", txn.CustomerName,
			"Status", txn.Status,
		),
	}
	h.page(w, r, http.StatusOK, "status", display.Title, data, "")
}

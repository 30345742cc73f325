package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/hongminglow/all-in-store/internal/auth"
	"github.com/hongminglow/all-in-store/internal/flow"
	"github.com/hongminglow/all-in-store/internal/middleware"
	"github.com/hongminglow/all-in-store/internal/models"
	"github.com/hongminglow/all-in-store/internal/models/dto"
)

const maxPictureBytes = 5 << 20

var (
	errInvalidAmount = errors.New("enter an amount greater than zero")
	errMissingName   = errors.New("name is required")
)

// AccountAPI is the part of the remote API behind the account screens.
type AccountAPI interface {
	Dashboard(ctx context.Context) (dto.DashboardStats, error)
	Leaderboard(ctx context.Context) ([]dto.LeaderboardEntry, error)
	OrderHistory(ctx context.Context) ([]models.Order, error)
	AddWalletCoins(ctx context.Context, req dto.WalletAddRequest) (dto.PaymentReply, error)
	UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest) (dto.ProfileResponse, error)
	UploadProfilePicture(ctx context.Context, filename string, file io.Reader) (dto.ProfileResponse, error)
}

// AccountHandler serves the signed-in screens: dashboard, leaderboard,
// order history, profile and wallet.
type AccountHandler struct {
	*Screens
	api       AccountAPI
	catalog   Catalog
	returnURL string
}

// NewAccountHandler constructs the handler. returnURL is where the payment
// gateway sends the browser after a coin top-up.
func NewAccountHandler(screens *Screens, api AccountAPI, catalog Catalog, returnURL string) *AccountHandler {
	return &AccountHandler{Screens: screens, api: api, catalog: catalog, returnURL: returnURL}
}

// Register attaches account routes behind ProtectedRoute.
func (h *AccountHandler) Register(r chi.Router, guards *middleware.Guards) {
	r.Group(func(r chi.Router) {
		r.Use(guards.Protected)
		r.Get("/dashboard", h.dashboard)
		r.Get("/leaderboard", h.leaderboard)
		r.Get("/orders", h.orders)
		r.Get("/account", h.showAccount)
		r.Post("/account/profile", h.updateProfile)
		r.Post("/account/picture", h.uploadPicture)
		r.Get("/wallet", h.showWallet)
		r.Post("/wallet", h.addCoins)
	})
}

type dashboardData struct {
	Stats      *dto.DashboardStats
	StatsError string
	Games      []models.Game
	GamesError string
}

// dashboard fetches stats and games concurrently. Each slice fails on its own.
func (h *AccountHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	var (
		data              dashboardData
		statsErr, gameErr error
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		stats, err := h.api.Dashboard(ctx)
		if err != nil {
			statsErr = err
			return nil
		}
		data.Stats = &stats
		return nil
	})
	g.Go(func() error {
		data.Games, gameErr = h.catalog.Games(ctx)
		return nil
	})
	_ = g.Wait()

	if statsErr != nil {
		h.logger.Warnw("dashboard stats", "error", statsErr)
		data.StatsError = userMessage(statsErr)
	}
	if gameErr != nil {
		h.logger.Warnw("dashboard games", "error", gameErr)
		data.GamesError = userMessage(gameErr)
	}
	h.page(w, r, http.StatusOK, "dashboard", "Dashboard", data, "")
}

type leaderboardData struct {
	Entries []dto.LeaderboardEntry
}

func (h *AccountHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.api.Leaderboard(r.Context())
	if err != nil {
		h.logger.Warnw("leaderboard", "error", err)
		h.page(w, r, http.StatusOK, "leaderboard", "Leaderboard", leaderboardData{}, userMessage(err))
		return
	}
	h.page(w, r, http.StatusOK, "leaderboard", "Leaderboard", leaderboardData{Entries: entries}, "")
}

type ordersData struct {
	Orders []models.Order
}

func (h *AccountHandler) orders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.api.OrderHistory(r.Context())
	if err != nil {
		h.logger.Warnw("order history", "error", err)
		h.page(w, r, http.StatusOK, "orders", "Orders", ordersData{}, userMessage(err))
		return
	}
	h.page(w, r, http.StatusOK, "orders", "Orders", ordersData{Orders: orders}, "")
}

type accountData struct {
	User *models.UserProfile
}

func (h *AccountHandler) showAccount(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusOK, "account", "Account", accountData{User: storeFrom(r).State().User}, "")
}

func (h *AccountHandler) refresh(r *http.Request, reply dto.ProfileResponse) {
	if reply.User != nil {
		storeFrom(r).Dispatch(auth.RefreshUser(*reply.User))
	}
}

func (h *AccountHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	req := dto.UpdateProfileRequest{Name: formValue(r, "name"), Email: formValue(r, "email")}
	if req.Name == "" {
		h.flash(r, flashError, userMessage(errMissingName))
		h.redirect(w, r, "/account")
		return
	}

	reply, err := h.api.UpdateProfile(r.Context(), req)
	if err != nil {
		h.flash(r, flashError, userMessage(err))
		h.redirect(w, r, "/account")
		return
	}
	h.refresh(r, reply)
	h.flash(r, flashSuccess, "Profile updated.")
	h.redirect(w, r, "/account")
}

func (h *AccountHandler) uploadPicture(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPictureBytes+(1<<10))
	if err := r.ParseMultipartForm(maxPictureBytes); err != nil {
		h.flash(r, flashError, "Choose an image smaller than 5 MB.")
		h.redirect(w, r, "/account")
		return
	}
	file, header, err := r.FormFile("picture")
	if err != nil {
		h.flash(r, flashError, "Choose an image to upload.")
		h.redirect(w, r, "/account")
		return
	}
	defer file.Close()

	reply, err := h.api.UploadProfilePicture(r.Context(), header.Filename, file)
	if err != nil {
		h.flash(r, flashError, userMessage(err))
		h.redirect(w, r, "/account")
		return
	}
	h.refresh(r, reply)
	h.flash(r, flashSuccess, "Profile picture updated.")
	h.redirect(w, r, "/account")
}

type walletData struct {
	Balance decimal.Decimal
	Amount  string
}

func balanceOf(st auth.State) decimal.Decimal {
	if st.User == nil {
		return decimal.Zero
	}
	return st.User.WalletBalance
}

func (h *AccountHandler) showWallet(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusOK, "wallet", "Wallet", walletData{Balance: balanceOf(storeFrom(r).State())}, "")
}

func (h *AccountHandler) addCoins(w http.ResponseWriter, r *http.Request) {
	raw := formValue(r, "amount")
	data := walletData{Balance: balanceOf(storeFrom(r).State()), Amount: raw}

	amount, err := decimal.NewFromString(raw)
	if err != nil || !amount.IsPositive() {
		h.page(w, r, http.StatusUnprocessableEntity, "wallet", "Wallet", data, userMessage(errInvalidAmount))
		return
	}

	reply, err := h.api.AddWalletCoins(r.Context(), dto.WalletAddRequest{Amount: amount, RedirectURL: h.returnURL})
	if err == nil && reply.URL() == "" {
		err = flow.ErrNoPaymentLink
	}
	if err != nil {
		h.logger.Warnw("wallet top-up failed", "error", err)
		h.page(w, r, http.StatusUnprocessableEntity, "wallet", "Wallet", data, userMessage(err))
		return
	}
	http.Redirect(w, r, reply.URL(), http.StatusSeeOther)
}

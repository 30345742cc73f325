package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/all-in-store/internal/apiclient"
	"github.com/hongminglow/all-in-store/internal/flow"
	"github.com/hongminglow/all-in-store/internal/forms"
	"github.com/hongminglow/all-in-store/internal/http/respond"
	"github.com/hongminglow/all-in-store/internal/middleware"
	"github.com/hongminglow/all-in-store/internal/models"
)

// Catalog lists games and their packs, usually through the cache.
type Catalog interface {
	Games(ctx context.Context) ([]models.Game, error)
	flow.GameSource
}

// ShopHandler serves the catalog and the game top-up screens.
type ShopHandler struct {
	*Screens
	catalog Catalog
	topup   *flow.TopUp
}

// NewShopHandler constructs the handler.
func NewShopHandler(screens *Screens, catalog Catalog, topup *flow.TopUp) *ShopHandler {
	return &ShopHandler{Screens: screens, catalog: catalog, topup: topup}
}

// Register attaches shop routes. They are open to everyone; Optional tells
// the handlers who is browsing.
func (h *ShopHandler) Register(r chi.Router, guards *middleware.Guards) {
	r.Group(func(r chi.Router) {
		r.Use(guards.Optional)
		r.Get("/", h.showCatalog)
		r.Get("/games/{gameID}", h.showGame)
		r.Post("/games/{gameID}/validate", h.validate)
		r.Post("/games/{gameID}/packs/{packID}", h.selectPack)
	})
}

type catalogData struct {
	Games []models.Game
}

func (h *ShopHandler) showCatalog(w http.ResponseWriter, r *http.Request) {
	games, err := h.catalog.Games(r.Context())
	if err != nil {
		h.logger.Warnw("list games", "error", err)
		h.page(w, r, http.StatusOK, "catalog", "", catalogData{}, userMessage(err))
		return
	}
	h.page(w, r, http.StatusOK, "catalog", "", catalogData{Games: games}, "")
}

type topUpData struct {
	View    flow.TopUpView
	Fields  []forms.Field
	Visible []models.DiamondPack
	Values  map[string]string
	Result  *models.ValidationResult
}

func (h *ShopHandler) renderGame(w http.ResponseWriter, r *http.Request, status int, view flow.TopUpView, values map[string]string, result *models.ValidationResult, errMsg string) {
	data := topUpData{
		View:    view,
		Fields:  forms.Render(view.Game, values),
		Visible: view.Visible(),
		Values:  values,
		Result:  result,
	}
	h.page(w, r, status, "topup", view.Game.Name, data, errMsg)
}

func (h *ShopHandler) showGame(w http.ResponseWriter, r *http.Request) {
	view, err := h.topup.LoadGame(r.Context(), chi.URLParam(r, "gameID"), r.URL.Query().Get("category"))
	if err != nil {
		h.failAPI(w, r, err)
		return
	}
	h.renderGame(w, r, http.StatusOK, view, nil, nil, "")
}

func submittedFields(r *http.Request, game models.Game) map[string]string {
	out := make(map[string]string, len(game.ValidationFields))
	for _, name := range game.ValidationFields {
		out[name] = r.PostFormValue(name)
	}
	return out
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (h *ShopHandler) validate(w http.ResponseWriter, r *http.Request) {
	view, err := h.topup.LoadGame(r.Context(), chi.URLParam(r, "gameID"), r.PostFormValue("category"))
	if err != nil {
		if wantsJSON(r) {
			respond.Error(w, r, statusFor(err), userMessage(err))
			return
		}
		h.failAPI(w, r, err)
		return
	}

	result, values, err := h.topup.ValidateIdentity(r.Context(), view.Game, submittedFields(r, view.Game))
	if err != nil {
		status := validationStatus(err)
		if wantsJSON(r) {
			respond.Error(w, r, status, userMessage(err))
			return
		}
		h.renderGame(w, r, status, view, values, nil, userMessage(err))
		return
	}

	if wantsJSON(r) {
		respond.JSON(w, r, http.StatusOK, "player validated", result)
		return
	}
	h.renderGame(w, r, http.StatusOK, view, values, &result, "")
}

// validationStatus answers 422 whenever the player details were refused,
// including a provider check that replied with a 4xx.
func validationStatus(err error) int {
	var (
		rejected *flow.RejectedError
		apiErr   *apiclient.APIError
	)
	switch {
	case errors.Is(err, flow.ErrMissingFields), errors.As(err, &rejected):
		return http.StatusUnprocessableEntity
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
		return http.StatusUnprocessableEntity
	default:
		return statusFor(err)
	}
}

func (h *ShopHandler) selectPack(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	view, err := h.topup.LoadGame(r.Context(), gameID, "")
	if err != nil {
		h.failAPI(w, r, err)
		return
	}
	gamePath := "/games/" + url.PathEscape(gameID)

	pack, ok := view.Pack(chi.URLParam(r, "packID"))
	if !ok {
		h.flash(r, flashError, userMessage(flow.ErrPackNotFound))
		h.redirect(w, r, gamePath)
		return
	}

	result := models.ValidationResult{Name: formValue(r, "_playerName"), Server: formValue(r, "_server")}
	_, err = flow.SelectPack(r.Context(), sessionFrom(r), storeFrom(r).State(), view.Game, pack, submittedFields(r, view.Game), result)
	switch {
	case errors.Is(err, flow.ErrLoginRequired):
		if err := sessionFrom(r).SetIntendedPath(r.Context(), gamePath); err != nil {
			h.logger.Warnw("record intended path", "error", err)
		}
		h.flash(r, flashInfo, "Please log in to buy this pack.")
		h.redirect(w, r, "/login")
	case err != nil:
		h.flash(r, flashError, userMessage(err))
		h.redirect(w, r, gamePath)
	default:
		h.redirect(w, r, "/checkout")
	}
}

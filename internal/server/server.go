package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hongminglow/all-in-store/internal/auth"
	"github.com/hongminglow/all-in-store/internal/config"
	"github.com/hongminglow/all-in-store/internal/flow"
	"github.com/hongminglow/all-in-store/internal/http/handlers"
	"github.com/hongminglow/all-in-store/internal/middleware"
	"github.com/hongminglow/all-in-store/internal/storage"
	"github.com/hongminglow/all-in-store/internal/views"
)

// API is everything the storefront asks of the remote backend.
type API interface {
	flow.AuthAPI
	flow.CheckoutAPI
	flow.StatusAPI
	flow.IdentityValidator
	handlers.AccountAPI
}

// Deps are the long-lived collaborators shared by every request.
type Deps struct {
	API      API
	Catalog  handlers.Catalog
	Sessions storage.SessionStore
	Views    *views.Renderer
	Logger   *zap.SugaredLogger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// NewHandler builds the full route table.
func NewHandler(cfg config.Config, deps Deps) http.Handler {
	screens := handlers.NewScreens(deps.Views, deps.Logger)
	guards := middleware.NewGuards(deps.API, deps.Logger, screens.Fail)
	signer := auth.NewCookieSigner(cfg.SessionSecret, cfg.SessionIssuer, cfg.SessionTTL)
	sessions := middleware.NewSessions(deps.Sessions, signer, cfg.CookieSecure, deps.Logger)
	returnURL := cfg.PublicURL("/payment-status")

	r := chi.NewRouter()
	r.Use(
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logging(deps.Logger),
		middleware.SecurityHeaders,
		middleware.CORS(cfg.CORSOrigins),
	)

	handlers.NewHealthHandler(time.Now()).Register(r)

	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)
		r.Get("/session", handlers.SessionSnapshot)

		handlers.NewShopHandler(screens, deps.Catalog, flow.NewTopUp(deps.Catalog, deps.API)).Register(r, guards)
		handlers.NewAuthHandler(screens, flow.NewOTP(deps.API)).Register(r, guards)
		handlers.NewCheckoutHandler(screens, flow.NewCheckout(deps.API, returnURL), flow.NewStatus(deps.API)).Register(r, guards)
		handlers.NewAccountHandler(screens, deps.API, deps.Catalog, returnURL).Register(r, guards)
	})

	return r
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}

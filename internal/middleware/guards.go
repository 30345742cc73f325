package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/all-in-store/internal/apiclient"
	"github.com/hongminglow/all-in-store/internal/auth"
	"github.com/hongminglow/all-in-store/internal/clientstore"
	"github.com/hongminglow/all-in-store/internal/models"
)

// ErrSessionRejected means the backend refused the persisted token.
var ErrSessionRejected = errors.New("session rejected")

// Verifier fetches the profile behind the current token.
type Verifier interface {
	Me(ctx context.Context) (models.UserProfile, error)
}

// ErrorRenderer draws the error screen used when verification cannot reach
// the backend.
type ErrorRenderer func(w http.ResponseWriter, r *http.Request, status int, err error)

// Guards implements ProtectedRoute, PublicRoute and the AuthChecker.
type Guards struct {
	api     Verifier
	logger  *zap.SugaredLogger
	onError ErrorRenderer
}

func NewGuards(api Verifier, logger *zap.SugaredLogger, onError ErrorRenderer) *Guards {
	return &Guards{api: api, logger: logger, onError: onError}
}

// Check is the AuthChecker: one profile fetch with the stored token. A
// non-2xx reply purges the durable token; a network failure keeps it.
func (g *Guards) Check(ctx context.Context, store *auth.Store, session *clientstore.Session) error {
	token := store.State().Token
	if token == "" {
		token = session.AuthToken()
	}

	store.Dispatch(auth.CheckAuthStart())
	user, err := g.api.Me(apiclient.WithToken(ctx, token))
	if err == nil {
		store.Dispatch(auth.CheckAuthSuccess(user, token))
		return nil
	}

	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		// Unverified but kept: the next screen mount retries.
		store.Dispatch(auth.InitializeAuth(token))
		return fmt.Errorf("verify session: %w", err)
	}

	if !apiclient.IsUnauthorized(err) {
		g.logger.Infow("session rejected with unexpected status", "status", apiErr.Status)
	}
	store.Dispatch(auth.CheckAuthFailure(apiclient.Message(err)))
	if store.PurgeToken() {
		if err := session.ClearAuthToken(ctx); err != nil {
			g.logger.Warnw("purge rejected token", "error", err)
		}
	}
	return fmt.Errorf("%w: %w", ErrSessionRejected, err)
}

func (g *Guards) redirectToLogin(w http.ResponseWriter, r *http.Request, session *clientstore.Session) {
	if err := session.SetIntendedPath(r.Context(), intendedPath(r)); err != nil {
		g.logger.Warnw("record intended path", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// intendedPath is the location to resume after login. Form posts resume at
// the screen that owns the form.
func intendedPath(r *http.Request) string {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return r.URL.RequestURI()
	}
	return r.URL.Path
}

// Protected only lets authenticated sessions through.
func (g *Guards) Protected(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		store := auth.FromContext(ctx)
		session := clientstore.FromContext(ctx)
		if store == nil || session == nil {
			http.Error(w, "session middleware missing", http.StatusInternalServerError)
			return
		}

		switch auth.DecideProtected(store.State(), session.AuthToken()) {
		case auth.Allow:
			next.ServeHTTP(w, r)
		case auth.RedirectLogin:
			g.redirectToLogin(w, r, session)
		default:
			err := g.Check(ctx, store, session)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, ErrSessionRejected):
				g.redirectToLogin(w, r, session)
			default:
				g.logger.Warnw("session verification unavailable", "error", err, "request_id", apiclient.RequestIDFrom(ctx))
				g.onError(w, r, http.StatusServiceUnavailable, err)
			}
		}
	})
}

// Public redirects authenticated sessions away from login-style screens.
// The OTP screen never redirects.
func (g *Guards) Public(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		store := auth.FromContext(ctx)
		session := clientstore.FromContext(ctx)
		if store == nil || session == nil {
			http.Error(w, "session middleware missing", http.StatusInternalServerError)
			return
		}

		path := r.URL.Path
		if strings.HasPrefix(path, auth.OTPPath+"/") {
			path = auth.OTPPath
		}

		decision := auth.DecidePublic(store.State(), session.AuthToken(), path)
		if decision == auth.Verify {
			if err := g.Check(ctx, store, session); err != nil && !errors.Is(err, ErrSessionRejected) {
				g.logger.Debugw("session verification unavailable", "error", err)
			}
			decision = auth.DecidePublic(store.State(), session.AuthToken(), path)
		}
		if decision == auth.RedirectHome {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Optional verifies a persisted token when present but never redirects.
// Screens open to everyone use it to know who is browsing.
func (g *Guards) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		store := auth.FromContext(ctx)
		session := clientstore.FromContext(ctx)
		if store != nil && session != nil {
			st := store.State()
			if !st.IsAuthenticated && (st.Token != "" || session.AuthToken() != "") {
				if err := g.Check(ctx, store, session); err != nil {
					g.logger.Debugw("optional session verification failed", "error", err)
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

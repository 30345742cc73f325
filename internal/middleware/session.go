package middleware

import (
	"net/http"
	"time"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/hongminglow/all-in-store/internal/apiclient"
	"github.com/hongminglow/all-in-store/internal/auth"
	"github.com/hongminglow/all-in-store/internal/clientstore"
	"github.com/hongminglow/all-in-store/internal/storage"
)

// SessionCookie names the cookie holding the signed client session id.
const SessionCookie = "store_session"

// Sessions opens the visitor's client session and seeds a fresh Auth Store
// from its persisted token. Both are attached to the request context.
type Sessions struct {
	store  storage.SessionStore
	signer *auth.CookieSigner
	secure bool
	logger *zap.SugaredLogger
}

func NewSessions(store storage.SessionStore, signer *auth.CookieSigner, secure bool, logger *zap.SugaredLogger) *Sessions {
	return &Sessions{store: store, signer: signer, secure: secure, logger: logger}
}

func (s *Sessions) sessionID(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err == nil {
		if id, err := s.signer.Verify(c.Value); err == nil {
			return id
		}
		s.logger.Debugw("discarding session cookie", "request_id", apiclient.RequestIDFrom(r.Context()))
	}
	return ksuid.New().String()
}

func (s *Sessions) setCookie(w http.ResponseWriter, id string) error {
	signed, err := s.signer.Sign(id)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    signed,
		Path:     "/",
		Expires:  time.Now().Add(s.signer.TTL()),
		MaxAge:   int(s.signer.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Middleware attaches the client session and Auth Store to each request.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := s.sessionID(r)

		session, err := clientstore.Open(ctx, s.store, id, s.signer.TTL())
		if err != nil {
			s.logger.Errorw("open client session", "error", err, "request_id", apiclient.RequestIDFrom(ctx))
			http.Error(w, "session storage unavailable", http.StatusServiceUnavailable)
			return
		}
		if err := s.setCookie(w, id); err != nil {
			s.logger.Errorw("sign session cookie", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		store := auth.NewStore()
		token := session.AuthToken()
		store.Dispatch(auth.InitializeAuth(token))

		ctx = clientstore.WithSession(ctx, session)
		ctx = auth.WithStore(ctx, store)
		ctx = apiclient.WithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Package clientstore is the typed client session: the durable per-visitor
// scratch space (token, OTP-flow data, checkout handoff, redirect target).
// Every logical field has its own accessors so key names live in one place.
package clientstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/hongminglow/all-in-store/internal/models"
	"github.com/hongminglow/all-in-store/internal/storage"
)

const (
	keyAuthToken    = "authToken"
	keyLoginData    = "loginData"
	keyLoginPhone   = "loginPhone"
	keyLoginEmail   = "loginEmail"
	keySelectedPack = "selectedPack"
	keyIntendedPath = "intendedPath"
	keyFlash        = "flash"
)

// Login methods stored in LoginData.
const (
	MethodPhone = "phone"
	MethodEmail = "email"
)

// LoginData is the in-progress OTP login.
type LoginData struct {
	Method string `json:"method"`
	Value  string `json:"value"`
}

// Flash is a one-shot message shown on the next rendered screen.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Session is one visitor's client session. Writes go straight to the store.
type Session struct {
	id    string
	store storage.SessionStore
	ttl   time.Duration
	now   func() time.Time

	mu     sync.Mutex
	values map[string]string
}

// Open loads session id from store; an unknown or expired id yields an empty session.
func Open(ctx context.Context, store storage.SessionStore, id string, ttl time.Duration) (*Session, error) {
	values, err := store.Load(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("open client session: %w", err)
		}
		values = make(map[string]string)
	}
	return &Session{id: id, store: store, ttl: ttl, now: time.Now, values: values}, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

func (s *Session) update(ctx context.Context, fn func(values map[string]string)) error {
	s.mu.Lock()
	next := maps.Clone(s.values)
	fn(next)
	s.mu.Unlock()

	var err error
	if len(next) == 0 {
		err = s.store.Delete(ctx, s.id)
	} else {
		err = s.store.Save(ctx, s.id, next, s.now().Add(s.ttl))
	}
	if err != nil {
		return fmt.Errorf("persist client session: %w", err)
	}

	s.mu.Lock()
	s.values = next
	s.mu.Unlock()
	return nil
}

func (s *Session) set(ctx context.Context, key, value string) error {
	return s.update(ctx, func(v map[string]string) { v[key] = value })
}

func (s *Session) del(ctx context.Context, keys ...string) error {
	return s.update(ctx, func(v map[string]string) {
		for _, k := range keys {
			delete(v, k)
		}
	})
}

func (s *Session) getJSON(key string, dst any) bool {
	raw := s.get(key)
	if raw == "" {
		return false
	}
	return json.Unmarshal([]byte(raw), dst) == nil
}

func (s *Session) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.set(ctx, key, string(raw))
}

// AuthToken returns the persisted bearer token.
func (s *Session) AuthToken() string { return s.get(keyAuthToken) }

func (s *Session) SetAuthToken(ctx context.Context, token string) error {
	return s.set(ctx, keyAuthToken, token)
}

func (s *Session) ClearAuthToken(ctx context.Context) error {
	return s.del(ctx, keyAuthToken)
}

// LoginData returns the in-progress OTP login, if any.
func (s *Session) LoginData() (LoginData, bool) {
	var ld LoginData
	ok := s.getJSON(keyLoginData, &ld) && ld.Value != ""
	return ld, ok
}

// SetLoginData records the OTP login and the matching loginPhone/loginEmail key.
func (s *Session) SetLoginData(ctx context.Context, ld LoginData) error {
	raw, err := json.Marshal(ld)
	if err != nil {
		return fmt.Errorf("encode loginData: %w", err)
	}
	return s.update(ctx, func(v map[string]string) {
		v[keyLoginData] = string(raw)
		delete(v, keyLoginPhone)
		delete(v, keyLoginEmail)
		if ld.Method == MethodEmail {
			v[keyLoginEmail] = ld.Value
		} else {
			v[keyLoginPhone] = ld.Value
		}
	})
}

// ClearLoginData drops loginData but keeps loginPhone/loginEmail for registration prefill.
func (s *Session) ClearLoginData(ctx context.Context) error {
	return s.del(ctx, keyLoginData)
}

// ClearLoginFlow drops every OTP-flow key.
func (s *Session) ClearLoginFlow(ctx context.Context) error {
	return s.del(ctx, keyLoginData, keyLoginPhone, keyLoginEmail)
}

func (s *Session) LoginPhone() string { return s.get(keyLoginPhone) }
func (s *Session) LoginEmail() string { return s.get(keyLoginEmail) }

// SelectedPack returns the checkout handoff, if any.
func (s *Session) SelectedPack() (models.SelectedPackDetails, bool) {
	var p models.SelectedPackDetails
	ok := s.getJSON(keySelectedPack, &p) && p.PackID != ""
	return p, ok
}

func (s *Session) SetSelectedPack(ctx context.Context, p models.SelectedPackDetails) error {
	return s.setJSON(ctx, keySelectedPack, p)
}

func (s *Session) ClearSelectedPack(ctx context.Context) error {
	return s.del(ctx, keySelectedPack)
}

func (s *Session) IntendedPath() string { return s.get(keyIntendedPath) }

func (s *Session) SetIntendedPath(ctx context.Context, path string) error {
	return s.set(ctx, keyIntendedPath, path)
}

// TakeIntendedPath returns and clears the post-login redirect target.
func (s *Session) TakeIntendedPath(ctx context.Context) (string, error) {
	path := s.IntendedPath()
	if path == "" {
		return "", nil
	}
	return path, s.del(ctx, keyIntendedPath)
}

// AddFlash queues a message for the next rendered screen.
func (s *Session) AddFlash(ctx context.Context, kind, message string) error {
	var flashes []Flash
	s.getJSON(keyFlash, &flashes)
	return s.setJSON(ctx, keyFlash, append(flashes, Flash{Kind: kind, Message: message}))
}

// TakeFlashes returns and clears queued messages.
func (s *Session) TakeFlashes(ctx context.Context) ([]Flash, error) {
	var flashes []Flash
	if !s.getJSON(keyFlash, &flashes) {
		return nil, nil
	}
	return flashes, s.del(ctx, keyFlash)
}

// Destroy removes every key of the session.
func (s *Session) Destroy(ctx context.Context) error {
	return s.update(ctx, func(v map[string]string) { clear(v) })
}

type sessionKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session attached to ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

package auth

import (
	"context"
	"sync"

	"github.com/hongminglow/all-in-store/internal/models"
)

// State is the serializable authentication state of one client session.
type State struct {
	IsAuthenticated bool                `json:"isAuthenticated"`
	User            *models.UserProfile `json:"user"`
	Token           string              `json:"-"`
	IsLoading       bool                `json:"isLoading"`
	Error           string              `json:"error,omitempty"`
}

// Action is one of the named transitions of the Auth Store. The set is
// closed: only constructors in this package produce actions.
type Action interface {
	apply(State) State
}

type actionFunc func(State) State

func (f actionFunc) apply(s State) State { return f(s) }

func start() Action {
	return actionFunc(func(s State) State {
		s.IsLoading = true
		s.Error = ""
		return s
	})
}

func success(user models.UserProfile, token string) Action {
	return actionFunc(func(s State) State {
		u := user
		return State{IsAuthenticated: true, User: &u, Token: token}
	})
}

func failure(msg string) Action {
	return actionFunc(func(s State) State {
		return State{Error: msg}
	})
}

func LoginStart() Action                                   { return start() }
func LoginSuccess(u models.UserProfile, tok string) Action { return success(u, tok) }
func LoginFailure(msg string) Action                       { return failure(msg) }

func RegisterStart() Action                                   { return start() }
func RegisterSuccess(u models.UserProfile, tok string) Action { return success(u, tok) }
func RegisterFailure(msg string) Action                       { return failure(msg) }

func CheckAuthStart() Action                                   { return start() }
func CheckAuthSuccess(u models.UserProfile, tok string) Action { return success(u, tok) }

// CheckAuthFailure clears the session and tells the caller to purge the
// durable token (see Store.PurgeToken).
func CheckAuthFailure(msg string) Action {
	return checkAuthFailure{msg: msg}
}

type checkAuthFailure struct{ msg string }

func (a checkAuthFailure) apply(State) State { return State{Error: a.msg} }

// Logout resets to the initial state. The caller purges the durable token.
func Logout() Action {
	return actionFunc(func(State) State { return State{} })
}

// InitializeAuth copies a persisted token into the store without marking the
// session authenticated. Only a successful profile fetch authenticates.
func InitializeAuth(token string) Action {
	return actionFunc(func(State) State { return State{Token: token} })
}

// RefreshUser patches the cached profile of an authenticated session.
func RefreshUser(u models.UserProfile) Action {
	return actionFunc(func(s State) State {
		if !s.IsAuthenticated {
			return s
		}
		user := u
		s.User = &user
		return s
	})
}

// Store holds the State of one client session for the lifetime of a request.
type Store struct {
	mu    sync.Mutex
	state State
	purge bool
}

// NewStore returns an anonymous store.
func NewStore() *Store {
	return &Store{}
}

// Dispatch applies a to the current state.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = a.apply(s.state)
	if _, ok := a.(checkAuthFailure); ok {
		s.purge = true
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// PurgeToken reports whether a CheckAuthFailure was dispatched.
func (s *Store) PurgeToken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purge
}

type storeKey struct{}

// WithStore attaches s to ctx.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// FromContext returns the store attached to ctx, or a fresh anonymous one.
func FromContext(ctx context.Context) *Store {
	if s, ok := ctx.Value(storeKey{}).(*Store); ok {
		return s
	}
	return NewStore()
}

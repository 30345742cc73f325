package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a session does not exist or has expired.
var ErrNotFound = errors.New("record not found")

// SessionStore persists the key/value scratch space of one client session.
type SessionStore interface {
	Load(ctx context.Context, id string) (map[string]string, error)
	Save(ctx context.Context, id string, values map[string]string, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// Sweeper is implemented by stores that can purge expired sessions.
type Sweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

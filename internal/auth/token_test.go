package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestCookieSignerRoundTrip(t *testing.T) {
	s := NewCookieSigner(secret, "all-in-store", time.Hour)

	raw, err := s.Sign("sess-1")
	require.NoError(t, err)

	id, err := s.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", id)
}

func TestCookieSignerRejects(t *testing.T) {
	s := NewCookieSigner(secret, "all-in-store", time.Hour)
	raw, err := s.Sign("sess-1")
	require.NoError(t, err)

	other := NewCookieSigner("another-secret-another-secret-xx", "all-in-store", time.Hour)
	_, err = other.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidCookie)

	wrongIssuer := NewCookieSigner(secret, "someone-else", time.Hour)
	_, err = wrongIssuer.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidCookie)

	later := NewCookieSigner(secret, "all-in-store", time.Hour)
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidCookie)

	_, err = s.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidCookie)
}

package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohits-web03/cloudvault/internal/domain"
)

func TestTokenIssuer(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	userID := uuid.New()

	token, expiresAt, err := issuer.Issue(userID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		got, err := issuer.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		other, err := NewTokenIssuer("other-secret", time.Hour)
		require.NoError(t, err)
		_, err = other.Parse(token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("tampered", func(t *testing.T) {
		t.Parallel()
		_, err := issuer.Parse(token + "x")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		_, err := issuer.Parse("not-a-token")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestTokenIssuer_Expired(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenIssuer("test-secret", time.Minute)
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	t.Parallel()
	_, err := NewTokenIssuer("", time.Hour)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "battery staple"))
	assert.False(t, CheckPassword("", ""), "accounts without a password never match")
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestJWTValidator_RoundTrip(t *testing.T) {
	v, err := NewJWTValidator("secret", "recipebook")
	require.NoError(t, err)

	token, err := v.IssueToken("alice", time.Hour)
	require.NoError(t, err)

	claims, err := v.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestJWTValidator_Rejects(t *testing.T) {
	v, err := NewJWTValidator("secret", "recipebook")
	require.NoError(t, err)

	other, err := NewJWTValidator("other-secret", "recipebook")
	require.NoError(t, err)
	foreign, err := other.IssueToken("alice", time.Hour)
	require.NoError(t, err)

	wrongIssuer, err := NewJWTValidator("secret", "someone-else")
	require.NoError(t, err)
	misissued, err := wrongIssuer.IssueToken("alice", time.Hour)
	require.NoError(t, err)

	expired, err := v.IssueToken("alice", -time.Minute)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "recipebook",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingToken},
		{"garbage", "not-a-jwt", ErrInvalidToken},
		{"wrong key", foreign, ErrInvalidSignature},
		{"wrong issuer", misissued, ErrInvalidClaims},
		{"expired", expired, ErrExpiredToken},
		{"no subject", noSubject, ErrInvalidClaims},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewJWTValidator_RequiresSecret(t *testing.T) {
	_, err := NewJWTValidator("", "recipebook")
	assert.Error(t, err)
}

func TestTokenBucketLimiter(t *testing.T) {
	l := NewTokenBucketLimiter(1, 2, time.Hour)
	defer l.Close()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.mu.Lock()
	l.now = func() time.Time { return now }
	l.mu.Unlock()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "10.0.0.1")
	assert.False(t, ok, "burst exhausted")

	ok, _ = l.Allow(ctx, "10.0.0.2")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Second)
	ok, _ = l.Allow(ctx, "10.0.0.1")
	assert.True(t, ok, "one token refilled")

	require.NoError(t, l.Reset(ctx, "10.0.0.1"))
	ok, _ = l.Allow(ctx, "10.0.0.1")
	assert.True(t, ok)
}

func TestTokenBucketLimiter_Sweep(t *testing.T) {
	l := NewTokenBucketLimiter(1, 1, time.Minute)
	defer l.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.mu.Lock()
	l.now = func() time.Time { return now }
	l.mu.Unlock()

	_, _ = l.Allow(context.Background(), "a")
	now = now.Add(2 * time.Minute)
	l.sweep()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.buckets)
}

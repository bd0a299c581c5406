package auth_test

import (
	"testing"
	"time"

	"github.com/geocoder89/bookshelf/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	m := auth.NewManager("test-secret", auth.DefaultTTL)

	token, err := m.Issue("user-123")
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, 30*24*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestVerify_Expiry(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	base := auth.NewManager("test-secret", auth.DefaultTTL)

	token, err := base.WithClock(fixedClock(issuedAt)).Issue("user-123")
	require.NoError(t, err)

	_, err = base.WithClock(fixedClock(issuedAt.Add(29 * 24 * time.Hour))).Verify(token)
	require.NoError(t, err)

	_, err = base.WithClock(fixedClock(issuedAt.Add(auth.DefaultTTL + time.Second))).Verify(token)
	require.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestVerify_Failures(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	otherSecret, err := auth.NewManager("another-secret", time.Hour).Issue("user-123")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{
		UserID: "user-123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{UserID: "user-123"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	emptySubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "garbage", token: "not-a-token", want: auth.ErrMalformedToken},
		{name: "empty", token: "", want: auth.ErrMalformedToken},
		{name: "rotated secret", token: otherSecret, want: auth.ErrInvalidToken},
		{name: "alg none", token: noneToken, want: auth.ErrInvalidToken},
		{name: "missing exp", token: noExpiry, want: auth.ErrInvalidToken},
		{name: "missing id", token: emptySubject, want: auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIssue_RejectsEmptyUser(t *testing.T) {
	_, err := auth.NewManager("test-secret", time.Hour).Issue(" ")
	require.Error(t, err)
}

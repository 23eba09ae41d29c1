// internal/identity/token_test.go
package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("roundtrip-secret")

	token, err := issuer.Issue("abc123", "reader", "member", "A Reader")
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "abc123", claims.UserID)
	assert.Equal(t, "reader", claims.Username)
	assert.Equal(t, "member", claims.Role)
	assert.Equal(t, "A Reader", claims.Name)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("one").Issue("id", "u", "member", "n")
	require.NoError(t, err)

	_, err = NewTokenIssuer("two").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	_, err := NewTokenIssuer("secret").Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer("secret")

	claims := Claims{
		UserID:   "id",
		Username: "u",
		Role:     "member",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = issuer.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsUnexpectedAlgorithm(t *testing.T) {
	issuer := NewTokenIssuer("secret")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "id"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

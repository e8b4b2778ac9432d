package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "user-account-service/pkg/errors"
)

const testSecret = "test-secret-key-at-least-32-chars-long"

func newTestHelper(t *testing.T, expiry time.Duration) *jwtHelper {
	h, err := NewHelper(testSecret, expiry, "user-account-service")
	require.NoError(t, err)
	return h.(*jwtHelper)
}

func TestNewHelper_EmptySecret(t *testing.T) {
	h, err := NewHelper("", time.Hour, "")
	assert.Error(t, err)
	assert.Nil(t, h)
}

func TestNewHelper_DefaultExpiry(t *testing.T) {
	h := newTestHelper(t, 0)
	assert.Equal(t, DefaultExpiry, h.expiry)
}

func TestGenerateAndVerify_RoundTrip(t *testing.T) {
	h := newTestHelper(t, time.Hour)
	verified := true

	signed, err := h.Generate(Claims{ID: 7, Email: "a@x.com", IsVerified: &verified, Role: "admin"})
	require.NoError(t, err)
	assert.Len(t, strings.Split(signed, "."), 3)

	claims, err := h.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.ID)
	assert.Equal(t, "a@x.com", claims.Email)
	require.NotNil(t, claims.IsVerified)
	assert.True(t, *claims.IsVerified)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "user-account-service", claims.Issuer)
}

func TestGenerate_OptionalClaimsOmitted(t *testing.T) {
	h := newTestHelper(t, time.Hour)

	signed, err := h.Generate(Claims{ID: 1, Email: "a@x.com"})
	require.NoError(t, err)

	claims, err := h.Verify(signed)
	require.NoError(t, err)
	assert.Nil(t, claims.IsVerified)
	assert.Empty(t, claims.Role)
}

func TestVerify_Failures(t *testing.T) {
	h := newTestHelper(t, time.Hour)
	valid, err := h.Generate(Claims{ID: 1, Email: "a@x.com"})
	require.NoError(t, err)

	other, err := NewHelper("another-secret-key-at-least-32-chars", time.Hour, "")
	require.NoError(t, err)
	foreign, err := other.Generate(Claims{ID: 1, Email: "a@x.com"})
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		ID:    1,
		Email: "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed", "not-a-token"},
		{"wrong secret", foreign},
		{"alg none", unsigned},
		{"tampered payload", tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := h.Verify(tt.token)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.True(t, apperrors.IsAuthentication(err))
		})
	}
}

func TestVerify_Expired(t *testing.T) {
	h := newTestHelper(t, time.Minute)
	issued := time.Now().Add(-time.Hour)
	h.now = func() time.Time { return issued }

	signed, err := h.Generate(Claims{ID: 1, Email: "a@x.com"})
	require.NoError(t, err)

	h.now = time.Now
	claims, err := h.Verify(signed)
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.True(t, apperrors.IsAuthentication(err))
	assert.Contains(t, err.Error(), "token expired")
}

func TestVerify_MissingIdentity(t *testing.T) {
	h := newTestHelper(t, time.Hour)

	signed, err := h.Generate(Claims{ID: 0, Email: ""})
	require.NoError(t, err)

	_, err = h.Verify(signed)
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthentication(err))
}

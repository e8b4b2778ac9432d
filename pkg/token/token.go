package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "user-account-service/pkg/errors"
)

// DefaultExpiry is used when no expiry is configured.
const DefaultExpiry = 24 * time.Hour

// Claims is the identity carried by a token.
type Claims struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	IsVerified *bool  `json:"isVerified,omitempty"`
	Role       string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Helper issues and verifies signed, time-bound identity tokens.
type Helper interface {
	Generate(claims Claims) (string, error)
	Verify(token string) (*Claims, error)
}

type jwtHelper struct {
	secret []byte
	expiry time.Duration
	issuer string
	now    func() time.Time
}

// NewHelper creates a Helper signing with HS256. A zero expiry falls back to DefaultExpiry.
func NewHelper(secret string, expiry time.Duration, issuer string) (Helper, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &jwtHelper{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// Generate signs claims, overwriting any registered timing claims.
func (h *jwtHelper) Generate(claims Claims) (string, error) {
	now := h.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    h.issuer,
		Subject:   fmt.Sprintf("%d", claims.ID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.expiry)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify decodes a token. Malformed, unsigned, tampered or expired tokens
// yield an AuthenticationError.
func (h *jwtHelper) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperrors.NewAuthenticationError("token is required", nil)
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return h.secret, nil
	}, jwt.WithTimeFunc(h.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.NewAuthenticationError("token expired", err)
		}
		return nil, apperrors.NewAuthenticationError("invalid token", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, apperrors.NewAuthenticationError("invalid token", nil)
	}
	if claims.ID <= 0 || claims.Email == "" {
		return nil, apperrors.NewAuthenticationError("token is missing identity claims", nil)
	}
	return claims, nil
}

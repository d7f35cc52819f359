// ABOUTME: JWT issuance and verification for gateway user tokens
// ABOUTME: HS256 tokens carry the user id and group as typed claims

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// DefaultTokenTTL is used when no token TTL is configured.
const DefaultTokenTTL = 30 * 24 * time.Hour

// Claims identifies the bearer of a token. Group is the user's group at
// issue time; the gateway uses it to refuse guests and banned users
// before touching the user store.
type Claims struct {
	UserID string
	Group  string
}

// tokenClaims is the wire form of Claims inside the JWT.
type tokenClaims struct {
	Group string `json:"grp,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier defines the interface for token verification
type TokenVerifier interface {
	Verify(tokenString string) (Claims, error)
}

// Authority issues and verifies the gateway's user tokens. It owns the
// signing secret and the configured token lifetime.
type Authority struct {
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthority creates a token authority. A non-positive tokenTTL falls
// back to DefaultTokenTTL.
func NewAuthority(secret []byte, tokenTTL time.Duration) *Authority {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &Authority{secret: secret, tokenTTL: tokenTTL}
}

// Issue creates a signed token for the user, valid for the configured
// lifetime. The returned time is the token's expiry.
func (a *Authority) Issue(userID, group string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(a.tokenTTL)

	claims := tokenClaims{
		Group: group,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify validates the token and returns its claims.
func (a *Authority) Verify(tokenString string) (Claims, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})

	if err != nil {
		// Check if it's specifically an expiration error
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	return Claims{UserID: claims.Subject, Group: claims.Group}, nil
}

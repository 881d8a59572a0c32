// Package auth provides JWT issuance/validation, bcrypt password hashing,
// and the HTTP middleware that turns a bearer token into a caller identity.
//
// AUTHENTICATION FLOW:
//  1. POST /auth/register or /auth/login → server issues a signed JWT
//  2. The client sends it back on every call: Authorization: Bearer <jwt>
//  3. RequireAuth validates the signature and expiry and puts the user ID
//     into the request context
//  4. Handlers read the ID with UserIDFromContext and pass it explicitly
//     into the service layer — identity is resolved once per request, never
//     re-derived downstream
//
// WHY JWT?
// The token is stateless: the signature plus the "sub" and "exp" claims are
// everything the server needs, so token validation costs no database lookup.
// Role checks DO hit the database on purpose — a role change must take
// effect immediately, not when the token happens to expire.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer is checked on every validation so tokens minted by other
// applications sharing a secret by accident are still rejected.
const tokenIssuer = "team-pulse"

// tokenLifetime is how long an issued token stays valid. The SPA keeps the
// token for the working day; after expiry the user logs in again.
const tokenLifetime = 24 * time.Hour

// TokenService signs and verifies the API's bearer tokens.
// The same HMAC secret is used for both operations.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. We only need the registered claims: the user ID
// travels in "sub" (Subject), the standard claim for token ownership.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new bearer token for the given userID.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, fast, and fine for a
// single-service deployment where one process both signs and verifies.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, tokenLifetime)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the userID stored in
// its "sub" claim.
//
// The jwt library checks the signature, the expiry, and — because we pass
// WithValidMethods — that the algorithm really is HS256. Without that last
// check an attacker could attempt an algorithm-confusion downgrade.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// TokenTTL is the validity window of issued tokens. Expiry is computed
// at issuance; there is no refresh mechanism and no clock-skew leeway.
const TokenTTL = 24 * time.Hour

// Claims is the signed token payload. On the wire it serializes to
// {id, full_name, email, exp} with exp in whole seconds since epoch.
type Claims struct {
	UserID   string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies signed identity claims.
type TokenCodec interface {
	// Issue creates a signed token for the given identity, expiring
	// TokenTTL from now.
	Issue(userID, fullName, email string) (string, error)

	// Verify validates the token's signature, structure, and expiry.
	// All failure modes collapse into a single invalid-token error so
	// callers cannot distinguish tampering from expiry.
	Verify(token string) (*Claims, error)
}

// JWTCodec implements TokenCodec with HS256-signed JWTs. The signing
// secret is fixed at construction and shared between issue and verify.
type JWTCodec struct {
	secret []byte
}

// NewJWTCodec creates a codec signing with the given symmetric secret.
func NewJWTCodec(secret string) *JWTCodec {
	return &JWTCodec{secret: []byte(secret)}
}

// Issue creates a signed token for the given identity.
func (c *JWTCodec) Issue(userID, fullName, email string) (string, error) {
	claims := Claims{
		UserID:   userID,
		FullName: fullName,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			// NumericDate marshals at second precision, so exp is integral.
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", oops.Code("TOKEN_ISSUE_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify validates a token and returns its claims.
func (c *JWTCodec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	// Bad signature, malformed structure, and expiry all surface the
	// same way; the cause stays wrapped for server-side logs only.
	if err != nil {
		return nil, oops.Code("AUTH_INVALID_TOKEN").Wrap(err)
	}
	if !token.Valid {
		return nil, oops.Code("AUTH_INVALID_TOKEN").Errorf("invalid token")
	}
	return claims, nil
}

// Compile-time interface check.
var _ TokenCodec = (*JWTCodec)(nil)

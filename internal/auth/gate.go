// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gobwas/glob"
)

// Rejection reasons surfaced to clients verbatim. The token reason is
// deliberately uniform across signature, structure, and expiry failures.
const (
	ReasonEmptyAPIKey   = "empty api_key"
	ReasonWrongAPIKey   = "wrong api_key"
	ReasonNoAuthHeader  = "No authorization header"
	ReasonBadAuthHeader = "Invalid authorization header"
	ReasonInvalidToken  = "Invalid token"
)

const bearerPrefix = "Bearer "

// Route patterns. Swagger paths skip the API-key gate entirely; the
// login path skips only the bearer-token gate.
var (
	apiKeyExemptRoutes = []string{"/api/swagger*"}
	publicRoutes       = []string{"/api/v1/auth/login*"}
)

// Decision is the outcome of evaluating one request against the gate.
// Exactly one of the two shapes occurs: allowed (Claims set only when a
// bearer token was validated) or rejected with a client-facing Reason
// and the underlying cause for server-side logging.
type Decision struct {
	Allowed bool
	Reason  string
	Claims  *Claims
	Cause   error
}

func allow(claims *Claims) Decision {
	return Decision{Allowed: true, Claims: claims}
}

func reject(reason string, cause error) Decision {
	return Decision{Reason: reason, Cause: cause}
}

// AccessGate enforces the per-request access policy: a static API key
// on every route outside the exemption list, then bearer-token
// validation on every route outside the public list. It is stateless
// across requests and safe for concurrent use.
type AccessGate struct {
	apiKey       []byte
	codec        TokenCodec
	apiKeyExempt []glob.Glob
	public       []glob.Glob
}

// NewAccessGate creates a gate checking against the configured API key
// and verifying bearer tokens with the given codec.
func NewAccessGate(apiKey string, codec TokenCodec) *AccessGate {
	return &AccessGate{
		apiKey:       []byte(apiKey),
		codec:        codec,
		apiKeyExempt: compileRoutes(apiKeyExemptRoutes),
		public:       compileRoutes(publicRoutes),
	}
}

// Evaluate runs the policy pipeline for one request. Ordering is fixed:
// the API key is checked first regardless of route; the public-route
// bypass affects only the token gate. A missing api_key header and a
// present-but-mismatched one reject with distinct reasons, so presence
// is passed alongside the value.
func (g *AccessGate) Evaluate(path, apiKey string, hasAPIKey bool, authorization string) Decision {
	if !matchesAny(g.apiKeyExempt, path) {
		if !hasAPIKey {
			return reject(ReasonEmptyAPIKey, nil)
		}
		if subtle.ConstantTimeCompare([]byte(apiKey), g.apiKey) != 1 {
			return reject(ReasonWrongAPIKey, nil)
		}
	}

	if matchesAny(g.public, path) {
		return allow(nil)
	}

	if authorization == "" {
		return reject(ReasonNoAuthHeader, nil)
	}
	if !strings.HasPrefix(authorization, bearerPrefix) {
		return reject(ReasonBadAuthHeader, nil)
	}

	claims, err := g.codec.Verify(strings.TrimPrefix(authorization, bearerPrefix))
	if err != nil {
		return reject(ReasonInvalidToken, err)
	}
	return allow(claims)
}

func compileRoutes(patterns []string) []glob.Glob {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		globs = append(globs, glob.MustCompile(p))
	}
	return globs
}

func matchesAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

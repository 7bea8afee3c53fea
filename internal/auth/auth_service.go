// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/castellan/castellan/pkg/errutil"
)

// LoginResult pairs a freshly issued token with the public identity
// fields of the authenticated user. It never carries the password hash.
type LoginResult struct {
	Token    string
	ID       ulid.ULID
	FullName string
	Email    string
}

// dummyPasswordHash is a syntactically valid argon2id hash that no
// password produces. Login verifies against it when the email is
// unknown so both rejection paths cost one hash computation.
//
//nolint:gosec // G101: not a credential, a timing-equalization constant
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// AuthService implements the login use case.
type AuthService struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenCodec
	logger *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(users UserRepository, hasher PasswordHasher, tokens TokenCodec, logger *slog.Logger) (*AuthService, error) {
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token codec is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, logger: logger}, nil
}

// Login authenticates a user by email and password and issues a token.
//
// An unknown email and a wrong password both yield the same
// "Invalid credentials" error so callers cannot enumerate accounts; the
// distinguishing cause is logged server-side only.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Burn a verification against the dummy hash so an unknown
			// email takes as long as a wrong password.
			_, _ = s.hasher.Verify(password, dummyPasswordHash)
			s.logger.InfoContext(ctx, "login rejected: unknown email", "email", email)
			return nil, invalidCredentials()
		}
		errutil.LogError(s.logger, "login: user lookup failed", err)
		return nil, oops.Code("AUTH_INTERNAL").Wrap(err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		errutil.LogError(s.logger, "login: password verification failed", err)
		return nil, oops.Code("AUTH_INTERNAL").Wrap(err)
	}
	if !ok {
		s.logger.InfoContext(ctx, "login rejected: wrong password", "email", email)
		return nil, invalidCredentials()
	}

	token, err := s.tokens.Issue(user.ID.String(), user.FullName, user.Email)
	if err != nil {
		errutil.LogError(s.logger, "login: token issuance failed", err)
		return nil, oops.Code("AUTH_INTERNAL").Wrap(err)
	}

	s.logger.InfoContext(ctx, "login succeeded", "user_id", user.ID.String())
	return &LoginResult{
		Token:    token,
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
	}, nil
}

func invalidCredentials() error {
	return oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("Invalid credentials")
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/castellan/castellan/internal/auth"
	"github.com/castellan/castellan/internal/auth/mocks"
	"github.com/castellan/castellan/pkg/errutil"
)

func TestNewAuthService_NilDependencies(t *testing.T) {
	tests := []struct {
		name        string
		users       auth.UserRepository
		hasher      auth.PasswordHasher
		tokens      auth.TokenCodec
		expectError string
	}{
		{
			name:        "nil user repository",
			users:       nil,
			hasher:      mocks.NewMockPasswordHasher(t),
			tokens:      mocks.NewMockTokenCodec(t),
			expectError: "user repository is required",
		},
		{
			name:        "nil password hasher",
			users:       mocks.NewMockUserRepository(t),
			hasher:      nil,
			tokens:      mocks.NewMockTokenCodec(t),
			expectError: "password hasher is required",
		},
		{
			name:        "nil token codec",
			users:       mocks.NewMockUserRepository(t),
			hasher:      mocks.NewMockPasswordHasher(t),
			tokens:      nil,
			expectError: "token codec is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := auth.NewAuthService(tt.users, tt.hasher, tt.tokens, nil)
			require.Error(t, err)
			assert.Nil(t, svc)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	newService := func(t *testing.T) (*auth.AuthService, *mocks.MockUserRepository, *mocks.MockPasswordHasher, *mocks.MockTokenCodec) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		tokens := mocks.NewMockTokenCodec(t)
		svc, err := auth.NewAuthService(users, hasher, tokens, nil)
		require.NoError(t, err)
		return svc, users, hasher, tokens
	}

	t.Run("successful login returns token and identity", func(t *testing.T) {
		svc, users, hasher, tokens := newService(t)

		user := &auth.User{
			ID:           ulid.Make(),
			FullName:     "Ada Lovelace",
			Email:        "a@b.com",
			PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$salt$hash",
		}
		users.On("GetByEmail", ctx, "a@b.com").Return(user, nil)
		hasher.On("Verify", "password123", user.PasswordHash).Return(true, nil)
		tokens.On("Issue", user.ID.String(), "Ada Lovelace", "a@b.com").Return("signed-token", nil)

		result, err := svc.Login(ctx, "a@b.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, "signed-token", result.Token)
		assert.Equal(t, user.ID, result.ID)
		assert.Equal(t, "Ada Lovelace", result.FullName)
		assert.Equal(t, "a@b.com", result.Email)
	})

	t.Run("unknown email yields invalid credentials", func(t *testing.T) {
		svc, users, hasher, _ := newService(t)

		users.On("GetByEmail", ctx, "a@b.com").
			Return(nil, oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound))
		// The hasher still runs once, against a stand-in hash, so this
		// path is not measurably faster than a wrong password.
		hasher.On("Verify", "whatever", mock.AnythingOfType("string")).Return(false, nil)

		result, err := svc.Login(ctx, "a@b.com", "whatever")
		assert.Nil(t, result)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_CREDENTIALS")
		assert.Contains(t, err.Error(), "Invalid credentials")
		hasher.AssertNumberOfCalls(t, "Verify", 1)
	})

	t.Run("wrong password yields identical invalid credentials", func(t *testing.T) {
		svc, users, hasher, _ := newService(t)

		user := &auth.User{ID: ulid.Make(), Email: "a@b.com", PasswordHash: "hash"}
		users.On("GetByEmail", ctx, "a@b.com").Return(user, nil)
		hasher.On("Verify", "wrong", "hash").Return(false, nil)

		_, wrongPassErr := svc.Login(ctx, "a@b.com", "wrong")
		errutil.AssertErrorCode(t, wrongPassErr, "AUTH_INVALID_CREDENTIALS")

		// Same client-facing message as the unknown-email case: no
		// signal for account enumeration.
		assert.Contains(t, wrongPassErr.Error(), "Invalid credentials")
	})

	t.Run("storage failure maps to internal error", func(t *testing.T) {
		svc, users, _, _ := newService(t)

		users.On("GetByEmail", ctx, "a@b.com").
			Return(nil, errors.New("connection refused"))

		_, err := svc.Login(ctx, "a@b.com", "pw")
		errutil.AssertErrorCode(t, err, "AUTH_INTERNAL")
	})

	t.Run("malformed stored hash maps to internal error", func(t *testing.T) {
		svc, users, hasher, _ := newService(t)

		user := &auth.User{ID: ulid.Make(), Email: "a@b.com", PasswordHash: "garbage"}
		users.On("GetByEmail", ctx, "a@b.com").Return(user, nil)
		hasher.On("Verify", "pw", "garbage").
			Return(false, oops.Code("HASH_MALFORMED").Errorf("invalid hash format"))

		_, err := svc.Login(ctx, "a@b.com", "pw")
		errutil.AssertErrorCode(t, err, "AUTH_INTERNAL")
	})

	t.Run("token issuance failure maps to internal error", func(t *testing.T) {
		svc, users, hasher, tokens := newService(t)

		user := &auth.User{ID: ulid.Make(), FullName: "n", Email: "a@b.com", PasswordHash: "hash"}
		users.On("GetByEmail", ctx, "a@b.com").Return(user, nil)
		hasher.On("Verify", "pw", "hash").Return(true, nil)
		tokens.On("Issue", user.ID.String(), "n", "a@b.com").
			Return("", errors.New("boom"))

		_, err := svc.Login(ctx, "a@b.com", "pw")
		errutil.AssertErrorCode(t, err, "AUTH_INTERNAL")
	})
}

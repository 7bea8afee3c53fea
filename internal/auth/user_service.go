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

// UserService handles account creation and management.
type UserService struct {
	users  UserRepository
	hasher PasswordHasher
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users UserRepository, hasher PasswordHasher, logger *slog.Logger) (*UserService, error) {
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{users: users, hasher: hasher, logger: logger}, nil
}

// Create registers a new user. The plaintext password is hashed before
// anything is persisted.
func (s *UserService) Create(ctx context.Context, fullName, email, password string) (*User, error) {
	if err := requireFields("Error adding user", map[string]string{
		"full_name": fullName,
		"email":     email,
		"password":  password,
	}); err != nil {
		return nil, err
	}
	if !IsValidEmail(email) {
		return nil, oops.Code("USER_VALIDATION").
			With("email", email).
			Errorf("Error adding user: '%s' is not a valid email", email)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, emailExists(email)
	} else if !errors.Is(err, ErrNotFound) {
		errutil.LogError(s.logger, "create user: email lookup failed", err)
		return nil, oops.Code("USER_STORE_FAILED").Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		errutil.LogError(s.logger, "create user: password hashing failed", err)
		return nil, oops.Code("AUTH_INTERNAL").Wrap(err)
	}

	user, err := NewUser(fullName, email, hash)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The unique constraint backstops the lookup above against
		// concurrent registrations.
		if errors.Is(err, ErrEmailTaken) {
			return nil, emailExists(email)
		}
		errutil.LogError(s.logger, "create user: insert failed", err)
		return nil, oops.Code("USER_STORE_FAILED").Wrap(err)
	}

	s.logger.InfoContext(ctx, "user created", "user_id", user.ID.String())
	return user, nil
}

// Update changes a user's full name and email.
func (s *UserService) Update(ctx context.Context, id ulid.ULID, fullName, email string) (*User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("USER_VALIDATION").
				With("user_id", id.String()).
				Errorf("Error updating user: id '%s' not found", id.String())
		}
		errutil.LogError(s.logger, "update user: lookup failed", err)
		return nil, oops.Code("USER_STORE_FAILED").Wrap(err)
	}

	if err := requireFields("Error updating user", map[string]string{
		"full_name": fullName,
		"email":     email,
	}); err != nil {
		return nil, err
	}
	if !IsValidEmail(email) {
		return nil, oops.Code("USER_VALIDATION").
			With("email", email).
			Errorf("Error updating user: '%s' is not a valid email", email)
	}

	taken, err := s.users.EmailTakenByOther(ctx, email, id)
	if err != nil {
		errutil.LogError(s.logger, "update user: email uniqueness check failed", err)
		return nil, oops.Code("USER_STORE_FAILED").Wrap(err)
	}
	if taken {
		return nil, oops.Code("USER_VALIDATION").
			With("email", email).
			Errorf("Email '%s' is already in use by another user", email)
	}

	user.FullName = fullName
	user.Email = email
	if err := s.users.Update(ctx, user); err != nil {
		errutil.LogError(s.logger, "update user: update failed", err)
		return nil, oops.Code("USER_STORE_FAILED").Wrap(err)
	}

	s.logger.InfoContext(ctx, "user updated", "user_id", id.String())
	return user, nil
}

// Get retrieves a user by id.
func (s *UserService) Get(ctx context.Context, id ulid.ULID) (*User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("USER_NOT_FOUND").
				With("user_id", id.String()).
				Errorf("User with id '%s' not found", id.String())
		}
		errutil.LogError(s.logger, "get user: lookup failed", err)
		return nil, oops.Code("USER_STORE_FAILED").Wrap(err)
	}
	return user, nil
}

// List returns all users, newest first.
func (s *UserService) List(ctx context.Context) ([]*User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		errutil.LogError(s.logger, "list users failed", err)
		return nil, oops.Code("USER_STORE_FAILED").Wrap(err)
	}
	return users, nil
}

// Delete removes a user account.
func (s *UserService) Delete(ctx context.Context, id ulid.ULID) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("USER_VALIDATION").
				With("user_id", id.String()).
				Errorf("Error deleting user: id '%s' not found", id.String())
		}
		errutil.LogError(s.logger, "delete user: lookup failed", err)
		return oops.Code("USER_STORE_FAILED").Wrap(err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("USER_NOT_FOUND").
				With("user_id", id.String()).
				Errorf("User '%s' not found", id.String())
		}
		errutil.LogError(s.logger, "delete user failed", err)
		return oops.Code("USER_STORE_FAILED").Wrap(err)
	}

	s.logger.InfoContext(ctx, "user deleted", "user_id", id.String())
	return nil
}

// ChangePassword verifies the current password and replaces the stored
// hash. Part of the contract but not exposed over a route yet.
func (s *UserService) ChangePassword(ctx context.Context, id ulid.ULID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("USER_NOT_FOUND").
				With("user_id", id.String()).
				Errorf("User with id '%s' not found", id.String())
		}
		errutil.LogError(s.logger, "change password: lookup failed", err)
		return oops.Code("USER_STORE_FAILED").Wrap(err)
	}

	ok, err := s.hasher.Verify(currentPassword, user.PasswordHash)
	if err != nil {
		errutil.LogError(s.logger, "change password: verification failed", err)
		return oops.Code("AUTH_INTERNAL").Wrap(err)
	}
	if !ok {
		return invalidCredentials()
	}

	if newPassword == "" {
		return oops.Code("USER_VALIDATION").
			Errorf("Error updating password: new_password cannot be empty")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		errutil.LogError(s.logger, "change password: hashing failed", err)
		return oops.Code("AUTH_INTERNAL").Wrap(err)
	}

	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		errutil.LogError(s.logger, "change password: update failed", err)
		return oops.Code("USER_STORE_FAILED").Wrap(err)
	}

	s.logger.InfoContext(ctx, "password changed", "user_id", id.String())
	return nil
}

func requireFields(prefix string, fields map[string]string) error {
	// Fixed order keeps error messages deterministic.
	for _, name := range []string{"full_name", "email", "password"} {
		value, checked := fields[name]
		if checked && value == "" {
			return oops.Code("USER_VALIDATION").
				Errorf("%s: %s cannot be empty", prefix, name)
		}
	}
	return nil
}

func emailExists(email string) error {
	return oops.Code("USER_VALIDATION").
		With("email", email).
		Errorf("Error adding user: email '%s' already exists", email)
}

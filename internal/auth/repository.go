// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

package auth

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// UserRepository defines the persistence operations for credential records.
type UserRepository interface {
	// Create persists a new user. Wraps ErrEmailTaken if the email is
	// already registered.
	Create(ctx context.Context, user *User) error

	// Update persists changes to full name and email.
	// Wraps ErrNotFound if the user does not exist.
	Update(ctx context.Context, user *User) error

	// UpdatePassword replaces only the password hash.
	// Wraps ErrNotFound if the user does not exist.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error

	// GetByID retrieves a user by id. Wraps ErrNotFound if missing.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by exact email match.
	// Wraps ErrNotFound if missing.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List returns all users, newest first.
	List(ctx context.Context) ([]*User, error)

	// Delete removes a user. Wraps ErrNotFound if missing.
	Delete(ctx context.Context, id ulid.ULID) error

	// EmailTakenByOther reports whether the email belongs to a user
	// other than the one identified by excludingID.
	EmailTakenByOther(ctx context.Context, email string, excludingID ulid.ULID) (bool, error)
}

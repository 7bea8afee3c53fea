// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

package auth

import (
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// emailRegex accepts the usual local@domain.tld shape. Addresses are
// stored exactly as given; no case folding happens here or in storage.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// User is a stored credential record. PasswordHash is the PHC-encoded
// argon2id string and never leaves the service layer.
type User struct {
	ID           ulid.ULID
	FullName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a User with a fresh id and timestamps. The password
// must already be hashed; NewUser never sees a plaintext secret.
func NewUser(fullName, email, passwordHash string) (*User, error) {
	if fullName == "" {
		return nil, oops.Code("USER_VALIDATION").Errorf("full_name cannot be empty")
	}
	if !IsValidEmail(email) {
		return nil, oops.Code("USER_VALIDATION").
			With("email", email).
			Errorf("'%s' is not a valid email", email)
	}
	if passwordHash == "" {
		return nil, oops.Code("USER_VALIDATION").Errorf("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &User{
		ID:           ulid.Make(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsValidEmail reports whether the address has a plausible shape.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

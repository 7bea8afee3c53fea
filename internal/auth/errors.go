// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when a user's email collides with an
// existing record.
var ErrEmailTaken = errors.New("email already in use")

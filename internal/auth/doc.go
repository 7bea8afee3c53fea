// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

// Package auth holds the account and authentication domain for Castellan.
//
// # Domain Types
//
// User is the stored credential record: identity, display name, unique
// email, and a password hash. Users should be created through NewUser,
// which assigns the id and timestamps; direct struct initialization is
// reserved for storage adapters rehydrating persisted rows.
//
// # Capabilities
//
// Collaborators are small capability interfaces with one production
// implementation each:
//   - PasswordHasher - argon2id hashing and verification (Argon2idHasher)
//   - TokenCodec - signed identity claims (JWTCodec)
//   - UserRepository - credential record storage (postgres.UserRepository)
//
// # Services
//
//   - AuthService - the login use case
//   - UserService - account creation and management
//
// AccessGate is the per-request policy check applied ahead of every
// handler: API key first, then a public-route bypass, then bearer-token
// validation. It is transport-agnostic; the HTTP layer feeds it the
// request path and headers and renders its decision.
package auth

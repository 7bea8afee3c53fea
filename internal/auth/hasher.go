// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// Argon2Params are the cost parameters embedded in every produced hash.
type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultArgon2Params are OWASP-recommended argon2id settings for
// interactive logins: 64 MiB memory, 1 iteration, parallelism 4,
// 16-byte salt, 32-byte key.
var DefaultArgon2Params = Argon2Params{
	Time:    1,
	Memory:  64 * 1024,
	Threads: 4,
	SaltLen: 16,
	KeyLen:  32,
}

// PasswordHasher provides one-way salted password hashing.
type PasswordHasher interface {
	// Hash produces a self-describing PHC-encoded hash of the password.
	// Every call draws a fresh random salt, so two hashes of the same
	// plaintext differ.
	Hash(password string) (string, error)

	// Verify checks the password against an encoded hash. Returns
	// (true, nil) on match, (false, nil) on mismatch, and an error for
	// hashes that cannot be parsed.
	Verify(password, encodedHash string) (bool, error)
}

// Argon2idHasher implements PasswordHasher using argon2id. It holds no
// mutable state and is safe for concurrent use.
type Argon2idHasher struct {
	params Argon2Params
}

// NewArgon2idHasher creates a hasher with DefaultArgon2Params.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{params: DefaultArgon2Params}
}

// Hash produces a PHC string of the form
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("HASH_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt,
		h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify recomputes the hash with the parameters and salt embedded in
// encodedHash and compares in constant time.
func (h *Argon2idHasher) Verify(password, encodedHash string) (bool, error) {
	params, salt, key, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt,
		params.Time, params.Memory, params.Threads, params.KeyLen)

	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

// decodeHash splits a PHC-encoded argon2id string into its parameters,
// salt, and derived key.
func decodeHash(encodedHash string) (Argon2Params, []byte, []byte, error) {
	var params Argon2Params

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return params, nil, nil, oops.Code("HASH_MALFORMED").
			Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return params, nil, nil, oops.Code("HASH_MALFORMED").
			Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, oops.Code("HASH_MALFORMED").Wrap(err)
	}
	if version != argon2.Version {
		return params, nil, nil, oops.Code("HASH_MALFORMED").
			Errorf("unsupported argon2 version: %d", version)
	}

	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&params.Memory, &params.Time, &threads); err != nil {
		return params, nil, nil, oops.Code("HASH_MALFORMED").Wrap(err)
	}
	if threads == 0 || threads > 255 {
		return params, nil, nil, oops.Code("HASH_MALFORMED").
			Errorf("parallelism %d out of range", threads)
	}
	params.Threads = uint8(threads)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, oops.Code("HASH_MALFORMED").Wrap(err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params, nil, nil, oops.Code("HASH_MALFORMED").Wrap(err)
	}
	if len(key) == 0 || len(key) > 1<<10 {
		return params, nil, nil, oops.Code("HASH_MALFORMED").
			Errorf("invalid key length: %d", len(key))
	}
	params.KeyLen = uint32(len(key))

	return params, salt, key, nil
}

// Compile-time interface check.
var _ PasswordHasher = (*Argon2idHasher)(nil)

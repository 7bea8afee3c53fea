// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castellan/castellan/internal/auth"
)

func TestNewUser(t *testing.T) {
	t.Run("assigns id and timestamps", func(t *testing.T) {
		user, err := auth.NewUser("Ada Lovelace", "ada@example.com", "hash")
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.False(t, user.CreatedAt.IsZero())
		assert.Equal(t, user.CreatedAt, user.UpdatedAt)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := auth.NewUser("", "ada@example.com", "hash")
		require.Error(t, err)

		_, err = auth.NewUser("Ada", "bad-email", "hash")
		require.Error(t, err)

		_, err = auth.NewUser("Ada", "ada@example.com", "")
		require.Error(t, err)
	})
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"a@b.co",
		"user.name+tag@example.com",
		"UPPER@EXAMPLE.COM",
	}
	for _, email := range valid {
		assert.True(t, auth.IsValidEmail(email), email)
	}

	invalid := []string{
		"",
		"plain",
		"@example.com",
		"user@",
		"user@host",
		"user@host.c",
	}
	for _, email := range invalid {
		assert.False(t, auth.IsValidEmail(email), email)
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/castellan/castellan/internal/auth"
	"github.com/castellan/castellan/internal/auth/postgres"
	"github.com/castellan/castellan/internal/store"
)

// testPool is the shared database pool for integration tests.
var testPool *pgxpool.Pool

// TestMain sets up a PostgreSQL testcontainer and runs migrations.
func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("castellan_test"),
		tcpostgres.WithUsername("castellan"),
		tcpostgres.WithPassword("castellan"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		panic("failed to start postgres container: " + err.Error())
	}
	defer func() { _ = container.Terminate(ctx) }()

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic("failed to get connection string: " + err.Error())
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		panic("failed to create migrator: " + err.Error())
	}
	if err := migrator.Up(); err != nil {
		panic("failed to run migrations: " + err.Error())
	}
	_ = migrator.Close()

	testPool, err = store.Connect(ctx, connStr)
	if err != nil {
		panic("failed to connect: " + err.Error())
	}
	defer testPool.Close()

	m.Run()
}

func newTestUser(t *testing.T, email string) *auth.User {
	t.Helper()
	user, err := auth.NewUser("Integration User", email, "$argon2id$stub")
	require.NoError(t, err)
	return user
}

func TestUserRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewUserRepository(testPool)

	user := newTestUser(t, "roundtrip@example.com")
	require.NoError(t, repo.Create(ctx, user))
	t.Cleanup(func() { _ = repo.Delete(ctx, user.ID) })

	t.Run("get by id", func(t *testing.T) {
		stored, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, stored.Email)
		assert.Equal(t, user.PasswordHash, stored.PasswordHash)
	})

	t.Run("get by email is exact-match", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "ROUNDTRIP@EXAMPLE.COM")
		assert.True(t, errors.Is(err, auth.ErrNotFound))

		stored, err := repo.GetByEmail(ctx, "roundtrip@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, stored.ID)
	})

	t.Run("duplicate email rejected by constraint", func(t *testing.T) {
		dup := newTestUser(t, "roundtrip@example.com")
		err := repo.Create(ctx, dup)
		assert.True(t, errors.Is(err, auth.ErrEmailTaken))
	})

	t.Run("update password only touches the hash", func(t *testing.T) {
		require.NoError(t, repo.UpdatePassword(ctx, user.ID, "$argon2id$new"))

		stored, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "$argon2id$new", stored.PasswordHash)
		assert.Equal(t, user.FullName, stored.FullName)
	})

	t.Run("email taken by other", func(t *testing.T) {
		other := newTestUser(t, "other@example.com")
		require.NoError(t, repo.Create(ctx, other))
		t.Cleanup(func() { _ = repo.Delete(ctx, other.ID) })

		taken, err := repo.EmailTakenByOther(ctx, "other@example.com", user.ID)
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = repo.EmailTakenByOther(ctx, "other@example.com", other.ID)
		require.NoError(t, err)
		assert.False(t, taken)
	})
}

func TestUserRepository_DeleteMissing(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewUserRepository(testPool)

	err := repo.Delete(ctx, ulid.Make())
	assert.True(t, errors.Is(err, auth.ErrNotFound))
}

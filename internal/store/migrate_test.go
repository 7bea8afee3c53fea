// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

package store

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMigrate implements migrateIface for unit tests.
type fakeMigrate struct {
	upErr      error
	downErr    error
	version    uint
	dirty      bool
	versionErr error
	srcErr     error
	dbErr      error
}

func (f *fakeMigrate) Up() error                       { return f.upErr }
func (f *fakeMigrate) Down() error                     { return f.downErr }
func (f *fakeMigrate) Version() (uint, bool, error)    { return f.version, f.dirty, f.versionErr }
func (f *fakeMigrate) Close() (source, database error) { return f.srcErr, f.dbErr }

func TestMigrator_Up(t *testing.T) {
	t.Run("no change is not an error", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{upErr: migrate.ErrNoChange}}
		require.NoError(t, m.Up())
	})

	t.Run("real failure propagates", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{upErr: errors.New("boom")}}
		require.Error(t, m.Up())
	})
}

func TestMigrator_Version(t *testing.T) {
	t.Run("nil version reads as zero", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Zero(t, version)
		assert.False(t, dirty)
	})

	t.Run("reports applied version", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{version: 1}}
		version, _, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(1), version)
	})
}

func TestMigrator_Close(t *testing.T) {
	t.Run("combines both close errors", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{srcErr: errors.New("s"), dbErr: errors.New("d")}}
		err := m.Close()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "source: s")
		assert.Contains(t, err.Error(), "database: d")
	})

	t.Run("clean close", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{}}
		require.NoError(t, m.Close())
	})
}

func TestMigrationsFS_EmbeddedFiles(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	// Every up migration needs a matching down migration.
	ups, downs := 0, 0
	for _, entry := range entries {
		switch {
		case len(entry.Name()) > 7 && entry.Name()[len(entry.Name())-7:] == ".up.sql":
			ups++
		case len(entry.Name()) > 9 && entry.Name()[len(entry.Name())-9:] == ".down.sql":
			downs++
		}
	}
	assert.Equal(t, ups, downs)
	assert.Positive(t, ups)
}

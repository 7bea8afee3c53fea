// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/castellan/castellan/pkg/errutil"
)

func TestMigrateUp_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cmd := NewMigrateCmd()
	cmd.SetArgs([]string{"up"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_MISSING")
}

func TestServe_FailsWithoutConfig(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "SERVER_ADDR", "JWT_SECRET", "API_KEY"} {
		t.Setenv(key, "")
	}

	root := NewRootCmd()
	root.SetArgs([]string{"serve"})
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := root.Execute()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_MISSING")
}

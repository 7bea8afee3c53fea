// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Castellan CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "castellan",
		Short: "Castellan - user accounts and credential authentication",
		Long: `Castellan is a REST backend for user account management and
credential authentication: argon2id password storage, JWT issuance,
and API-key plus bearer-token request gating.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

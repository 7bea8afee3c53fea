// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

// Package store manages the PostgreSQL connection pool and schema
// migrations.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// maxConns caps the pool; the API issues one short query per request,
// so a small pool is plenty.
const maxConns = 5

// pingRetries and pingInterval bound the startup wait for the database.
const (
	pingRetries  = 5
	pingInterval = time.Second
)

// Connect opens a pgx pool and verifies connectivity. The ping is
// retried a few times so the server survives a database that is still
// coming up; persistent unreachability aborts process start.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("STORE_CONFIG_INVALID").
			With("operation", "parse database url").
			Wrap(err)
	}
	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").
			With("operation", "create pool").
			Wrap(err)
	}

	backoff := retry.WithMaxRetries(pingRetries, retry.NewConstant(pingInterval))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("STORE_CONNECT_FAILED").
			With("operation", "ping database").
			Wrap(err)
	}

	return pool, nil
}

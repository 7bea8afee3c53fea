// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/castellan/castellan/internal/auth"
	"github.com/castellan/castellan/internal/observability"
)

// NewRouter assembles the full request pipeline: request id, request
// logging, access gate, then the versioned REST routes. Patterns
// without a method act as 405 fallbacks for their path.
func NewRouter(
	authHandler *AuthHandler,
	userHandler *UserHandler,
	gate *auth.AccessGate,
	logger *slog.Logger,
	metrics *observability.Metrics,
) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("/api/v1/auth/login", methodNotAllowed)

	mux.HandleFunc("POST /api/v1/users", userHandler.Create)
	mux.HandleFunc("GET /api/v1/users", userHandler.List)
	mux.HandleFunc("/api/v1/users", methodNotAllowed)

	mux.HandleFunc("GET /api/v1/users/{id}", userHandler.Get)
	mux.HandleFunc("PUT /api/v1/users/{id}", userHandler.Update)
	mux.HandleFunc("DELETE /api/v1/users/{id}", userHandler.Delete)
	mux.HandleFunc("/api/v1/users/{id}", methodNotAllowed)

	return Chain(mux,
		RequestID(),
		RequestLog(logger, metrics),
		AccessControl(gate, logger),
	)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/castellan/castellan/internal/auth"
	"github.com/castellan/castellan/internal/observability"
)

// AuthHandler serves the authentication endpoints.
type AuthHandler struct {
	auth    *auth.AuthService
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAuthHandler creates an AuthHandler. metrics may be nil.
func NewAuthHandler(service *auth.AuthService, logger *slog.Logger, metrics *observability.Metrics) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{auth: service, logger: logger, metrics: metrics}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Login exchanges credentials for a signed token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.recordLogin("failure")
		writeError(w, h.logger, err)
		return
	}

	h.recordLogin("success")
	writeSuccess(w, http.StatusOK, msgOperationSuccessful, loginResponse{
		Token:    result.Token,
		ID:       result.ID.String(),
		FullName: result.FullName,
		Email:    result.Email,
	})
}

func (h *AuthHandler) recordLogin(outcome string) {
	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

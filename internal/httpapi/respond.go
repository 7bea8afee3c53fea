// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

// Package httpapi exposes the REST surface: routing, access-control
// middleware, request handlers, and the response envelopes.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/castellan/castellan/pkg/errutil"
)

// Success messages for the response envelope.
const (
	msgOperationSuccessful = "Operation successful"
	msgResourceCreated     = "Resource created successfully"
	msgResourceUpdated     = "Resource updated successfully"
	msgResourceDeleted     = "Resource deleted successfully"
)

type successEnvelope struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
	Data    any    `json:"data"`
}

type errorEnvelope struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // nothing to do if the client is gone
	json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, successEnvelope{
		Message: message,
		Status:  status,
		Data:    data,
	})
}

func writeFailure(w http.ResponseWriter, status int, label, message string) {
	writeJSON(w, status, errorEnvelope{
		Error:      label,
		Message:    message,
		StatusCode: status,
	})
}

// writeBadRequest renders a client-caused failure with its detail.
func writeBadRequest(w http.ResponseWriter, detail string) {
	writeFailure(w, http.StatusBadRequest, "Bad Request", "Bad Request: "+detail)
}

// writeUnauthorized renders an access rejection with its reason.
func writeUnauthorized(w http.ResponseWriter, reason string) {
	writeFailure(w, http.StatusUnauthorized, "Unauthorized", "Unauthorized: "+reason)
}

// methodNotAllowed is registered as the method fallback on each route.
func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeFailure(w, http.StatusMethodNotAllowed, "Invalid Method Error",
		"Invalid Method Error: "+r.Method+" is not supported on this route")
}

func errorCode(err error) string {
	if o, ok := oops.AsOops(err); ok {
		if code, ok := o.Code().(string); ok {
			return code
		}
	}
	return ""
}

// writeError maps a service error onto the HTTP error envelope.
// Validation and auth failures carry their client-safe detail through;
// storage and internal failures get a fixed message and the cause is
// logged server side only.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch errorCode(err) {
	case "USER_VALIDATION":
		writeBadRequest(w, err.Error())
	case "AUTH_INVALID_CREDENTIALS", "AUTH_INVALID_TOKEN":
		writeUnauthorized(w, err.Error())
	case "USER_NOT_FOUND":
		writeFailure(w, http.StatusNotFound, "Not Found", "Not Found: "+err.Error())
	case "USER_STORE_FAILED":
		errutil.LogError(logger, "request failed on storage", err)
		writeFailure(w, http.StatusInternalServerError, "Database Error", "Database Error")
	default:
		errutil.LogError(logger, "request failed", err)
		writeFailure(w, http.StatusInternalServerError,
			"Internal Server Error", "Internal Server Error")
	}
}

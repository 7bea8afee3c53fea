// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/castellan/castellan/internal/auth"
	"github.com/castellan/castellan/internal/logging"
	"github.com/castellan/castellan/internal/observability"
)

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first one listed is outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type ctxKey int

const claimsKey ctxKey = iota

// ClaimsFromContext returns the verified token claims attached by the
// access control middleware, if any.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// apiKeyHeader is the header carrying the static service key.
const apiKeyHeader = "api_key"

// AccessControl gates every request through the access policy. Allowed
// requests proceed with any verified claims attached to the context;
// rejected requests get a 401 envelope carrying the rejection reason.
func AccessControl(gate *auth.AccessGate, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKeys := r.Header.Values(apiKeyHeader)
			apiKey := ""
			if len(apiKeys) > 0 {
				apiKey = apiKeys[0]
			}
			decision := gate.Evaluate(
				r.URL.Path,
				apiKey,
				len(apiKeys) > 0,
				r.Header.Get("Authorization"),
			)

			if !decision.Allowed {
				observability.RecordGateRejection(decision.Reason)
				attrs := []any{
					"path", r.URL.Path,
					"reason", decision.Reason,
				}
				if decision.Cause != nil {
					attrs = append(attrs, "cause", decision.Cause.Error())
				}
				logger.WarnContext(r.Context(), "request rejected", attrs...)
				writeUnauthorized(w, decision.Reason)
				return
			}

			if decision.Claims != nil {
				ctx := context.WithValue(r.Context(), claimsKey, decision.Claims)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestID assigns each request a ULID and stores it in the context
// for the logging handler to pick up.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logging.WithRequestID(r.Context(), ulid.Make().String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// RequestLog logs one line per request and feeds the request counter.
func RequestLog(logger *slog.Logger, metrics *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rec, r)

			if metrics != nil {
				metrics.RequestsTotal.WithLabelValues(
					r.Method, r.URL.Path, strconv.Itoa(rec.status)).Inc()
			}
			logger.InfoContext(r.Context(), "request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

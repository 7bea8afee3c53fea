// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

package observability

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startServer(t *testing.T, ready ReadinessChecker) *Server {
	t.Helper()

	s := NewServer("127.0.0.1:0", ready)
	_, err := s.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url) //nolint:gosec // test-local address
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	s := startServer(t, nil)

	s.Metrics().RequestsTotal.WithLabelValues("POST", "/api/v1/auth/login", "200").Inc()
	s.Metrics().LoginsTotal.WithLabelValues("success").Inc()
	RecordGateRejection("wrong api_key")

	status, body := get(t, "http://"+s.Addr()+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "castellan_http_requests_total")
	assert.Contains(t, body, "castellan_logins_total")
	assert.Contains(t, body, "castellan_gate_rejections_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestServer_Liveness(t *testing.T) {
	s := startServer(t, nil)

	status, body := get(t, "http://"+s.Addr()+"/healthz/liveness")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok\n", body)
}

func TestServer_Readiness(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		s := startServer(t, func(context.Context) bool { return true })

		status, _ := get(t, "http://"+s.Addr()+"/healthz/readiness")
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("not ready", func(t *testing.T) {
		s := startServer(t, func(context.Context) bool { return false })

		status, body := get(t, "http://"+s.Addr()+"/healthz/readiness")
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, "not ready\n", body)
	})

	t.Run("nil checker defaults to ready", func(t *testing.T) {
		s := startServer(t, nil)

		status, _ := get(t, "http://"+s.Addr()+"/healthz/readiness")
		assert.Equal(t, http.StatusOK, status)
	})
}

func TestServer_DoubleStart(t *testing.T) {
	s := startServer(t, nil)

	_, err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestServer_StopIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewServer("127.0.0.1:0", nil)
	_, err := s.Start()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}

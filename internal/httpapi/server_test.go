// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

package httpapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/castellan/castellan/internal/httpapi"
)

func TestServer_StartServeStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	s := httpapi.NewServer("127.0.0.1:0", handler)

	errCh, err := s.Start()
	require.NoError(t, err)
	require.NotEmpty(t, s.Addr())

	resp, err := http.Get("http://" + s.Addr() + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Drop the keep-alive connection so its goroutines don't outlive
	// the test.
	http.DefaultClient.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	_, open := <-errCh
	assert.False(t, open, "error channel should close on graceful stop")
}

func TestServer_DoubleStart(t *testing.T) {
	s := httpapi.NewServer("127.0.0.1:0", http.NotFoundHandler())

	_, err := s.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})

	_, err = s.Start()
	require.Error(t, err)
}

func TestServer_StopWithoutStart(t *testing.T) {
	s := httpapi.NewServer("127.0.0.1:0", http.NotFoundHandler())
	require.NoError(t, s.Stop(context.Background()))
}

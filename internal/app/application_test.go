package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopcore/storefront/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	return &config.Config{
		Env: "test",
		Server: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         port,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Auth: config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func TestApplicationServesWithMemoryStores(t *testing.T) {
	cfg := testConfig(t)

	application, err := New(cfg, MemoryStores(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	base := fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	var resp *http.Response
	require.Eventually(t, func() bool {
		r, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp = r
		return true
	}, 5*time.Second, 50*time.Millisecond)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "ok", payload["message"])

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, application.Shutdown(context.Background()))
}

func TestApplicationMetricsEndpoint(t *testing.T) {
	cfg := testConfig(t)

	application, err := New(cfg, MemoryStores(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = application.Run(ctx) }()
	t.Cleanup(func() { _ = application.Shutdown(context.Background()) })

	base := fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)
}

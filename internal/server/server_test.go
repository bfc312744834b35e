package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"futuristic-todo-api/internal/config"
	"futuristic-todo-api/internal/tls"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})
}

func TestServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, time.Second, []listener{{
			name:   "http",
			server: &http.Server{Handler: okHandler(), ReadHeaderTimeout: time.Second},
			ln:     ln,
		}})
	}()

	resp, err := http.Get(fmt.Sprintf("http://%s/", ln.Addr()))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServeReportsListenerFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	healthy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	// a closed listener makes Serve fail at once
	ln.Close()

	err = serve(context.Background(), time.Second, []listener{
		{name: "broken", server: &http.Server{Handler: okHandler()}, ln: ln},
		{name: "healthy", server: &http.Server{Handler: okHandler()}, ln: healthy},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken server")
}

func TestRun(t *testing.T) {
	t.Run("fails when the port is taken", func(t *testing.T) {
		taken, err := net.Listen("tcp", ":0")
		require.NoError(t, err)
		defer taken.Close()

		_, port, err := net.SplitHostPort(taken.Addr().String())
		require.NoError(t, err)

		cfg := &config.ServerConfig{Port: port, ShutdownTimeout: config.Duration{Duration: time.Second}}
		err = Run(context.Background(), cfg, nil, okHandler())

		assert.ErrorContains(t, err, "listen on port")
	})

	t.Run("fails when TLS files are missing", func(t *testing.T) {
		cfg := &config.ServerConfig{Port: "0", ShutdownTimeout: config.Duration{Duration: time.Second}}
		tlsCfg := &tls.Config{
			Enabled:    true,
			CertFile:   "/nonexistent/server.crt",
			KeyFile:    "/nonexistent/server.key",
			Port:       "0",
			MinVersion: 0x0303,
			MaxVersion: 0x0304,
		}

		err := Run(context.Background(), cfg, tlsCfg, okHandler())

		assert.ErrorContains(t, err, "configure TLS")
	})

	t.Run("returns cleanly when the context is already done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		cfg := &config.ServerConfig{Port: "0", ShutdownTimeout: config.Duration{Duration: time.Second}}
		assert.NoError(t, Run(ctx, cfg, nil, okHandler()))
	})
}

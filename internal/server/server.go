// Package server wires the HTTP surface and runs it until the context ends.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"futuristic-todo-api/internal/config"
	"futuristic-todo-api/internal/logging"
	"futuristic-todo-api/internal/tls"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const readHeaderTimeout = 10 * time.Second

// listener pairs a server with the socket it serves on
type listener struct {
	name   string
	server *http.Server
	ln     net.Listener
	tls    bool
}

// Run serves handler on cfg.Port, or on tlsCfg.Port with an optional HTTP
// redirect listener when TLS is enabled. It blocks until ctx is cancelled or
// a listener fails, then shuts every server down within cfg.ShutdownTimeout.
func Run(ctx context.Context, cfg *config.ServerConfig, tlsCfg *tls.Config, handler http.Handler) error {
	var listeners []listener
	closeAll := func() {
		for _, l := range listeners {
			l.ln.Close()
		}
	}

	if tlsCfg != nil && tlsCfg.Enabled {
		tlsConfig, err := tlsCfg.CreateTLSConfig()
		if err != nil {
			return fmt.Errorf("configure TLS: %w", err)
		}

		ln, err := net.Listen("tcp", ":"+tlsCfg.Port)
		if err != nil {
			return fmt.Errorf("listen on TLS port %s: %w", tlsCfg.Port, err)
		}
		listeners = append(listeners, listener{
			name:   "https",
			server: &http.Server{Handler: handler, TLSConfig: tlsConfig, ReadHeaderTimeout: readHeaderTimeout},
			ln:     ln,
			tls:    true,
		})

		if tlsCfg.RedirectHTTP {
			ln, err := net.Listen("tcp", ":"+cfg.Port)
			if err != nil {
				closeAll()
				return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
			}
			listeners = append(listeners, listener{
				name:   "http-redirect",
				server: &http.Server{Handler: tls.HTTPSRedirectHandler(tlsCfg.Port), ReadHeaderTimeout: readHeaderTimeout},
				ln:     ln,
			})
		}
	} else {
		ln, err := net.Listen("tcp", ":"+cfg.Port)
		if err != nil {
			return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
		}
		listeners = append(listeners, listener{
			name:   "http",
			server: &http.Server{Handler: handler, ReadHeaderTimeout: readHeaderTimeout},
			ln:     ln,
		})
	}

	return serve(ctx, cfg.ShutdownTimeout.Duration, listeners)
}

func serve(ctx context.Context, shutdownTimeout time.Duration, listeners []listener) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, l := range listeners {
		l := l
		g.Go(func() error {
			logging.Logger.WithFields(logrus.Fields{
				"listener": l.name,
				"addr":     l.ln.Addr().String(),
			}).Info("Server listening")

			var err error
			if l.tls {
				err = l.server.ServeTLS(l.ln, "", "")
			} else {
				err = l.server.Serve(l.ln)
			}
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("%s server: %w", l.name, err)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logging.Logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, l := range listeners {
			if err := l.server.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("%s shutdown: %w", l.name, err))
			}
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}

		logging.Logger.Info("Server stopped")
		return nil
	})

	return g.Wait()
}

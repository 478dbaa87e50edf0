// VeilScan - VPN, Proxy, and Anonymization Detection for Web Clients
// Copyright 2026 The VeilScan Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilscan/veilscan

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veilscan/veilscan/internal/logging"
	"github.com/veilscan/veilscan/internal/middleware"
)

// RouterConfig holds routing-level settings.
type RouterConfig struct {
	// CORSOrigins lists allowed cross-origin hosts.
	CORSOrigins []string

	// DetectRateLimit is requests per client IP per minute on the detect
	// endpoint. Zero disables limiting.
	DetectRateLimit int

	// ReadRateLimit is requests per client IP per minute on read endpoints.
	ReadRateLimit int
}

// NewRouter assembles the chi router with the full middleware stack.
func NewRouter(handler *Handler, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Prometheus())
	r.Use(middleware.RequestLogger())

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.RateLimit("detect", cfg.DetectRateLimit, time.Minute)).
			Post("/detect", handler.Detect)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit("read", cfg.ReadRateLimit, time.Minute))
			r.Get("/verdicts", handler.ListVerdicts)
			r.Get("/verdicts/{id}", handler.GetVerdict)
			r.Get("/intel/status", handler.IntelStatus)
		})

		r.Get("/health/live", handler.HealthLive)
		r.Get("/health/ready", handler.HealthReady)
		r.Get("/ws", handler.ServeWS)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Server wraps http.Server as a supervised service.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
}

// NewServer builds the HTTP server service.
func NewServer(addr string, router http.Handler, readTimeout, writeTimeout, shutdownTimeout time.Duration) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

// String identifies the service in supervisor logs.
func (s *Server) String() string {
	return "http-server"
}

// Serve runs the listener until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.srv.Addr).Msg("HTTP server listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()
	}
}

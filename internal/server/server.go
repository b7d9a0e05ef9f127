// Package server terminates the platform webhook and the operational
// endpoints. One HTTP request in, one status out; all reply work happens
// synchronously inside the request.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"replybot/internal/domain"
	"replybot/internal/metrics"
)

// Config configures the webhook server.
type Config struct {
	Addr              string
	ChannelSecret     string
	ValidateSignature bool
	Replier           domain.Replier
	Sender            domain.Sender
	MetricsEnabled    bool
	Logger            *slog.Logger
}

// Server handles webhook, health, and metrics requests.
type Server struct {
	addr           string
	channelSecret  string
	verify         bool
	replier        domain.Replier
	sender         domain.Sender
	metricsEnabled bool
	logger         *slog.Logger
	server         *http.Server
}

func New(cfg Config) *Server {
	return &Server{
		addr:          cfg.Addr,
		channelSecret: cfg.ChannelSecret,
		// No secret means nothing to verify against, toggle or not.
		verify:         cfg.ValidateSignature && cfg.ChannelSecret != "",
		replier:        cfg.Replier,
		sender:         cfg.Sender,
		metricsEnabled: cfg.MetricsEnabled,
		logger:         cfg.Logger,
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.metricsEnabled {
		mux.Handle("GET /metrics", metrics.Collector.Handler())
	}
	return mux
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if s.verify {
		metrics.SignatureValidation.Set(1)
	} else {
		metrics.SignatureValidation.Set(0)
		s.logger.Warn("signature validation disabled, accepting unsigned webhooks")
	}

	s.logger.Info("webhook server starting", "addr", s.addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("webhook server: %w", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "replybot",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

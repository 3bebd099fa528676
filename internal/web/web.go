// Package web provides the optional debug/status HTTP endpoint of the
// appliance. It is disabled unless a listen address is configured; when
// enabled it should be bound to loopback or a trusted management network.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"ngui/internal/logging"
)

// Status is the snapshot served at /api/status.
type Status struct {
	Backend        string `json:"backend"`
	HorRes         int    `json:"hor_res"`
	VerRes         int    `json:"ver_res"`
	ColorDepth     int    `json:"color_depth"`
	UptimeTicks    uint32 `json:"uptime_ticks"`
	LastActivityMs uint32 `json:"last_activity_ms"`
	ScreenOn       bool   `json:"screen_on"`
}

// StatusFunc produces the current snapshot. It is called on HTTP handler
// goroutines, so it must only read data that is safe to read concurrently
// or captured atomically by the host.
type StatusFunc func() Status

// Server serves /health and /api/status.
type Server struct {
	mux      *http.ServeMux
	statusFn StatusFunc
}

// NewServer constructs a Server around the given snapshot function.
func NewServer(statusFn StatusFunc) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		statusFn: statusFn,
	}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.statusFn()); err != nil {
		logging.Warn("status encode failed", zap.Error(err))
	}
}

// Serve runs the endpoint until ctx is cancelled, then shuts down
// gracefully. Intended to run on its own goroutine.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logging.Info("status endpoint listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Package status exposes the optional /health and /status HTTP endpoints.
// The bot runs without it when no listen address is configured.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Mlesn1/GeminiDiscordHelper/internal/memory"
	"github.com/Mlesn1/GeminiDiscordHelper/internal/version"
)

// statsProvider is the minimal interface the server needs from the engine.
type statsProvider interface {
	Stats() memory.Stats
}

// healthResponse is returned by GET /health.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// statusResponse is returned by GET /status.
type statusResponse struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	Commit        string    `json:"commit"`
	BuildTime     string    `json:"build_time"`
	StartedAt     time.Time `json:"started_at"`
	UptimeSecs    float64   `json:"uptime_seconds"`
	UserConvos    int       `json:"user_conversations"`
	ChannelConvos int       `json:"channel_conversations"`
}

// Server serves the status endpoints.
type Server struct {
	addr      string
	stats     statsProvider
	startedAt time.Time
	server    *http.Server
	mux       *http.ServeMux
}

// NewServer creates and configures the HTTP server (does not start it).
func NewServer(addr string, stats statsProvider) *Server {
	mux := http.NewServeMux()
	s := &Server{
		addr:      addr,
		stats:     stats,
		startedAt: time.Now(),
		mux:       mux,
	}
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	return s
}

// ServeHTTP implements http.Handler so the server can be tested without a
// live network listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Start begins listening in the background. Blocks until the listener is
// established so the caller knows the port is open before returning.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("status server: listen %s: %w", s.addr, err)
	}

	s.server = &http.Server{
		Handler:      s,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("status server listening", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("status server stopped", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("status server shutdown error", "err", err)
		}
	}()

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: version.Version,
		Commit:  version.GitCommit,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	var st memory.Stats
	if s.stats != nil {
		st = s.stats.Stats()
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:        "ok",
		Version:       version.Version,
		Commit:        version.GitCommit,
		BuildTime:     version.BuildTime,
		StartedAt:     s.startedAt,
		UptimeSecs:    time.Since(s.startedAt).Seconds(),
		UserConvos:    st.Users,
		ChannelConvos: st.Channels,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("status: failed to encode JSON response", "err", err)
	}
}

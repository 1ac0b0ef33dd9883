// Package status serves health, system and engine introspection endpoints.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"rpg-bot/engine"
	"rpg-bot/model"
)

// Gateway reports the health of the chat connection. *discordgo.Session
// satisfies it.
type Gateway interface {
	HeartbeatLatency() time.Duration
}

type Server struct {
	addr    string
	router  *mux.Router
	handler http.Handler
	engine  *engine.Engine
	gateway Gateway
	log     *zap.Logger
	started time.Time
}

type statusResponse struct {
	System           SystemInfo `json:"system"`
	HeartbeatLatency string     `json:"heartbeatLatency,omitempty"`
	Cooldowns        int        `json:"cooldowns"`
	Components       int        `json:"components"`
	Confirmations    int        `json:"pendingConfirmations"`
}

// New builds the server. origins configures CORS; empty allows any origin.
func New(addr string, origins []string, eng *engine.Engine, gw Gateway, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		addr:    addr,
		router:  mux.NewRouter(),
		engine:  eng,
		gateway: gw,
		log:     log.Named("status"),
		started: time.Now(),
	}
	s.setupRoutes()

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	s.handler = c.Handler(s.router)
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/status", s.statusHandler).Methods(http.MethodGet)

	debug := s.router.PathPrefix("/debug").Subrouter()
	debug.HandleFunc("/cooldowns", s.cooldownsHandler).Methods(http.MethodGet)
	debug.HandleFunc("/components", s.componentsHandler).Methods(http.MethodGet)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("status server listening", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		System:        collectSystemInfo(s.started),
		Cooldowns:     s.engine.Cooldowns().Len(),
		Components:    s.engine.Components().Len(),
		Confirmations: s.engine.PendingConfirmations(),
	}
	if s.gateway != nil {
		resp.HeartbeatLatency = s.gateway.HeartbeatLatency().String()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) cooldownsHandler(w http.ResponseWriter, r *http.Request) {
	entries := s.engine.Cooldowns().Snapshot()
	if entries == nil {
		entries = []model.CooldownEntry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) componentsHandler(w http.ResponseWriter, r *http.Request) {
	entries := s.engine.Components().Snapshot()
	if entries == nil {
		entries = []model.PendingComponentEntry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

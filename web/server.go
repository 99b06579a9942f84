package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"markestedt/alpa/config"
	"markestedt/alpa/storage"
)

//go:embed static/*
var staticFiles embed.FS

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     localOrigin,
}

// localOrigin accepts requests without an Origin header (curl, scripts) and
// browser requests from the dashboard itself. The origin must name a
// loopback host and match the Host the request was sent to, so pages on
// other sites and rebound DNS names are refused.
func localOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
	default:
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// requireLocalOrigin rejects cross-site requests before they reach a handler
func requireLocalOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !localOrigin(r) {
			slog.Warn("Rejected cross-origin request", "origin", r.Header.Get("Origin"), "path", r.URL.Path)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// History is the generation store behind the history and stats endpoints
type History interface {
	GetGenerations(limit, offset int) ([]storage.Generation, error)
	GetGenerationCount() (int, error)
	DeleteGeneration(id int64) error
	GetOverallStats(days int) (*storage.OverallStats, error)
	GetDailyStats(days int) ([]storage.DailyStats, error)
	GetOutcomeStats(days int) ([]storage.OutcomeStats, error)
	GetEngineStats(days int) ([]storage.EngineStats, error)
}

// Controller exposes the generation state to the dashboard
type Controller interface {
	Generating() bool
	RequestCancel()
}

// Server represents the web server
type Server struct {
	history History // nil when history is disabled
	control Controller
	config  *config.Config
	port    int
	hub     *Hub
	mu      sync.RWMutex

	httpServer *http.Server
}

// NewServer creates a new web server. history may be nil.
func NewServer(history History, control Controller, cfg *config.Config, port int) *Server {
	hub := NewHub()
	go hub.Run()

	return &Server{
		history: history,
		control: control,
		config:  cfg,
		port:    port,
		hub:     hub,
	}
}

// Handler builds the routes
func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/cancel", s.handleCancel)
	mux.HandleFunc("/api/commands", s.handleCommands)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/history/", s.handleHistory)
	mux.HandleFunc("/ws", s.handleWebSocket)

	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to load static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	return requireLocalOrigin(mux), nil
}

// Start serves the dashboard until Shutdown is called
func (s *Server) Start() error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	slog.Info("Starting web server", "port", s.port, "url", s.URL())

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server failed: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server and disconnects websocket clients
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()

	s.mu.RLock()
	srv := s.httpServer
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// URL is the dashboard address
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

// GetConfig returns the current configuration (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// BroadcastStatus broadcasts a status update to all connected clients
func (s *Server) BroadcastStatus(status string) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeStatus,
		Data: StatusMessage{Status: status},
	})
}

// BroadcastGeneration broadcasts a finished generation to all connected clients
func (s *Server) BroadcastGeneration(g *storage.Generation) {
	ts := g.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	s.hub.BroadcastMessage(Message{
		Type: MessageTypeGeneration,
		Data: GenerationMessage{
			ID:         g.ID,
			UUID:       g.UUID,
			Engine:     g.Engine,
			Outcome:    g.Outcome,
			Characters: g.CharacterCount,
			Timestamp:  ts.UTC().Format(time.RFC3339),
		},
	})
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	select {
	case client.hub.register <- client:
	case <-client.hub.done:
		conn.Close()
		return
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

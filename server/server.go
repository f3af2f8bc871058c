// Package server exposes a live layout over HTTP: JSON endpoints for the
// graph and its positions, server-side renders, and a WebSocket feed that
// streams positions and accepts drag commands.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/TFMV/communitygraph/models"
	"github.com/TFMV/communitygraph/physics"
	"github.com/TFMV/communitygraph/render"
)

// Config for the server
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	// AllowedOrigins lists origins allowed to open the WebSocket; "*"
	// allows any. Empty means same-origin only.
	AllowedOrigins []string
	// Render holds the defaults for /api/render
	Render render.OutputOptions
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		Render:          *render.NewDefaultOptions("svg"),
	}
}

// Server serves one live layout
type Server struct {
	cfg      Config
	engine   *physics.Engine
	loop     *physics.Loop
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	graph *models.Graph

	clients *hub
}

// New creates a server for the engine driven by loop. The graph is loaded
// into the engine.
func New(cfg Config, engine *physics.Engine, loop *physics.Loop, graph *models.Graph, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		cfg:     cfg,
		engine:  engine,
		loop:    loop,
		logger:  logger,
		graph:   graph,
		clients: newHub(logger),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	engine.SetGraph(graph.Nodes, graph.Edges)
	return s
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", handleIndex())
	mux.HandleFunc("GET /api/graph", s.handleGraph())
	mux.HandleFunc("GET /api/positions", s.handlePositions())
	mux.HandleFunc("GET /api/render", s.handleRender())
	mux.HandleFunc("POST /api/nodes/{id}/pin", s.handlePin())
	mux.HandleFunc("POST /api/nodes/{id}/unpin", s.handleUnpin())
	mux.HandleFunc("POST /api/nodes/{id}/position", s.handlePosition())
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return mux
}

// Graph returns the graph currently served
func (s *Server) Graph() *models.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// SetGraph swaps the served graph. The engine keeps the state of nodes
// that survive, and connected clients receive the new graph.
func (s *Server) SetGraph(graph *models.Graph) {
	s.mu.Lock()
	s.graph = graph
	s.mu.Unlock()

	s.engine.SetGraph(graph.Nodes, graph.Edges)
	s.clients.broadcast(graphMessage(graph))
	s.loop.Broadcast()

	s.logger.Info("graph updated", "nodes", len(graph.Nodes), "edges", len(graph.Edges))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("error listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		errChan <- server.Serve(ln)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.clients.closeAll()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down: %w", err)
	}
	if err := <-errChan; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}

// positioned returns a copy of the served graph with live positions applied
func (s *Server) positioned() *models.Graph {
	graph := s.Graph().Clone()
	s.engine.Snapshot().Apply(graph)
	return graph
}

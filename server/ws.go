package server

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/TFMV/communitygraph/models"
	"github.com/TFMV/communitygraph/physics"
)

const writeWait = 10 * time.Second

// Message is the envelope for every WebSocket frame in both directions
type Message struct {
	Type string `json:"type"`

	// server -> client
	Graph     *models.Graph            `json:"graph,omitempty"`
	Seq       uint64                   `json:"seq,omitempty"`
	Positions map[string]physics.Point `json:"positions,omitempty"`
	Error     string                   `json:"error,omitempty"`

	// client -> server
	ID string   `json:"id,omitempty"`
	X  *float64 `json:"x,omitempty"`
	Y  *float64 `json:"y,omitempty"`
}

// Frame types
const (
	TypeGraph     = "graph"
	TypePositions = "positions"
	TypeError     = "error"
	TypePin       = "pin"
	TypeMove      = "move"
	TypeUnpin     = "unpin"
)

func graphMessage(graph *models.Graph) Message {
	return Message{Type: TypeGraph, Graph: graph}
}

func positionsMessage(snap *physics.Snapshot) Message {
	return Message{Type: TypePositions, Seq: snap.Seq(), Positions: snap.Positions()}
}

// conn serializes writes to a websocket.Conn so the position pump and
// graph broadcasts can share it
type conn struct {
	id      string
	c       *websocket.Conn
	writeMu sync.Mutex
}

func (c *conn) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.c.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.c.WriteJSON(v)
}

// close sends a going-away frame and closes the connection
func (c *conn) close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	var errs []error
	if err := c.c.SetWriteDeadline(time.Now().Add(time.Second)); err != nil {
		errs = append(errs, err)
	}
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
	if err := c.c.WriteMessage(websocket.CloseMessage, msg); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		errs = append(errs, err)
	}
	if err := c.c.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// hub tracks connected clients
type hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	conns map[string]*conn
}

func newHub(logger *slog.Logger) *hub {
	return &hub{logger: logger, conns: make(map[string]*conn)}
}

func (h *hub) add(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.id] = c
}

func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *hub) broadcast(msg Message) {
	h.mu.RLock()
	conns := make([]*conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		// the client's read loop removes a broken connection
		if err := c.writeJSON(msg); err != nil {
			h.logger.Warn("broadcast failed", "client", c.id, "type", msg.Type, "error", err)
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[string]*conn)
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.close(); err != nil {
			h.logger.Debug("close failed", "client", c.id, "error", err)
		}
	}
}

// handleWebSocket upgrades the request, sends the graph, then streams a
// positions frame per published snapshot while applying drag commands
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &conn{id: uuid.New().String(), c: ws}
	s.clients.add(c)
	logger := s.logger.With("client", c.id)
	logger.Info("client connected", "remote", r.RemoteAddr, "clients", s.clients.count())

	snaps, unsubscribe := s.loop.Subscribe(1)
	done := make(chan struct{})
	var wg sync.WaitGroup

	defer func() {
		unsubscribe()
		close(done)
		wg.Wait()
		s.clients.remove(c.id)
		ws.Close()
		logger.Info("client disconnected", "clients", s.clients.count())
	}()

	if err := c.writeJSON(graphMessage(s.positioned())); err != nil {
		logger.Warn("write failed", "error", err)
		return
	}
	if err := c.writeJSON(positionsMessage(s.engine.Snapshot())); err != nil {
		logger.Warn("write failed", "error", err)
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case snap := <-snaps:
				if err := c.writeJSON(positionsMessage(snap)); err != nil {
					logger.Debug("position write failed", "error", err)
					ws.Close()
					return
				}
			}
		}
	}()

	for {
		var msg Message
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("read failed", "error", err)
			}
			return
		}
		if errMsg := s.apply(msg); errMsg != "" {
			if err := c.writeJSON(Message{Type: TypeError, ID: msg.ID, Error: errMsg}); err != nil {
				logger.Warn("write failed", "error", err)
				return
			}
		}
	}
}

// apply runs one client command against the engine and returns an error
// description for the client, or "" on success
func (s *Server) apply(msg Message) string {
	switch msg.Type {
	case TypePin:
		if !s.engine.Pin(msg.ID) {
			return "unknown node"
		}
		if msg.X != nil && msg.Y != nil {
			s.engine.SetPosition(msg.ID, *msg.X, *msg.Y)
			s.loop.Broadcast()
		}
	case TypeMove:
		if msg.X == nil || msg.Y == nil {
			return "move needs x and y"
		}
		if !s.engine.SetPosition(msg.ID, *msg.X, *msg.Y) {
			return "unknown node"
		}
		s.loop.Broadcast()
	case TypeUnpin:
		if !s.engine.Unpin(msg.ID) {
			return "unknown node"
		}
	default:
		return "unknown message type"
	}
	return ""
}

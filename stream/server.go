package stream

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/lixenwraith/softmesh/vmath"
)

// Frame is the JSON payload sent to every connected viewer after a publish
type Frame struct {
	Type      string       `json:"type"`
	Tick      uint64       `json:"tick"`
	Positions [][3]float32 `json:"positions"`
}

// Server broadcasts published position buffers to websocket viewers
// Broadcast has the publish-hook signature, so it plugs straight into
// Controller.AddPublishHook. Writes are serialized per connection; a failed
// write evicts the connection
type Server struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex

	tick atomic.Uint64
}

// NewServer creates a broadcast server accepting any origin
func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// ServeHTTP upgrades the request and registers the connection
// Inbound messages are drained and discarded; viewers are read-only
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.clients[conn] = &sync.Mutex{}
	s.mu.Unlock()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.drop(conn)
				return
			}
		}
	}()
}

// ClientCount returns the number of connected viewers
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast sends the position buffer to every connected viewer
// Matches the controller publish-hook signature; the slice is copied into
// the frame before any write, so it never outlives the caller's scope
func (s *Server) Broadcast(positions []vmath.Vec3) {
	frame := Frame{
		Type:      "mesh",
		Tick:      s.tick.Add(1),
		Positions: make([][3]float32, len(positions)),
	}
	for i, p := range positions {
		frame.Positions[i] = [3]float32{p.X, p.Y, p.Z}
	}

	s.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	locks := make([]*sync.Mutex, 0, len(s.clients))
	for conn, lock := range s.clients {
		conns = append(conns, conn)
		locks = append(locks, lock)
	}
	s.mu.RUnlock()

	for i, conn := range conns {
		locks[i].Lock()
		err := conn.WriteJSON(frame)
		locks[i].Unlock()
		if err != nil {
			s.drop(conn)
		}
	}
}

// Close disconnects all viewers
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]*sync.Mutex)
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	if _, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		conn.Close()
	}
	s.mu.Unlock()
}

package stream

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lixenwraith/softmesh/vmath"
)

func dialTestServer(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastFrameRoundTrip(t *testing.T) {
	srv := NewServer()
	defer srv.Close()

	conn := dialTestServer(t, srv)

	// Registration happens in the upgrade handler; wait for it
	deadline := time.Now().Add(time.Second)
	for srv.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	positions := []vmath.Vec3{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}}
	srv.Broadcast(positions)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var frame Frame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatal(err)
	}

	if frame.Type != "mesh" {
		t.Errorf("frame type = %q, want mesh", frame.Type)
	}
	if frame.Tick != 1 {
		t.Errorf("frame tick = %d, want 1", frame.Tick)
	}
	if len(frame.Positions) != 2 {
		t.Fatalf("frame carries %d positions, want 2", len(frame.Positions))
	}
	if frame.Positions[1] != [3]float32{4, 5, 6} {
		t.Errorf("position 1 = %v, want [4 5 6]", frame.Positions[1])
	}
}

func TestBroadcastNoClients(t *testing.T) {
	srv := NewServer()
	defer srv.Close()

	// Must not block or panic with an empty client set
	srv.Broadcast([]vmath.Vec3{{X: 1, Y: 1, Z: 1}})
}

func TestDroppedClientEvicted(t *testing.T) {
	srv := NewServer()
	defer srv.Close()

	conn := dialTestServer(t, srv)

	deadline := time.Now().Add(time.Second)
	for srv.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	conn.Close()

	// Eviction is observed either by the reader goroutine or by the
	// next failed broadcast write
	deadline = time.Now().Add(time.Second)
	for srv.ClientCount() != 0 {
		srv.Broadcast([]vmath.Vec3{})
		if time.Now().After(deadline) {
			t.Fatal("closed client never evicted")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

package debugfeed

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trackgen/server/internal/config"
	"go.uber.org/zap"
)

func startServer(t *testing.T, queue int) *Server {
	t.Helper()
	s, err := NewServer(config.DebugFeedConfig{BindAddress: "127.0.0.1:0", ClientQueueSize: queue}, "run-1", "abc123", zap.NewNop())
	require.NoError(t, err)
	go s.Serve()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return s
}

func dial(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+s.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestClientReceivesHelloThenBroadcasts(t *testing.T) {
	s := startServer(t, 8)
	conn := dial(t, s)

	hello := readFrame(t, conn)
	assert.Equal(t, FrameHello, hello.Type)
	var h Hello
	require.NoError(t, json.Unmarshal(hello.Payload, &h))
	assert.NotEmpty(t, h.ClientID)
	assert.Equal(t, "run-1", h.RunID)
	assert.Equal(t, "abc123", h.Catalog)
	assert.Equal(t, 1, s.Clients())

	s.Broadcast(FrameSegmentGenerated, Segment{ID: 3, Template: "street_plain", Intent: "normal", Obstacles: 2})

	f := readFrame(t, conn)
	assert.Equal(t, FrameSegmentGenerated, f.Type)
	assert.Greater(t, f.Seq, hello.Seq)
	var seg Segment
	require.NoError(t, json.Unmarshal(f.Payload, &seg))
	assert.Equal(t, 3, seg.ID)
	assert.Equal(t, "street_plain", seg.Template)
	assert.Equal(t, 2, seg.Obstacles)
}

func TestBroadcastWithoutClientsIsNoOp(t *testing.T) {
	s := startServer(t, 8)
	s.Broadcast(FrameStats, Stats{State: "steady"})
	assert.Equal(t, 0, s.Clients())
}

func TestSlowClientIsDropped(t *testing.T) {
	c := newClient("slow", nil, 1, zap.NewNop())

	assert.True(t, c.Send([]byte("a")))
	assert.False(t, c.Send([]byte("b")), "queue full")
	assert.True(t, c.IsClosed())
	assert.False(t, c.Send([]byte("c")))

	c.Close() // idempotent
}

func TestBroadcastRemovesClosedClients(t *testing.T) {
	s := startServer(t, 8)
	c := newClient("gone", nil, 4, zap.NewNop())
	c.Close()
	s.mu.Lock()
	s.clients[c.ID] = c
	s.mu.Unlock()

	s.Broadcast(FrameStats, Stats{})
	assert.Equal(t, 0, s.Clients())
}

func TestShutdownClosesClients(t *testing.T) {
	s := startServer(t, 8)
	conn := dial(t, s)
	readFrame(t, conn)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.Equal(t, 0, s.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestNewServerBadAddress(t *testing.T) {
	_, err := NewServer(config.DebugFeedConfig{BindAddress: "not-an-address"}, "", "", zap.NewNop())
	assert.ErrorContains(t, err, "listen debug feed")
}

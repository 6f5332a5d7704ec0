package debugfeed

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

// Client is one connected overlay. Frames are queued by the game loop and
// written by the client's own goroutine.
type Client struct {
	ID   string
	conn *websocket.Conn
	out  chan []byte

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func newClient(id string, conn *websocket.Conn, queueSize int, log *zap.Logger) *Client {
	return &Client{
		ID:      id,
		conn:    conn,
		out:     make(chan []byte, queueSize),
		closeCh: make(chan struct{}),
		log:     log.With(zap.String("client", id)),
	}
}

func (c *Client) start() {
	go c.readLoop()
	go c.writeLoop()
}

// Send queues a frame without blocking. A full queue means the client
// cannot keep up, so it is disconnected.
func (c *Client) Send(frame []byte) bool {
	if c.closed.Load() {
		return false
	}
	select {
	case c.out <- frame:
		return true
	default:
		c.log.Warn("debug feed client too slow, dropping")
		c.Close()
		return false
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.closeCh)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

func (c *Client) IsClosed() bool {
	return c.closed.Load()
}

// readLoop only drains control frames; overlays never send data.
func (c *Client) readLoop() {
	defer c.Close()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writeLoop() {
	defer c.Close()
	for {
		select {
		case frame := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				if !c.closed.Load() {
					c.log.Debug("debug feed write failed", zap.Error(err))
				}
				return
			}
		case <-c.closeCh:
			return
		}
	}
}

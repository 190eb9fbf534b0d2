package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/love4pets/realtime/internal/core"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

// Client is one live websocket connection. Writes go through a buffered
// channel drained by the write pump; TrySend never blocks.
type Client struct {
	id   core.ConnID
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newClient(id core.ConnID, conn *websocket.Conn, buf int) *Client {
	return &Client{
		id:   id,
		conn: conn,
		send: make(chan core.Frame, buf),
	}
}

func (c *Client) ID() core.ConnID { return c.id }

func (c *Client) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.mu.Unlock()
}

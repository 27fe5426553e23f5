package session

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"docsync/internal/models"
)

var errNoTransport = errors.New("no transport attached")

// Client is the ephemeral handle for one live websocket connection. The
// username is assigned by the identity service at connect time and never
// changes for the connection's lifetime.
type Client struct {
	ID       string
	Username string

	Conn *websocket.Conn
	mu   sync.Mutex
	hook func(models.WSFrame) error
}

func NewClient(id, username string, conn *websocket.Conn) *Client {
	return &Client{ID: id, Username: username, Conn: conn}
}

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(models.WSFrame) error) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

// Send writes one frame to the transport. Writes are serialized per client
// so concurrent room broadcasts never interleave a frame.
func (c *Client) Send(frame models.WSFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		return c.hook(frame)
	}
	if c.Conn == nil {
		return errNoTransport
	}
	return c.Conn.WriteJSON(frame)
}

package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

// Keepalive and backpressure limits for dashboard connections.
const (
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
	pingEvery    = idleTimeout * 9 / 10

	// Dashboard clients only ever send pongs.
	readLimit = 4 * 1024

	// A client whose queue fills up is dropped.
	queueSize = 64
)

// Client is one websocket connection subscribed to a hub.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	queue chan Message
}

// NewClient subscribes conn to h. If h has already stopped the client's
// queue is closed immediately.
func NewClient(h *Hub, conn *websocket.Conn) *Client {
	c := &Client{hub: h, conn: conn, queue: make(chan Message, queueSize)}
	select {
	case h.join <- c:
	case <-h.done:
		close(c.queue)
	}
	return c
}

// Serve writes queued messages until the connection or the hub goes away.
// It blocks, so call it from the websocket handler.
func (c *Client) Serve() {
	go c.write()
	c.read()
}

func (c *Client) read() {
	defer func() {
		select {
		case c.hub.leave <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	extend := func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	}
	c.conn.SetReadLimit(readLimit)
	extend("")
	c.conn.SetPongHandler(extend)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) write() {
	ping := time.NewTicker(pingEvery)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		var (
			kind int
			data []byte
		)
		select {
		case m, ok := <-c.queue:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			kind, data = websocket.TextMessage, m.Data
			if m.Binary {
				kind = websocket.BinaryMessage
			}
		case <-ping.C:
			kind = websocket.PingMessage
		}

		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(kind, data); err != nil {
			return
		}
	}
}

package realtime

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Client es una conexión websocket de un owner.
type Client struct {
	hub   *Hub
	owner string
	conn  *ws.Conn
	send  chan []byte
}

func NewClient(hub *Hub, owner string, conn *ws.Conn) *Client {
	return &Client{
		hub:   hub,
		owner: owner,
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
	}
}

// Run bloquea hasta que se cierra la conexión.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump descarta lo que manda el browser; sólo sirve para detectar el cierre.
func (c *Client) readPump(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

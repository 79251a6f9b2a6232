package realtime

import (
	"time"

	"github.com/clubhub-dev/clubhub/internal/domain"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 // clients only send pongs; anything larger is noise
	sendBuffer     = 256
)

// Client is one websocket subscription to a forum room.
type Client struct {
	forum domain.ForumId
	conn  *websocket.Conn
	send  chan []byte
}

func newClient(forum domain.ForumId, conn *websocket.Conn) *Client {
	return &Client{
		forum: forum,
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
	}
}

// readPump discards inbound frames (the channel is server-push only) and
// tears the subscription down on any read error. Leaving the room here makes
// teardown unconditional: every disconnect path ends in a read error.
func (c *Client) readPump(h *Hub) {
	defer func() {
		h.leave(c.forum, c)
		close(c.send)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

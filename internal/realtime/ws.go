package realtime

import (
	"net/http"

	"github.com/clubhub-dev/clubhub/internal/domain"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS layer in front of the router
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and subscribes the connection to the forum's
// room. Authorization (private forum membership) happens before this call.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, forum domain.ForumId) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		h.logger.Warn("websocket upgrade failed", "forum", forum, "error", err)
		return
	}

	c := newClient(forum, conn)
	h.join(forum, c)
	h.logger.Debug("client joined room", "forum", forum, "room_size", h.RoomSize(forum))

	go c.writePump()
	go c.readPump(h)
}

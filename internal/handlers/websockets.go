package handlers

import (
	"net/http"
	"time"

	"traceper/internal/guard"
	"traceper/internal/tabs"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB

	msgRoute = "route"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Pages and sockets are served from the same host, so any origin that can
// reach the tab id may follow it.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConnect streams the tab's re-render instructions until the tab closes or
// the client goes away.
func (h *Handler) wsConnect(c *gin.Context) {
	t := tabFrom(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "tab", t.ID, "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		// A live socket keeps the tab from being swept.
		h.tabs.Get(t.ID)
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Anything queued predates the page that opened this socket. The page says
	// where it is; if that is no longer reachable, send it on right away.
	t.DiscardUpdates()
	if at := c.Query("at"); at != "" {
		if d := t.Navigator.Navigate(at); d.Redirected {
			if err := h.sendRoute(conn, d); err != nil {
				h.log.Infow("ws_write_failed_initial", "tab", t.ID, "err", err)
				return
			}
		}
	}

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, t, done)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-t.Done():
			h.closeSocket(conn)
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			h.tabs.Get(t.ID)
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.Infow("ws_ping_failed", "tab", t.ID, "err", err)
				return
			}
		case d := <-t.Updates():
			if err := h.sendRoute(conn, d); err != nil {
				h.log.Infow("ws_write_failed", "tab", t.ID, "err", err)
				return
			}
		}
	}
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, t *tabs.Tab, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.log.Debugw("ws_read_closed", "tab", t.ID, "err", err)
			return
		}
	}
}

// sendRoute writes one re-render instruction with a write deadline.
func (h *Handler) sendRoute(conn *websocket.Conn, d guard.Decision) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: msgRoute, Data: d})
}

func (h *Handler) closeSocket(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "tab closed")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

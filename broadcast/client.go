package broadcast

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kokexgggguu/haxball/dispatch"
	"github.com/kokexgggguu/haxball/domain/event"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4096
)

// clientMessage is the inbound wire format from a dashboard connection.
type clientMessage struct {
	Type    string `json:"type"`
	Command string `json:"command,omitempty"`
	Message string `json:"message,omitempty"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func newClient(h *Hub, conn *websocket.Conn) *client {
	return &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// sendEvent queues one event for this client only, best effort.
func (c *client) sendEvent(e event.DashboardEvent) {
	payload, err := json.Marshal(event.Wrap(e))
	if err != nil {
		c.hub.log.Error("event marshal failed", slog.String("type", e.EventType()), slog.Any("error", err))
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// readPump consumes inbound client messages until the connection dies.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn("websocket read failed", slog.Any("error", err))
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.hub.log.Warn("malformed client message dropped", slog.Any("error", err))
			continue
		}
		c.handle(msg)
	}
}

// handle reacts to one parsed client message.
func (c *client) handle(msg clientMessage) {
	switch msg.Type {
	case "ping":
		c.sendEvent(pongEvent{})
	case "requestStats":
		c.sendEvent(statsUpdateEvent{statsSnapshot: c.hub.snapshot()})
	case "executeCommand":
		if c.hub.dispatcher != nil && msg.Command != "" {
			c.hub.dispatcher.Dispatch(dispatch.DashboardInvoker(), msg.Command)
		}
	case "sendChat":
		if c.hub.dispatcher != nil && msg.Message != "" {
			c.hub.dispatcher.SendDashboardChat(msg.Message)
		}
	default:
		c.hub.log.Debug("unknown client message type", slog.String("type", msg.Type))
	}
}

// writePump drains the send queue onto the wire and keeps the connection
// alive with periodic pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type pongEvent struct{}

func (pongEvent) EventType() string { return "pong" }

// statsUpdateEvent answers a requestStats message with a full snapshot.
type statsUpdateEvent struct {
	statsSnapshot
}

func (statsUpdateEvent) EventType() string { return "statsUpdate" }

// Package broadcast fans dashboard events out to live websocket connections.
// Delivery is best effort: a connection that cannot keep up is dropped rather
// than allowed to stall the room.
package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/kokexgggguu/haxball/contract"
	"github.com/kokexgggguu/haxball/domain"
	"github.com/kokexgggguu/haxball/domain/event"
)

// sendBuffer is the per-connection outbound queue; overflow drops the client.
const sendBuffer = 64

// statsSnapshot is the payload answering a requestStats client message.
type statsSnapshot struct {
	Stats    domain.RoomStats         `json:"stats"`
	Chat     []domain.ChatMessage     `json:"chat"`
	Activity []domain.DiscordActivity `json:"activity"`
	Players  []domain.Player          `json:"players"`
	Settings domain.RoomSettings      `json:"settings"`
}

// Hub owns the set of live dashboard connections. It satisfies both
// contract.Broadcaster and contract.Worker; the supervisor runs its loop.
type Hub struct {
	log      *slog.Logger
	store    contract.Store
	upgrader websocket.Upgrader

	register   chan *client
	unregister chan *client
	outbound   chan []byte
	clients    map[*client]struct{}

	// done is closed when the loop stops so pump goroutines and late
	// upgrades never block on an unserviced channel.
	done     chan struct{}
	doneOnce sync.Once

	// dispatcher is set after construction; the dispatcher itself needs the
	// hub to broadcast, so the two are tied together in main.
	dispatcher contract.Dispatcher
}

func NewHub(log *slog.Logger, store contract.Store) *Hub {
	return &Hub{
		log:   log.With(slog.String("component", "broadcast")),
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		register:   make(chan *client),
		unregister: make(chan *client),
		outbound:   make(chan []byte, sendBuffer),
		clients:    make(map[*client]struct{}),
		done:       make(chan struct{}),
	}
}

// SetDispatcher wires the command dispatcher used for executeCommand and
// sendChat client messages. Must be called before Run.
func (h *Hub) SetDispatcher(d contract.Dispatcher) {
	h.dispatcher = d
}

// Broadcast queues a dashboard event for every connected client. It never
// blocks the caller; when the hub queue is full the event is dropped.
func (h *Hub) Broadcast(e event.DashboardEvent) {
	payload, err := json.Marshal(event.Wrap(e))
	if err != nil {
		h.log.Error("event marshal failed", slog.String("type", e.EventType()), slog.Any("error", err))
		return
	}
	select {
	case h.outbound <- payload:
	default:
		h.log.Warn("broadcast queue full, event dropped", slog.String("type", e.EventType()))
	}
}

// Run is the hub loop. It owns the client set; register, unregister and
// fan-out all funnel through here so no locking is needed.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.doneOnce.Do(func() { close(h.done) })
			for c := range h.clients {
				c.close()
			}
			return ctx.Err()
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.log.Info("dashboard client connected", slog.Int("clients", len(h.clients)))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.close()
				h.log.Info("dashboard client disconnected", slog.Int("clients", len(h.clients)))
			}
		case payload := <-h.outbound:
			for c := range h.clients {
				select {
				case c.send <- payload:
				default:
					delete(h.clients, c)
					c.close()
					h.log.Warn("slow dashboard client dropped")
				}
			}
		}
	}
}

// ServeWS upgrades an HTTP request into a dashboard connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}
	c := newClient(h, conn)
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()

	c.sendEvent(connectedEvent{Message: "Connected to room dashboard"})
}

// connectedEvent is the synthetic greeting pushed right after the upgrade.
type connectedEvent struct {
	Message string `json:"message"`
}

func (connectedEvent) EventType() string { return "connected" }

// snapshot assembles the requestStats response from the store.
func (h *Hub) snapshot() statsSnapshot {
	return statsSnapshot{
		Stats:    h.store.RoomStats(),
		Chat:     h.store.ChatMessages(50),
		Activity: h.store.DiscordActivity(10),
		Players:  h.store.ActivePlayers(),
		Settings: h.store.RoomSettings(),
	}
}

package hub

import (
	"context"
	"ctchen222/solo-tic-tac-toe/internal/engine"
	"ctchen222/solo-tic-tac-toe/pkg/proto"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel"
)

const (
	sendBufferSize      = 16
	broadcastBufferSize = 64
)

var tracer = otel.Tracer("hub")

// GameService is the part of the engine websocket clients drive.
type GameService interface {
	Snapshot() engine.Snapshot
	SubmitHumanMove(ctx context.Context, index int) bool
	ResetRound(ctx context.Context)
}

// Hub keeps the connected presentation clients and fans engine updates out
// to them. Only the Run goroutine writes to or closes a client's send channel.
type Hub struct {
	games      GameService
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	done       chan struct{}
}

// outbound is a marshalled message. A non-zero version marks a state
// message, which a client only receives if it is newer than the last state
// that client was sent.
type outbound struct {
	version uint64
	data    []byte
}

// NewHub creates a new hub.
func NewHub(games GameService) *Hub {
	return &Hub{
		games:      games,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, broadcastBufferSize),
		done:       make(chan struct{}),
	}
}

// Run starts the hub. It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for id, c := range h.clients {
			close(c.send)
			delete(h.clients, id)
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("hub stopping", "clients.count", len(h.clients))
			return

		case c := <-h.register:
			h.clients[c.ID] = c
			h.sendInitialState(c)
			slog.Info("client connected", "client.id", c.ID, "clients.count", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c.ID]; ok {
				delete(h.clients, c.ID)
				close(c.send)
				slog.Info("client disconnected", "client.id", c.ID, "clients.count", len(h.clients))
			}

		case msg := <-h.broadcast:
			for id, c := range h.clients {
				if msg.version != 0 {
					if msg.version <= c.version {
						slog.Debug("skipping superseded state", "client.id", id, "state.version", msg.version, "client.version", c.version)
						continue
					}
					c.version = msg.version
				}
				select {
				case c.send <- msg.data:
				default:
					slog.Warn("client send buffer full, dropping client", "client.id", id)
					delete(h.clients, id)
					close(c.send)
				}
			}
		}
	}
}

// OnChange implements engine.Listener.
func (h *Hub) OnChange(snap engine.Snapshot) {
	h.publish(snap.Version, &proto.ServerToClientMessage{Type: proto.TypeState, State: &snap})
}

// OnHumanWin implements engine.WinObserver by telling every client to
// start its celebration.
func (h *Hub) OnHumanWin(ctx context.Context, snap engine.Snapshot) error {
	_, span := tracer.Start(ctx, "hub.OnHumanWin")
	defer span.End()

	h.publish(0, &proto.ServerToClientMessage{Type: proto.TypeCelebrate, State: &snap})
	return nil
}

func (h *Hub) publish(version uint64, msg *proto.ServerToClientMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("error marshalling message", "message.type", msg.Type, "error", err)
		return
	}

	select {
	case h.broadcast <- outbound{version: version, data: data}:
	case <-h.done:
	}
}

// sendInitialState queues the welcome and the current state for a new client.
func (h *Hub) sendInitialState(c *Client) {
	snap := h.games.Snapshot()
	c.version = snap.Version
	for _, msg := range []*proto.ServerToClientMessage{
		{Type: proto.TypeWelcome, ClientID: c.ID},
		{Type: proto.TypeState, State: &snap},
	} {
		data, err := json.Marshal(msg)
		if err != nil {
			slog.Error("error marshalling message", "message.type", msg.Type, "error", err)
			continue
		}
		c.send <- data
	}
}

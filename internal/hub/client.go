package hub

import (
	"context"
	"ctchen222/solo-tic-tac-toe/internal/validator"
	"ctchen222/solo-tic-tac-toe/pkg/proto"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const heartbeatInterval = 10 * time.Second

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Client is one connected presentation layer.
type Client struct {
	ID   string
	conn Connection
	send chan []byte

	// version of the last state sent. Only the hub's Run goroutine uses it.
	version uint64
}

// Serve registers conn with the hub and pumps messages until the connection
// fails or the hub stops.
func (h *Hub) Serve(ctx context.Context, conn Connection) {
	c := &Client{
		ID:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(c)
	h.readPump(ctx, c)
}

// readPump forwards clicks and restart requests to the engine.
func (h *Hub) readPump(ctx context.Context, c *Client) {
	ctx, span := tracer.Start(ctx, "hub.readPump", trace.WithAttributes(
		attribute.String("client.id", c.ID),
	))
	defer span.End()

	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			slog.DebugContext(ctx, "client connection closed", "client.id", c.ID, "error", err)
			return
		}
		h.handleMessage(ctx, c, raw)
	}
}

func (h *Hub) handleMessage(ctx context.Context, c *Client, raw []byte) {
	ctx, span := tracer.Start(ctx, "hub.handleMessage", trace.WithAttributes(
		attribute.String("client.id", c.ID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(raw, &message); err != nil {
		slog.WarnContext(ctx, "error unmarshalling message", "client.id", c.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		return
	}

	if err := validator.Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from client", "client.id", c.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	switch message.Type {
	case proto.TypeMove:
		h.games.SubmitHumanMove(ctx, *message.Index)
	case proto.TypeReset:
		h.games.ResetRound(ctx)
	}
}

// writePump drains the client's send channel and keeps the connection alive.
func (h *Hub) writePump(c *Client) {
	pingTicker := time.NewTicker(heartbeatInterval)
	defer func() {
		pingTicker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Warn("error writing message to client", "client.id", c.ID, "error", err)
				return
			}

		case <-pingTicker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Warn("failed to send ping to client, assuming disconnect", "client.id", c.ID, "error", err)
				return
			}
		}
	}
}

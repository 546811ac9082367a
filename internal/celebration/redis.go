package celebration

import (
	"context"
	"ctchen222/solo-tic-tac-toe/internal/engine"
	"ctchen222/solo-tic-tac-toe/internal/events"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("celebration")

// RedisPublisher forwards game events to a Redis channel, where an effects
// client can pick up the win and fire its celebration.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher creates a publisher on events.EventsChannel.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: events.EventsChannel}
}

// OnHumanWin publishes a "human_win" event.
func (p *RedisPublisher) OnHumanWin(ctx context.Context, snap engine.Snapshot) error {
	return p.publish(ctx, events.TypeHumanWin, snap.RoundID, events.HumanWinPayload{
		RoundID: snap.RoundID,
	})
}

// RecordRound publishes a "round_decided" event.
func (p *RedisPublisher) RecordRound(ctx context.Context, snap engine.Snapshot) error {
	return p.publish(ctx, events.TypeRoundDecided, snap.RoundID, events.RoundDecidedPayload{
		RoundID: snap.RoundID,
		Outcome: snap.Outcome,
		Board:   snap.Board.String(),
		Score:   snap.Score,
	})
}

func (p *RedisPublisher) publish(ctx context.Context, eventType, roundID string, payload any) error {
	ctx, span := tracer.Start(ctx, "celebration.publish", trace.WithAttributes(
		attribute.String("event.type", eventType),
		attribute.String("round.id", roundID),
	))
	defer span.End()

	event, err := events.New(eventType, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to encode event")
		return err
	}

	if err := p.rdb.Publish(ctx, p.channel, event).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish event")
		return fmt.Errorf("failed to publish %s event for round %s: %w", eventType, roundID, err)
	}

	slog.DebugContext(ctx, "published event", "event.type", eventType, "round.id", roundID)
	return nil
}

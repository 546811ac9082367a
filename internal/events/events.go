package events

import (
	"ctchen222/solo-tic-tac-toe/internal/game"
	"encoding/json"
	"fmt"
)

// Pub/Sub channel constants
const (
	EventsChannel = "channel:events"
)

// Event types
const (
	TypeHumanWin     = "human_win"
	TypeRoundDecided = "round_decided"
)

// Event represents a global message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// HumanWinPayload is the payload for the "human_win" event. It is the
// celebration trigger and carries nothing an effect would need to render.
type HumanWinPayload struct {
	RoundID string `json:"round_id"`
}

// RoundDecidedPayload is the payload for the "round_decided" event.
type RoundDecidedPayload struct {
	RoundID string       `json:"round_id"`
	Outcome game.Outcome `json:"outcome"`
	Board   string       `json:"board"`
	Score   game.Score   `json:"score"`
}

// New wraps payload in an Event and encodes it.
func New(eventType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	data, err := json.Marshal(Event{Type: eventType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	return data, nil
}

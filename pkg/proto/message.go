package proto

import "ctchen222/solo-tic-tac-toe/internal/engine"

// Client message types
const (
	TypeMove  = "move"
	TypeReset = "reset"
)

// Server message types
const (
	TypeWelcome   = "welcome"
	TypeState     = "state"
	TypeCelebrate = "celebrate"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type  string `json:"type" validate:"required,oneof=move reset"`
	Index *int   `json:"index,omitempty" validate:"required_if=Type move"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type     string           `json:"type"`
	ClientID string           `json:"client_id,omitempty"`
	State    *engine.Snapshot `json:"state,omitempty"`
}

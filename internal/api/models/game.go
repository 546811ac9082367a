package models

import "ctchen222/solo-tic-tac-toe/internal/engine"

// MoveRequest is a click on cell Index. Range checking is left to the
// engine, which ignores out-of-range cells.
type MoveRequest struct {
	Index *int `json:"index" binding:"required"`
}

// MoveResponse reports whether the move was applied and the state after it.
type MoveResponse struct {
	Applied bool            `json:"applied"`
	State   engine.Snapshot `json:"state"`
}

// HistoryQuery limits the number of rounds returned.
type HistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

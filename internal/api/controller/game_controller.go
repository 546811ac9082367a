package controller

import (
	"context"
	"ctchen222/solo-tic-tac-toe/internal/api/models"
	"ctchen222/solo-tic-tac-toe/internal/api/response"
	"ctchen222/solo-tic-tac-toe/internal/engine"
	"ctchen222/solo-tic-tac-toe/internal/history"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GameService is the part of the engine the HTTP API drives.
type GameService interface {
	Snapshot() engine.Snapshot
	SubmitHumanMove(ctx context.Context, index int) bool
	ResetRound(ctx context.Context)
}

// GameController handles game-related HTTP requests.
type GameController struct {
	games   GameService
	history history.Repository
}

// NewGameController creates a new GameController.
func NewGameController(games GameService, rounds history.Repository) *GameController {
	return &GameController{
		games:   games,
		history: rounds,
	}
}

// State returns the current snapshot.
func (gc *GameController) State(c *gin.Context) {
	response.SuccessResponse(c, gc.games.Snapshot())
}

// Move submits a human move. An illegal move is not an HTTP error: the
// response reports applied=false with the unchanged state.
func (gc *GameController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	applied := gc.games.SubmitHumanMove(c.Request.Context(), *req.Index)
	response.SuccessResponse(c, models.MoveResponse{
		Applied: applied,
		State:   gc.games.Snapshot(),
	})
}

// Reset starts a new round.
func (gc *GameController) Reset(c *gin.Context) {
	gc.games.ResetRound(c.Request.Context())
	response.SuccessResponse(c, gc.games.Snapshot())
}

// History lists recently decided rounds, newest first.
func (gc *GameController) History(c *gin.Context) {
	var query models.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	rounds, err := gc.history.List(c.Request.Context(), query.Limit)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list round history", "error", err)
		response.ErrorResponse(c, http.StatusInternalServerError, "failed to list round history")
		return
	}

	response.SuccessResponseList(c, rounds)
}

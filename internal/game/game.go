package game

import (
	"errors"
	"fmt"
)

// Cell is the content of one board square.
type Cell string

// Turn tells whose move the round is waiting for.
type Turn string

// Outcome is the result classification of a round.
type Outcome string

const (
	// Cell contents
	Empty    Cell = ""
	Human    Cell = "X"
	Opponent Cell = "O"

	// Turns
	HumanTurn    Turn = "human"
	OpponentTurn Turn = "opponent"

	// Outcomes
	Undecided   Outcome = "undecided"
	HumanWin    Outcome = "human_win"
	OpponentWin Outcome = "opponent_win"
	Draw        Outcome = "draw"

	// Board boundaries
	BoardSize = 9
	CellMin   = 0
	CellMax   = BoardSize - 1
)

var (
	// ErrInvalidMove is wrapped by every move rejection.
	ErrInvalidMove = errors.New("invalid move")

	ErrGameFinished = fmt.Errorf("%w: game already finished", ErrInvalidMove)
	ErrNotYourTurn  = fmt.Errorf("%w: not your turn", ErrInvalidMove)
	ErrInvalidCell  = fmt.Errorf("%w: cell index out of range", ErrInvalidMove)
	ErrCellOccupied = fmt.Errorf("%w: cell already occupied", ErrInvalidMove)
)

// Lines lists the winning triples in evaluation order: rows, columns, diagonals.
var Lines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is the 3x3 grid in row-major order.
type Board [BoardSize]Cell

// Score counts round wins per player for the lifetime of the process.
type Score struct {
	Human    int `json:"human"`
	Opponent int `json:"opponent"`
}

// State is everything the rules need to know about the game.
type State struct {
	Board   Board
	Turn    Turn
	Outcome Outcome
	Score   Score
}

// Decided reports whether the outcome ends the round.
func (o Outcome) Decided() bool {
	return o == HumanWin || o == OpponentWin || o == Draw
}

// NewState returns the first round of a fresh game.
func NewState() State {
	return State{
		Turn:    HumanTurn,
		Outcome: Undecided,
	}
}

// Reset starts a new round. The score carries over.
func Reset(s State) State {
	return State{
		Turn:    HumanTurn,
		Outcome: Undecided,
		Score:   s.Score,
	}
}

// ApplyHumanMove places the human mark at index and evaluates the result.
func ApplyHumanMove(s State, index int) (State, error) {
	return applyMove(s, index, Human, HumanTurn, OpponentTurn)
}

// ApplyOpponentMove places the opponent mark at index and evaluates the result.
func ApplyOpponentMove(s State, index int) (State, error) {
	return applyMove(s, index, Opponent, OpponentTurn, HumanTurn)
}

func applyMove(s State, index int, mark Cell, expected, next Turn) (State, error) {
	if s.Outcome.Decided() {
		return s, ErrGameFinished
	}
	if s.Turn != expected {
		return s, ErrNotYourTurn
	}
	if index < CellMin || index > CellMax {
		return s, ErrInvalidCell
	}
	if s.Board[index] != Empty {
		return s, ErrCellOccupied
	}

	s.Board[index] = mark
	s.Turn = next
	return Evaluate(s), nil
}

// Evaluate classifies the board and credits the winner. A decided state is
// returned unchanged so a win is never counted twice.
func Evaluate(s State) State {
	if s.Outcome.Decided() {
		return s
	}

	if winner, ok := Winner(s.Board); ok {
		if winner == Human {
			s.Outcome = HumanWin
			s.Score.Human++
		} else {
			s.Outcome = OpponentWin
			s.Score.Opponent++
		}
		return s
	}

	if IsBoardFull(s.Board) {
		s.Outcome = Draw
		return s
	}

	s.Outcome = Undecided
	return s
}

// Status is the one-line text the presentation layer shows above the board.
func (s State) Status() string {
	switch s.Outcome {
	case HumanWin:
		return "You Won!"
	case OpponentWin:
		return "AI Wins"
	case Draw:
		return "It's a Draw"
	}
	if s.Turn == HumanTurn {
		return "Your Turn"
	}
	return "AI Thinking..."
}

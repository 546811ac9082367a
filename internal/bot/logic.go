package bot

import (
	"ctchen222/solo-tic-tac-toe/internal/game"
	"math/rand/v2"
	"sync"
)

// MoveCalculator picks the opponent's next cell.
type MoveCalculator interface {
	CalculateNextMove(board game.Board) (index int, ok bool)
}

// MoveCalculatorFunc adapts a plain function to MoveCalculator.
type MoveCalculatorFunc func(board game.Board) (int, bool)

// CalculateNextMove calls f.
func (f MoveCalculatorFunc) CalculateNextMove(board game.Board) (int, bool) {
	return f(board)
}

// RandomMove chooses uniformly among the empty cells. It never looks at
// which player owns the occupied ones.
type RandomMove struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomMove creates a RandomMove. A nil source falls back to a randomly
// seeded PCG.
func NewRandomMove(src rand.Source) *RandomMove {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &RandomMove{rng: rand.New(src)}
}

// CalculateNextMove returns a random empty cell, or false when the board is full.
func (m *RandomMove) CalculateNextMove(board game.Board) (int, bool) {
	availableMoves := game.EmptyCells(board)
	if len(availableMoves) == 0 {
		return -1, false
	}

	m.mu.Lock()
	pick := m.rng.IntN(len(availableMoves))
	m.mu.Unlock()

	return availableMoves[pick], true
}

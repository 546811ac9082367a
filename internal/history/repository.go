package history

import (
	"context"
	"ctchen222/solo-tic-tac-toe/internal/engine"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// DefaultLimit is the number of rounds List returns when no limit is given.
const DefaultLimit = 20

// Round is one decided round.
type Round struct {
	ID            int64  `db:"id" json:"-"`
	RoundID       string `db:"round_id" json:"round_id"`
	Outcome       string `db:"outcome" json:"outcome"`
	Board         string `db:"board" json:"board"`
	HumanScore    int    `db:"human_score" json:"human_score"`
	OpponentScore int    `db:"opponent_score" json:"opponent_score"`
	DecidedAt     int64  `db:"decided_at" json:"decided_at"`
}

// Repository defines the interface for round history operations.
type Repository interface {
	Create(ctx context.Context, round *Round) error
	List(ctx context.Context, limit int) ([]Round, error)
}

type sqliteRepository struct {
	db *sqlx.DB
}

// NewRepository creates a new SQLite-based Repository.
func NewRepository(db *sqlx.DB) Repository {
	return &sqliteRepository{db: db}
}

// Create inserts a decided round.
func (r *sqliteRepository) Create(ctx context.Context, round *Round) error {
	query := `INSERT INTO rounds (round_id, outcome, board, human_score, opponent_score, decided_at)
		VALUES (:round_id, :outcome, :board, :human_score, :opponent_score, :decided_at)`
	res, err := r.db.NamedExecContext(ctx, query, round)
	if err != nil {
		return fmt.Errorf("failed to insert round %s: %w", round.RoundID, err)
	}
	if round.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read round id: %w", err)
	}
	return nil
}

// List returns the most recent rounds, newest first.
func (r *sqliteRepository) List(ctx context.Context, limit int) ([]Round, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rounds := []Round{}
	query := `SELECT id, round_id, outcome, board, human_score, opponent_score, decided_at
		FROM rounds ORDER BY id DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &rounds, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}

// Recorder stores every decided round the engine reports.
type Recorder struct {
	repo Repository
	now  func() time.Time
}

// NewRecorder creates a Recorder writing to repo.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo, now: time.Now}
}

// RecordRound implements engine.RoundRecorder.
func (r *Recorder) RecordRound(ctx context.Context, snap engine.Snapshot) error {
	return r.repo.Create(ctx, &Round{
		RoundID:       snap.RoundID,
		Outcome:       string(snap.Outcome),
		Board:         snap.Board.String(),
		HumanScore:    snap.Score.Human,
		OpponentScore: snap.Score.Opponent,
		DecidedAt:     r.now().UnixMilli(),
	})
}

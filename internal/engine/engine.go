package engine

import (
	"context"
	"ctchen222/solo-tic-tac-toe/internal/bot"
	"ctchen222/solo-tic-tac-toe/internal/game"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

// DefaultOpponentDelay is the pause before the opponent answers a human move.
const DefaultOpponentDelay = 500 * time.Millisecond

var (
	tracer = otel.Tracer("engine")
	meter  = otel.Meter("engine")
)

//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks

// WinObserver is notified once for every round the human wins.
type WinObserver interface {
	OnHumanWin(ctx context.Context, snap Snapshot) error
}

// RoundRecorder is notified once for every decided round.
type RoundRecorder interface {
	RecordRound(ctx context.Context, snap Snapshot) error
}

// Listener receives a snapshot after every state change.
type Listener interface {
	OnChange(snap Snapshot)
}

// Snapshot is a read-only copy of the engine state.
type Snapshot struct {
	RoundID    string       `json:"round_id"`
	Generation uint64       `json:"generation"`
	Version    uint64       `json:"version"`
	Board      game.Board   `json:"board"`
	Turn       game.Turn    `json:"turn"`
	Outcome    game.Outcome `json:"outcome"`
	Score      game.Score   `json:"score"`
	Status     string       `json:"status"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithOpponentDelay sets the pause before the opponent moves. Zero or less
// makes the opponent answer before SubmitHumanMove returns.
func WithOpponentDelay(d time.Duration) Option {
	return func(e *Engine) { e.delay = d }
}

// WithScheduler replaces the time.AfterFunc based scheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// Engine owns the board, turn, outcome and score of a single-player game.
type Engine struct {
	mu         sync.Mutex
	state      game.State
	roundID    string
	generation uint64
	version    uint64
	pending    Timer
	ticket     uint64

	// outbox holds notifications in commit order. Exactly one caller at a
	// time, the one that finds draining false, delivers them.
	outbox   []notification
	draining bool

	calculator bot.MoveCalculator
	scheduler  Scheduler
	delay      time.Duration

	observersMu sync.RWMutex
	winners     []WinObserver
	recorders   []RoundRecorder
	listeners   []Listener

	moves  metric.Int64Counter
	rounds metric.Int64Counter
}

// notification is queued under the lock and delivered after it is released.
type notification struct {
	ctx      context.Context
	snapshot Snapshot
	decided  bool
	humanWin bool
}

// New creates an engine with an empty first round.
func New(calculator bot.MoveCalculator, opts ...Option) *Engine {
	e := &Engine{
		state:      game.NewState(),
		roundID:    uuid.New().String(),
		generation: 1,
		calculator: calculator,
		scheduler:  RealScheduler(),
		delay:      DefaultOpponentDelay,
	}
	for _, opt := range opts {
		opt(e)
	}

	var err error
	if e.moves, err = meter.Int64Counter("tictactoe.moves", metric.WithDescription("Moves applied to the board")); err != nil {
		slog.Warn("failed to create moves counter", "error", err)
		e.moves = noop.Int64Counter{}
	}
	if e.rounds, err = meter.Int64Counter("tictactoe.rounds", metric.WithDescription("Decided rounds by outcome")); err != nil {
		slog.Warn("failed to create rounds counter", "error", err)
		e.rounds = noop.Int64Counter{}
	}
	return e
}

// Subscribe registers a listener for state changes.
func (e *Engine) Subscribe(l Listener) {
	e.observersMu.Lock()
	defer e.observersMu.Unlock()
	e.listeners = append(e.listeners, l)
}

// AddWinObserver registers a celebration collaborator.
func (e *Engine) AddWinObserver(o WinObserver) {
	e.observersMu.Lock()
	defer e.observersMu.Unlock()
	e.winners = append(e.winners, o)
}

// AddRoundRecorder registers a collaborator for decided rounds.
func (e *Engine) AddRoundRecorder(r RoundRecorder) {
	e.observersMu.Lock()
	defer e.observersMu.Unlock()
	e.recorders = append(e.recorders, r)
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// SubmitHumanMove places the human mark at index. Moves that are out of
// range, on an occupied cell, out of turn or after the round is decided are
// ignored and reported as false.
func (e *Engine) SubmitHumanMove(ctx context.Context, index int) bool {
	ctx, span := tracer.Start(ctx, "engine.SubmitHumanMove", trace.WithAttributes(
		attribute.Int("move.index", index),
	))
	defer span.End()

	e.mu.Lock()
	next, err := game.ApplyHumanMove(e.state, index)
	if err != nil {
		e.mu.Unlock()
		slog.DebugContext(ctx, "ignoring human move", "move.index", index, "error", err)
		span.SetAttributes(attribute.Bool("move.valid", false))
		return false
	}
	span.SetAttributes(attribute.Bool("move.valid", true))

	notes := []notification{e.commitLocked(ctx, next, game.Human)}
	if next.Outcome == game.Undecided && next.Turn == game.OpponentTurn {
		if e.delay <= 0 {
			notes = append(notes, e.opponentMoveLocked(ctx)...)
		} else {
			e.scheduleOpponentLocked(ctx)
		}
	}
	e.publishLocked(notes)
	return true
}

// OpponentMove applies a random opponent move right away. It is a no-op
// unless the round is undecided and waiting for the opponent.
func (e *Engine) OpponentMove(ctx context.Context) bool {
	ctx, span := tracer.Start(ctx, "engine.OpponentMove")
	defer span.End()

	e.mu.Lock()
	e.cancelPendingLocked()
	notes := e.opponentMoveLocked(ctx)
	e.publishLocked(notes)
	return len(notes) > 0
}

// ResetRound starts a new round, keeping the score. A pending opponent move
// from the old round is cancelled.
func (e *Engine) ResetRound(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "engine.ResetRound")
	defer span.End()

	e.mu.Lock()
	e.cancelPendingLocked()
	e.generation++
	e.roundID = uuid.New().String()
	e.state = game.Reset(e.state)
	e.version++
	snap := e.snapshotLocked()

	span.SetAttributes(attribute.String("round.id", snap.RoundID))
	slog.InfoContext(ctx, "round reset", "round.id", snap.RoundID, "round.generation", snap.Generation)
	e.publishLocked([]notification{{ctx: ctx, snapshot: snap}})
}

// Close cancels a pending opponent move.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPendingLocked()
}

func (e *Engine) scheduleOpponentLocked(ctx context.Context) {
	e.cancelPendingLocked()
	generation, ticket := e.generation, e.ticket
	e.pending = e.scheduler.AfterFunc(e.delay, func() {
		e.runScheduledMove(generation, ticket)
	})
	slog.DebugContext(ctx, "opponent move scheduled", "round.generation", generation, "delay", e.delay)
}

// runScheduledMove is the timer callback. A move scheduled for an earlier
// round, or one cancelled after its timer already fired, is discarded.
func (e *Engine) runScheduledMove(generation, ticket uint64) {
	ctx, span := tracer.Start(context.Background(), "engine.scheduledOpponentMove", trace.WithAttributes(
		attribute.Int64("round.generation", int64(generation)),
	))
	defer span.End()

	e.mu.Lock()
	if generation != e.generation || ticket != e.ticket {
		current := e.generation
		e.mu.Unlock()
		slog.DebugContext(ctx, "discarding stale opponent move", "round.generation", generation, "current.generation", current)
		span.SetAttributes(attribute.Bool("move.stale", true))
		return
	}
	e.pending = nil
	e.publishLocked(e.opponentMoveLocked(ctx))
}

func (e *Engine) opponentMoveLocked(ctx context.Context) []notification {
	if e.state.Turn != game.OpponentTurn || e.state.Outcome != game.Undecided {
		return nil
	}

	index, ok := e.calculator.CalculateNextMove(e.state.Board)
	if !ok {
		return nil
	}

	next, err := game.ApplyOpponentMove(e.state, index)
	if err != nil {
		slog.WarnContext(ctx, "opponent produced an invalid move", "move.index", index, "error", err)
		return nil
	}
	return []notification{e.commitLocked(ctx, next, game.Opponent)}
}

func (e *Engine) commitLocked(ctx context.Context, next game.State, mover game.Cell) notification {
	prev := e.state
	e.state = next
	e.version++

	e.moves.Add(ctx, 1, metric.WithAttributes(attribute.String("player", string(mover))))

	n := notification{ctx: ctx, snapshot: e.snapshotLocked()}
	if !prev.Outcome.Decided() && next.Outcome.Decided() {
		n.decided = true
		n.humanWin = next.Outcome == game.HumanWin
		e.rounds.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(next.Outcome))))
		slog.InfoContext(ctx, "round decided",
			"round.id", e.roundID,
			"outcome", next.Outcome,
			"score.human", next.Score.Human,
			"score.opponent", next.Score.Opponent,
		)
	}
	return n
}

func (e *Engine) cancelPendingLocked() {
	e.ticket++
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		RoundID:    e.roundID,
		Generation: e.generation,
		Version:    e.version,
		Board:      e.state.Board,
		Turn:       e.state.Turn,
		Outcome:    e.state.Outcome,
		Score:      e.state.Score,
		Status:     e.state.Status(),
	}
}

// publishLocked queues notes and releases e.mu. If no other caller is
// delivering, this caller drains the outbox itself, so collaborators see
// snapshots in commit order and an uncontended caller has delivered its own
// notes by the time it returns.
func (e *Engine) publishLocked(notes []notification) {
	e.outbox = append(e.outbox, notes...)
	if e.draining || len(e.outbox) == 0 {
		e.mu.Unlock()
		return
	}
	e.draining = true
	e.mu.Unlock()

	e.drain()
}

func (e *Engine) drain() {
	finished := false
	defer func() {
		if !finished {
			// A collaborator panicked. Hand the outbox to the next caller.
			e.mu.Lock()
			e.draining = false
			e.mu.Unlock()
		}
	}()

	for {
		e.mu.Lock()
		if len(e.outbox) == 0 {
			e.draining = false
			e.mu.Unlock()
			finished = true
			return
		}
		n := e.outbox[0]
		e.outbox = e.outbox[1:]
		e.mu.Unlock()

		e.deliver(n)
	}
}

// deliver runs collaborators outside the state lock so they may read the
// engine. Their failures never undo a transition.
func (e *Engine) deliver(n notification) {
	e.observersMu.RLock()
	listeners := append([]Listener(nil), e.listeners...)
	winners := append([]WinObserver(nil), e.winners...)
	recorders := append([]RoundRecorder(nil), e.recorders...)
	e.observersMu.RUnlock()

	ctx := n.ctx
	span := trace.SpanFromContext(ctx)
	for _, l := range listeners {
		l.OnChange(n.snapshot)
	}
	if n.decided {
		for _, r := range recorders {
			if err := r.RecordRound(ctx, n.snapshot); err != nil {
				slog.ErrorContext(ctx, "failed to record round", "round.id", n.snapshot.RoundID, "error", err)
				span.RecordError(err)
			}
		}
	}
	if n.humanWin {
		for _, o := range winners {
			if err := o.OnHumanWin(ctx, n.snapshot); err != nil {
				slog.ErrorContext(ctx, "failed to notify human win", "round.id", n.snapshot.RoundID, "error", err)
				span.RecordError(err)
			}
		}
	}
}

package engine_test

import (
	"context"
	"ctchen222/solo-tic-tac-toe/internal/bot"
	"ctchen222/solo-tic-tac-toe/internal/engine"
	"ctchen222/solo-tic-tac-toe/internal/engine/mocks"
	"ctchen222/solo-tic-tac-toe/internal/game"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// scripted returns the given opponent moves in order.
func scripted(moves ...int) bot.MoveCalculator {
	var mu sync.Mutex
	return bot.MoveCalculatorFunc(func(game.Board) (int, bool) {
		mu.Lock()
		defer mu.Unlock()
		if len(moves) == 0 {
			return -1, false
		}
		next := moves[0]
		moves = moves[1:]
		return next, true
	})
}

type manualTimer struct {
	f       func()
	stopped bool
}

// manualScheduler holds scheduled calls until the test fires them.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) engine.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{f: f}
	s.timers = append(s.timers, t)
	return &manualHandle{s: s, t: t}
}

type manualHandle struct {
	s *manualScheduler
	t *manualTimer
}

func (h *manualHandle) Stop() bool {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	wasActive := !h.t.stopped
	h.t.stopped = true
	return wasActive
}

func (s *manualScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// fire runs every scheduled call. With includeStopped it also runs stopped
// ones, which is what happens when a timer fires just before Stop.
func (s *manualScheduler) fire(includeStopped bool) {
	s.mu.Lock()
	timers := s.timers
	s.timers = nil
	s.mu.Unlock()

	for _, t := range timers {
		if includeStopped || !t.stopped {
			t.f()
		}
	}
}

type recordingListener struct {
	mu    sync.Mutex
	snaps []engine.Snapshot
}

func (l *recordingListener) OnChange(snap engine.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snaps = append(l.snaps, snap)
}

func (l *recordingListener) all() []engine.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]engine.Snapshot(nil), l.snaps...)
}

func TestNew(t *testing.T) {
	e := engine.New(scripted())
	snap := e.Snapshot()

	assert.Equal(t, game.Board{}, snap.Board)
	assert.Equal(t, game.HumanTurn, snap.Turn)
	assert.Equal(t, game.Undecided, snap.Outcome)
	assert.Equal(t, game.Score{}, snap.Score)
	assert.Equal(t, "Your Turn", snap.Status)
	assert.NotEmpty(t, snap.RoundID)
}

func TestEngine_HumanWinsTopRow(t *testing.T) {
	ctrl := gomock.NewController(t)
	observer := mocks.NewMockWinObserver(ctrl)
	recorder := mocks.NewMockRoundRecorder(ctrl)

	ctx := context.Background()
	e := engine.New(scripted(3, 4), engine.WithOpponentDelay(0))
	e.AddWinObserver(observer)
	e.AddRoundRecorder(recorder)

	observer.EXPECT().OnHumanWin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, snap engine.Snapshot) error {
			assert.Equal(t, game.HumanWin, snap.Outcome)
			return nil
		}).Times(1)
	recorder.EXPECT().RecordRound(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, snap engine.Snapshot) error {
			assert.Equal(t, game.HumanWin, snap.Outcome)
			assert.Equal(t, 1, snap.Score.Human)
			return nil
		}).Times(1)

	require.True(t, e.SubmitHumanMove(ctx, 0))
	require.True(t, e.SubmitHumanMove(ctx, 1))
	before := e.Snapshot().Score

	require.True(t, e.SubmitHumanMove(ctx, 2))

	snap := e.Snapshot()
	assert.Equal(t, game.HumanWin, snap.Outcome)
	assert.Equal(t, before.Human+1, snap.Score.Human)
	assert.Equal(t, before.Opponent, snap.Score.Opponent)
	assert.Equal(t, game.Board{
		game.Human, game.Human, game.Human,
		game.Opponent, game.Opponent, game.Empty,
		game.Empty, game.Empty, game.Empty,
	}, snap.Board)

	// Decided rounds accept nothing until reset.
	assert.False(t, e.SubmitHumanMove(ctx, 5))
	assert.False(t, e.OpponentMove(ctx))
	assert.Equal(t, snap, e.Snapshot())
}

func TestEngine_OpponentWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	observer := mocks.NewMockWinObserver(ctrl)
	recorder := mocks.NewMockRoundRecorder(ctrl)
	recorder.EXPECT().RecordRound(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	ctx := context.Background()
	e := engine.New(scripted(3, 4, 5), engine.WithOpponentDelay(0))
	e.AddWinObserver(observer)
	e.AddRoundRecorder(recorder)

	for _, idx := range []int{0, 1, 8} {
		require.True(t, e.SubmitHumanMove(ctx, idx))
	}

	snap := e.Snapshot()
	assert.Equal(t, game.OpponentWin, snap.Outcome)
	assert.Equal(t, game.Score{Opponent: 1}, snap.Score)
	assert.Equal(t, "AI Wins", snap.Status)
}

func TestEngine_Draw(t *testing.T) {
	ctrl := gomock.NewController(t)
	observer := mocks.NewMockWinObserver(ctrl)
	recorder := mocks.NewMockRoundRecorder(ctrl)
	recorder.EXPECT().RecordRound(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, snap engine.Snapshot) error {
			assert.Equal(t, game.Draw, snap.Outcome)
			return nil
		}).Times(1)

	ctx := context.Background()
	e := engine.New(scripted(1, 4, 5, 6), engine.WithOpponentDelay(0))
	e.AddWinObserver(observer)
	e.AddRoundRecorder(recorder)

	for _, idx := range []int{0, 2, 3, 7, 8} {
		require.True(t, e.SubmitHumanMove(ctx, idx))
	}

	snap := e.Snapshot()
	assert.Equal(t, game.Draw, snap.Outcome)
	assert.True(t, game.IsBoardFull(snap.Board))
	assert.Equal(t, game.Score{}, snap.Score)
	assert.Equal(t, "It's a Draw", snap.Status)
}

func TestEngine_IgnoredMovesLeaveStateUnchanged(t *testing.T) {
	ctx := context.Background()
	sched := &manualScheduler{}
	e := engine.New(scripted(8), engine.WithScheduler(sched))

	require.True(t, e.SubmitHumanMove(ctx, 4))
	afterFirst := e.Snapshot()
	assert.Equal(t, game.OpponentTurn, afterFirst.Turn)

	// Same cell again, and any other cell while the opponent is thinking.
	assert.False(t, e.SubmitHumanMove(ctx, 4))
	assert.False(t, e.SubmitHumanMove(ctx, 0))
	assert.Equal(t, afterFirst, e.Snapshot())
	assert.Equal(t, game.Human, e.Snapshot().Board[4])

	sched.fire(false)
	afterOpponent := e.Snapshot()
	require.Equal(t, game.HumanTurn, afterOpponent.Turn)

	for _, idx := range []int{4, 8, -1, 9, 100} {
		assert.False(t, e.SubmitHumanMove(ctx, idx), "index %d", idx)
		assert.Equal(t, afterOpponent, e.Snapshot(), "index %d", idx)
	}
}

func TestEngine_ScheduledOpponentMove(t *testing.T) {
	ctx := context.Background()
	sched := &manualScheduler{}
	listener := &recordingListener{}
	e := engine.New(scripted(4), engine.WithScheduler(sched))
	e.Subscribe(listener)

	require.True(t, e.SubmitHumanMove(ctx, 0))
	assert.Equal(t, 1, sched.pending())
	assert.Equal(t, "AI Thinking...", e.Snapshot().Status)
	assert.Equal(t, game.Empty, e.Snapshot().Board[4])

	sched.fire(false)

	snap := e.Snapshot()
	assert.Equal(t, game.Opponent, snap.Board[4])
	assert.Equal(t, game.HumanTurn, snap.Turn)

	snaps := listener.all()
	require.Len(t, snaps, 2)
	assert.Less(t, snaps[0].Version, snaps[1].Version)
	assert.Equal(t, game.OpponentTurn, snaps[0].Turn)
	assert.Equal(t, game.HumanTurn, snaps[1].Turn)
}

func TestEngine_ResetDiscardsPendingOpponentMove(t *testing.T) {
	tests := []struct {
		name           string
		includeStopped bool
	}{
		{name: "timer cancelled", includeStopped: false},
		{name: "timer already fired", includeStopped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			sched := &manualScheduler{}
			e := engine.New(scripted(4), engine.WithScheduler(sched))

			require.True(t, e.SubmitHumanMove(ctx, 0))
			require.Equal(t, 1, sched.pending())
			oldRound := e.Snapshot()

			e.ResetRound(ctx)
			assert.Equal(t, 0, sched.pending())
			afterReset := e.Snapshot()
			assert.NotEqual(t, oldRound.RoundID, afterReset.RoundID)
			assert.Greater(t, afterReset.Generation, oldRound.Generation)

			sched.fire(tt.includeStopped)

			assert.Equal(t, afterReset, e.Snapshot())
			assert.Equal(t, game.Board{}, e.Snapshot().Board)
			assert.Equal(t, game.HumanTurn, e.Snapshot().Turn)
		})
	}
}

// gatedListener blocks inside OnChange for the first snapshot gate accepts
// until release is closed, and records snapshots as OnChange returns.
type gatedListener struct {
	recordingListener
	gate    func(engine.Snapshot) bool
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (l *gatedListener) OnChange(snap engine.Snapshot) {
	if l.gate(snap) {
		l.once.Do(func() {
			close(l.entered)
			<-l.release
		})
	}
	l.recordingListener.OnChange(snap)
}

func TestEngine_ResetDuringSlowDeliveryKeepsOrder(t *testing.T) {
	ctx := context.Background()
	sched := &manualScheduler{}
	e := engine.New(scripted(4), engine.WithScheduler(sched))

	listener := &gatedListener{
		gate:    func(s engine.Snapshot) bool { return s.Board[4] == game.Opponent },
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	e.Subscribe(listener)

	require.True(t, e.SubmitHumanMove(ctx, 0))

	fired := make(chan struct{})
	go func() {
		sched.fire(false)
		close(fired)
	}()
	<-listener.entered

	reset := make(chan struct{})
	go func() {
		e.ResetRound(ctx)
		close(reset)
	}()
	select {
	case <-reset:
	case <-time.After(2 * time.Second):
		t.Fatal("ResetRound blocked on a slow listener")
	}
	assert.Equal(t, game.Board{}, e.Snapshot().Board)

	close(listener.release)
	<-fired

	snaps := listener.all()
	versions := make([]uint64, 0, len(snaps))
	for _, s := range snaps {
		versions = append(versions, s.Version)
	}
	assert.Equal(t, []uint64{1, 2, 3}, versions)
	assert.Equal(t, e.Snapshot(), snaps[len(snaps)-1])
}

func TestEngine_ManualOpponentMoveSupersedesTimer(t *testing.T) {
	ctx := context.Background()
	sched := &manualScheduler{}
	e := engine.New(scripted(4, 5), engine.WithScheduler(sched))

	require.True(t, e.SubmitHumanMove(ctx, 0))
	require.True(t, e.OpponentMove(ctx))
	afterManual := e.Snapshot()
	assert.Equal(t, game.Opponent, afterManual.Board[4])

	// The superseded timer callback must not place a second opponent mark.
	sched.fire(true)
	assert.Equal(t, afterManual, e.Snapshot())
}

func TestEngine_OpponentMoveNoOp(t *testing.T) {
	ctx := context.Background()
	e := engine.New(scripted(4), engine.WithScheduler(&manualScheduler{}))
	assert.False(t, e.OpponentMove(ctx), "human turn")

	empty := engine.New(scripted(), engine.WithScheduler(&manualScheduler{}))
	require.True(t, empty.SubmitHumanMove(ctx, 0))
	assert.False(t, empty.OpponentMove(ctx), "calculator has no move")
	assert.Equal(t, game.OpponentTurn, empty.Snapshot().Turn)

	bad := engine.New(scripted(0), engine.WithScheduler(&manualScheduler{}))
	require.True(t, bad.SubmitHumanMove(ctx, 0))
	assert.False(t, bad.OpponentMove(ctx), "occupied cell from calculator")
	assert.Equal(t, game.Human, bad.Snapshot().Board[0])
}

func TestEngine_ResetKeepsScore(t *testing.T) {
	ctx := context.Background()
	e := engine.New(scripted(3, 4, 3, 4), engine.WithOpponentDelay(0))

	for _, idx := range []int{0, 1, 2} {
		e.SubmitHumanMove(ctx, idx)
	}
	require.Equal(t, game.HumanWin, e.Snapshot().Outcome)

	e.ResetRound(ctx)
	snap := e.Snapshot()
	assert.Equal(t, game.Board{}, snap.Board)
	assert.Equal(t, game.HumanTurn, snap.Turn)
	assert.Equal(t, game.Undecided, snap.Outcome)
	assert.Equal(t, game.Score{Human: 1}, snap.Score)

	for _, idx := range []int{0, 1, 2} {
		e.SubmitHumanMove(ctx, idx)
	}
	assert.Equal(t, game.Score{Human: 2}, e.Snapshot().Score)
}

func TestEngine_ResetMidRound(t *testing.T) {
	ctx := context.Background()
	e := engine.New(scripted(4), engine.WithOpponentDelay(0))
	require.True(t, e.SubmitHumanMove(ctx, 0))

	before := e.Snapshot().Score
	e.ResetRound(ctx)
	assert.Equal(t, before, e.Snapshot().Score)
	assert.Equal(t, game.Board{}, e.Snapshot().Board)
}

func TestEngine_ObserverErrorDoesNotUndoWin(t *testing.T) {
	ctrl := gomock.NewController(t)
	observer := mocks.NewMockWinObserver(ctrl)
	observer.EXPECT().OnHumanWin(gomock.Any(), gomock.Any()).Return(errors.New("redis down")).Times(1)

	ctx := context.Background()
	e := engine.New(scripted(3, 4), engine.WithOpponentDelay(0))
	e.AddWinObserver(observer)

	for _, idx := range []int{0, 1, 2} {
		e.SubmitHumanMove(ctx, idx)
	}
	assert.Equal(t, game.HumanWin, e.Snapshot().Outcome)
	assert.Equal(t, 1, e.Snapshot().Score.Human)
}

func TestEngine_ListenerSeesEveryChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	listener := mocks.NewMockListener(ctrl)

	ctx := context.Background()
	e := engine.New(scripted(4), engine.WithOpponentDelay(0))
	e.Subscribe(listener)

	gomock.InOrder(
		listener.EXPECT().OnChange(gomock.Any()).Do(func(snap engine.Snapshot) {
			assert.Equal(t, game.Human, snap.Board[0])
			assert.Equal(t, game.OpponentTurn, snap.Turn)
		}),
		listener.EXPECT().OnChange(gomock.Any()).Do(func(snap engine.Snapshot) {
			assert.Equal(t, game.Opponent, snap.Board[4])
			assert.Equal(t, game.HumanTurn, snap.Turn)
		}),
		listener.EXPECT().OnChange(gomock.Any()).Do(func(snap engine.Snapshot) {
			assert.Equal(t, game.Board{}, snap.Board)
		}),
	)

	require.True(t, e.SubmitHumanMove(ctx, 0))
	e.ResetRound(ctx)
}

func TestEngine_RealSchedulerDelay(t *testing.T) {
	ctx := context.Background()
	e := engine.New(bot.NewRandomMove(nil), engine.WithOpponentDelay(50*time.Millisecond))
	t.Cleanup(e.Close)

	require.True(t, e.SubmitHumanMove(ctx, 4))
	assert.Equal(t, game.OpponentTurn, e.Snapshot().Turn)

	require.Eventually(t, func() bool {
		return e.Snapshot().Turn == game.HumanTurn
	}, time.Second, 5*time.Millisecond)

	snap := e.Snapshot()
	assert.Len(t, game.EmptyCells(snap.Board), 7)
	assert.Equal(t, game.Human, snap.Board[4])
}

func TestEngine_RandomPlayAlwaysTerminates(t *testing.T) {
	ctx := context.Background()
	e := engine.New(bot.NewRandomMove(nil), engine.WithOpponentDelay(0))

	for round := range 50 {
		for !e.Snapshot().Outcome.Decided() {
			empty := game.EmptyCells(e.Snapshot().Board)
			require.NotEmpty(t, empty, "round %d", round)
			require.True(t, e.SubmitHumanMove(ctx, empty[0]))
		}
		snap := e.Snapshot()
		if _, won := game.Winner(snap.Board); !won {
			assert.Equal(t, game.Draw, snap.Outcome)
		}
		e.ResetRound(ctx)
	}

	score := e.Snapshot().Score
	assert.LessOrEqual(t, score.Human+score.Opponent, 50)
}

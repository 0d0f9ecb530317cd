package tetris

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	best    int
	loadErr error
	saveErr error
	delay   time.Duration
	saved   []Record
}

func (s *fakeStore) LoadHighScore(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.best, s.loadErr
}

func (s *fakeStore) SaveHighScore(ctx context.Context, rec Record) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, rec)
	if s.saveErr != nil {
		return s.saveErr
	}
	s.best = rec.Score
	return nil
}

// Saved returns the saved scores in order.
func (s *fakeStore) Saved() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	scores := make([]int, len(s.saved))
	for i, rec := range s.saved {
		scores[i] = rec.Score
	}
	return scores
}

func (s *fakeStore) LastRecord() (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saved) == 0 {
		return Record{}, false
	}
	return s.saved[len(s.saved)-1], true
}

// slowRules keeps gravity out of the way of command tests.
func slowRules() Rules {
	r := DefaultRules()
	r.BaseInterval = time.Hour
	r.MinInterval = time.Hour
	return r
}

func fastRules() Rules {
	r := DefaultRules()
	r.BaseInterval = 2 * time.Millisecond
	r.MinInterval = 2 * time.Millisecond
	return r
}

func startController(t *testing.T, rules Rules, store HighScoreStore, opts ...Option) *Controller {
	t.Helper()
	c, err := NewController(context.Background(), rules, store, opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-c.Done()
	})
	return c
}

func TestControllerCommands(t *testing.T) {
	c := startController(t, slowRules(), nil, WithPieceSource(SequenceSource(T, O)))

	snap, err := c.Move(Left)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Active.X)

	snap, err = c.Move(Down)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Active.Y)
	assert.Equal(t, 1, snap.Score)

	snap, err = c.Rotate()
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Active.Rotation)

	snap, err = c.HardDrop()
	require.NoError(t, err)
	assert.Equal(t, O, snap.Active.Kind)
	assert.Greater(t, snap.Score, 1)

	snap, err = c.TogglePause()
	require.NoError(t, err)
	assert.True(t, snap.Paused)

	snap, err = c.Reset()
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, 0, snap.Lines)
	assert.False(t, snap.GameOver)
	assert.False(t, snap.Paused)

	assert.Equal(t, snap, c.Snapshot())
}

func TestControllerGravity(t *testing.T) {
	c := startController(t, fastRules(), nil, WithPieceSource(SequenceSource(O)))

	require.Eventually(t, func() bool {
		return c.Ticks() >= 5
	}, 2*time.Second, time.Millisecond)
	assert.Equal(t, 0, c.Snapshot().Score, "gravity does not score")
}

func TestControllerPauseStopsGravity(t *testing.T) {
	c := startController(t, fastRules(), nil)

	require.Eventually(t, func() bool {
		return c.Ticks() >= 2
	}, 2*time.Second, time.Millisecond)

	snap, err := c.TogglePause()
	require.NoError(t, err)
	require.True(t, snap.Paused)
	ticks := c.Ticks()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, ticks, c.Ticks())
	assert.Equal(t, snap, c.Snapshot())

	_, err = c.TogglePause()
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return c.Ticks() > ticks
	}, 2*time.Second, time.Millisecond)
}

func TestControllerStopsTickingAfterGameOver(t *testing.T) {
	c := startController(t, fastRules(), nil, WithPieceSource(SequenceSource(O)))

	require.Eventually(t, func() bool {
		return c.Snapshot().GameOver
	}, 5*time.Second, time.Millisecond)

	ticks := c.Ticks()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, ticks, c.Ticks())

	snap, err := c.TogglePause()
	require.NoError(t, err)
	assert.False(t, snap.Paused)
	assert.True(t, snap.GameOver)

	snap, err = c.Reset()
	require.NoError(t, err)
	assert.False(t, snap.GameOver)
	require.Eventually(t, func() bool {
		return c.Ticks() > ticks
	}, 2*time.Second, time.Millisecond)
}

func TestControllerUpdates(t *testing.T) {
	c := startController(t, slowRules(), nil)

	_, err := c.Move(Right)
	require.NoError(t, err)

	select {
	case snap := <-c.Updates():
		assert.Equal(t, 5, snap.Active.X)
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}
}

func TestControllerLoadsAndSavesHighScore(t *testing.T) {
	store := &fakeStore{best: 10}
	c := startController(t, slowRules(), store, WithPieceSource(SequenceSource(I)))
	assert.Equal(t, 10, c.Snapshot().HighScore)

	snap, err := c.HardDrop()
	require.NoError(t, err)
	require.Equal(t, 38, snap.Score)
	assert.Equal(t, 38, snap.HighScore)

	require.Eventually(t, func() bool {
		saved := store.Saved()
		return len(saved) > 0 && saved[len(saved)-1] == 38
	}, 2*time.Second, time.Millisecond)
}

func TestControllerSurvivesBrokenStore(t *testing.T) {
	store := &fakeStore{
		loadErr: errors.New("storage unavailable"),
		saveErr: errors.New("storage unavailable"),
	}
	c := startController(t, slowRules(), store, WithPieceSource(SequenceSource(I)))
	assert.Equal(t, 0, c.Snapshot().HighScore)

	_, err := c.HardDrop()
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return len(store.Saved()) > 0
	}, 2*time.Second, time.Millisecond)

	snap, err := c.HardDrop()
	require.NoError(t, err)
	assert.Equal(t, 38+36, snap.HighScore, "the high score lives on in memory")
}

func TestControllerDoesNotWaitForSlowStore(t *testing.T) {
	store := &fakeStore{delay: 300 * time.Millisecond}
	c := startController(t, slowRules(), store, WithPieceSource(SequenceSource(I)))

	start := time.Now()
	_, err := c.HardDrop()
	require.NoError(t, err)
	_, err = c.HardDrop()
	require.NoError(t, err)
	_, err = c.Move(Left)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 200*time.Millisecond)
}

func TestControllerStopped(t *testing.T) {
	c, err := NewController(context.Background(), slowRules(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	_, err = c.Move(Left)
	require.NoError(t, err)

	cancel()
	require.NoError(t, <-done)

	_, err = c.Move(Left)
	assert.ErrorIs(t, err, ErrStopped)
	assert.Error(t, c.Run(context.Background()), "Run may only be called once")
}

func TestNewControllerRejectsBadRules(t *testing.T) {
	rules := DefaultRules()
	rules.Height = 0
	_, err := NewController(context.Background(), rules, nil)
	assert.Error(t, err)
}

func TestHighScoreWriterKeepsBestPending(t *testing.T) {
	store := &fakeStore{}
	w := newHighScoreWriter(store)

	w.submit(Record{Score: 10, Level: 1})
	w.submit(Record{Score: 30, Lines: 2, Level: 1})
	w.submit(Record{Score: 20, Lines: 3, Level: 1})

	go w.run()
	w.close()

	assert.Equal(t, []int{30}, store.Saved())
	rec, ok := store.LastRecord()
	require.True(t, ok)
	assert.Equal(t, 2, rec.Lines, "progress stays with its score")
}

func TestControllerSavesProgressWithHighScore(t *testing.T) {
	store := &fakeStore{}
	c := startController(t, slowRules(), store, WithPieceSource(SequenceSource(I, I, O)))

	var snap Snapshot
	move := func(dir Direction) bool {
		before := c.Snapshot().Active.X
		next, err := c.Move(dir)
		require.NoError(t, err)
		return next.Active.X != before
	}
	drop := func() {
		var err error
		snap, err = c.HardDrop()
		require.NoError(t, err)
	}
	clearBottomRow(move, drop)
	require.Equal(t, 1, snap.Lines)

	require.Eventually(t, func() bool {
		rec, ok := store.LastRecord()
		return ok && rec.Score == snap.Score
	}, 2*time.Second, time.Millisecond)

	rec, _ := store.LastRecord()
	assert.Equal(t, Record{Score: snap.Score, Lines: 1, Level: 1}, rec)
}

func TestControllerRejectsUnknownDirection(t *testing.T) {
	c := startController(t, slowRules(), nil)
	before := c.Snapshot()

	snap, err := c.Move(Direction(9))
	assert.Error(t, err)
	assert.Equal(t, before, snap)
	assert.Equal(t, before, c.Snapshot())
}

func TestParseCommand(t *testing.T) {
	for cmd, name := range commandNames {
		got, err := ParseCommand(name)
		require.NoError(t, err)
		assert.Equal(t, cmd, got)
	}

	got, err := ParseCommand(" Drop ")
	require.NoError(t, err)
	assert.Equal(t, HardDropPiece, got)

	_, err = ParseCommand("hold")
	assert.Error(t, err)
}

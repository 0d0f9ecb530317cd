package tetris

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStopped is returned by commands sent after Run has returned.
var ErrStopped = errors.New("tetris: controller stopped")

// HighScoreStore is where a player's best score lives between sessions.
// Saved records carry the lines and level reached with the score.
type HighScoreStore interface {
	LoadHighScore(ctx context.Context) (int, error)
	SaveHighScore(ctx context.Context, rec Record) error
}

// Command is a player action delivered to the controller.
type Command int

const (
	MoveLeft Command = iota
	MoveRight
	MoveDown
	RotatePiece
	HardDropPiece
	TogglePause
	ResetGame
)

var commandNames = map[Command]string{
	MoveLeft:      "left",
	MoveRight:     "right",
	MoveDown:      "down",
	RotatePiece:   "rotate",
	HardDropPiece: "drop",
	TogglePause:   "pause",
	ResetGame:     "reset",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// ParseCommand maps the wire names used by the front ends to commands.
func ParseCommand(s string) (Command, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for cmd, name := range commandNames {
		if name == s {
			return cmd, nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", s)
}

type request struct {
	cmd   Command
	reply chan Snapshot
}

// Controller owns a Game and drives it from a single goroutine: gravity
// ticks and player commands are applied one at a time, in arrival order,
// against the latest state.
type Controller struct {
	game    *Game
	writer  *highScoreWriter
	started atomic.Bool
	ticks   atomic.Int64

	requests chan request
	updates  chan Snapshot
	done     chan struct{}

	mu     sync.Mutex
	latest Snapshot
}

// NewController builds a session. The high score is read from store once;
// a nil store keeps the high score in memory only.
func NewController(ctx context.Context, rules Rules, store HighScoreStore, opts ...Option) (*Controller, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}

	c := &Controller{
		requests: make(chan request),
		updates:  make(chan Snapshot, 1),
		done:     make(chan struct{}),
	}

	if store != nil {
		best, err := store.LoadHighScore(ctx)
		if err != nil {
			log.Printf("[WARN] Could not load high score, starting from 0: %v", err)
			best = 0
		}
		c.writer = newHighScoreWriter(store)
		opts = append([]Option{WithHighScore(best)}, opts...)
		opts = append(opts, OnHighScore(c.writer.submit))
	}

	c.game = NewGame(rules, opts...)
	c.latest = c.game.Snapshot()
	return c, nil
}

// Run processes ticks and commands until ctx is cancelled. It may only be
// called once.
func (c *Controller) Run(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return errors.New("tetris: controller already running")
	}
	defer close(c.done)

	if c.writer != nil {
		go c.writer.run()
		defer c.writer.close()
	}

	var (
		timer *time.Timer
		tickC <-chan time.Time
	)
	arm := func() {
		if timer != nil {
			timer.Stop()
		}
		timer, tickC = nil, nil
		if c.game.Running() {
			timer = time.NewTimer(c.game.GravityInterval())
			tickC = timer.C
		}
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	arm()
	c.publish()

	for {
		select {
		case <-ctx.Done():
			return nil

		case req := <-c.requests:
			before := c.schedule()
			c.apply(req.cmd)
			req.reply <- c.publish()
			if c.schedule() != before {
				arm()
			}

		case <-tickC:
			// The next tick is only armed once this one is done.
			c.ticks.Add(1)
			c.game.Tick()
			c.publish()
			arm()
		}
	}
}

// schedule captures everything that decides when the next gravity tick is
// due. A change in any of it restarts the timer.
type schedule struct {
	running bool
	level   int
	spawned int
}

func (c *Controller) schedule() schedule {
	return schedule{
		running: c.game.Running(),
		level:   c.game.Level(),
		spawned: c.game.Spawned(),
	}
}

func (c *Controller) apply(cmd Command) {
	switch cmd {
	case MoveLeft:
		c.game.Move(Left)
	case MoveRight:
		c.game.Move(Right)
	case MoveDown:
		c.game.Move(Down)
	case RotatePiece:
		c.game.Rotate()
	case HardDropPiece:
		c.game.HardDrop()
	case TogglePause:
		c.game.TogglePause()
	case ResetGame:
		c.game.Reset()
	}
}

func (c *Controller) publish() Snapshot {
	snap := c.game.Snapshot()

	c.mu.Lock()
	c.latest = snap
	c.mu.Unlock()

	// Only the newest snapshot is worth delivering.
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- snap:
	default:
	}
	return snap
}

// Do applies cmd and returns the resulting snapshot.
func (c *Controller) Do(cmd Command) (Snapshot, error) {
	req := request{cmd: cmd, reply: make(chan Snapshot, 1)}
	select {
	case c.requests <- req:
	case <-c.done:
		return Snapshot{}, ErrStopped
	}
	return <-req.reply, nil
}

func (c *Controller) Move(dir Direction) (Snapshot, error) {
	switch dir {
	case Left:
		return c.Do(MoveLeft)
	case Right:
		return c.Do(MoveRight)
	case Down:
		return c.Do(MoveDown)
	}
	return c.Snapshot(), fmt.Errorf("tetris: unknown direction %v", dir)
}

func (c *Controller) Rotate() (Snapshot, error) { return c.Do(RotatePiece) }
func (c *Controller) HardDrop() (Snapshot, error) { return c.Do(HardDropPiece) }
func (c *Controller) TogglePause() (Snapshot, error) { return c.Do(TogglePause) }
func (c *Controller) Reset() (Snapshot, error) { return c.Do(ResetGame) }

// Snapshot returns the state after the most recent tick or command.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Updates delivers a snapshot after every change. Snapshots that were not
// received before the next change are dropped.
func (c *Controller) Updates() <-chan Snapshot {
	return c.updates
}

// Done is closed when Run returns.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Ticks counts the gravity ticks processed so far.
func (c *Controller) Ticks() int64 {
	return c.ticks.Load()
}

// highScoreWriter saves high scores in the background so a slow or broken
// store never holds up the game loop. Only the best pending score is kept.
type highScoreWriter struct {
	store   HighScoreStore
	pending chan Record
	done    chan struct{}
	timeout time.Duration
}

func newHighScoreWriter(store HighScoreStore) *highScoreWriter {
	return &highScoreWriter{
		store:   store,
		pending: make(chan Record, 1),
		done:    make(chan struct{}),
		timeout: 5 * time.Second,
	}
}

// submit never blocks. It must only be called from the controller loop.
func (w *highScoreWriter) submit(rec Record) {
	for {
		select {
		case w.pending <- rec:
			return
		default:
		}
		select {
		case old := <-w.pending:
			if old.Score > rec.Score {
				rec = old
			}
		default:
		}
	}
}

func (w *highScoreWriter) run() {
	defer close(w.done)
	for rec := range w.pending {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		if err := w.store.SaveHighScore(ctx, rec); err != nil {
			log.Printf("[WARN] Failed to save high score %d: %v", rec.Score, err)
		}
		cancel()
	}
}

// close flushes the pending score and waits for the writer to finish.
func (w *highScoreWriter) close() {
	close(w.pending)
	<-w.done
}

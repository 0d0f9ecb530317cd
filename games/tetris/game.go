package tetris

import (
	"fmt"
	"math/rand"
	"time"
)

// Direction is a one-cell move of the active piece.
type Direction int

const (
	Left Direction = iota
	Right
	Down
)

// offset reports the cell delta of d. ok is false for unknown directions.
func (d Direction) offset() (dx, dy int, ok bool) {
	switch d {
	case Left:
		return -1, 0, true
	case Right:
		return 1, 0, true
	case Down:
		return 0, 1, true
	}
	return 0, 0, false
}

func (d Direction) valid() bool {
	_, _, ok := d.offset()
	return ok
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Down:
		return "down"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Piece is the falling piece: its kind, top-left anchor and rotation index.
type Piece struct {
	Kind     Kind
	Pos      Point
	Rotation int
}

// tally is the numeric part of a session.
type tally struct {
	Score     int
	Lines     int
	Level     int
	HighScore int
}

// Record is a score together with the progress made to reach it.
type Record struct {
	Score int
	Lines int
	Level int
}

// LockResult describes what a lock sequence did.
type LockResult struct {
	Cleared      int
	Points       int
	LevelBefore  int
	LevelAfter   int
	NewHighScore bool
}

// Game is the state machine of a single session. It is not safe for
// concurrent use; Controller serialises access to it.
type Game struct {
	rules  Rules
	source PieceSource

	board  Board
	active Piece
	next   Kind
	stats  tally

	gameOver bool
	paused   bool

	// spawned counts pieces put into play since construction.
	spawned int
	last    LockResult

	onHighScore func(Record)
}

type Option func(*Game)

// WithPieceSource replaces the uniform random piece source.
func WithPieceSource(src PieceSource) Option {
	return func(g *Game) { g.source = src }
}

// WithHighScore seeds the best score known before the session starts.
func WithHighScore(score int) Option {
	return func(g *Game) { g.stats.HighScore = score }
}

// OnHighScore registers fn to be called from the lock sequence whenever the
// score climbs above the high score. fn sees the state after the lock.
func OnHighScore(fn func(Record)) Option {
	return func(g *Game) { g.onHighScore = fn }
}

// NewGame starts a session with the first piece in play. rules must pass
// Validate.
func NewGame(rules Rules, opts ...Option) *Game {
	g := &Game{
		rules:  rules,
		source: UniformSource(rand.New(rand.NewSource(time.Now().UnixNano()))),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.Reset()
	return g
}

func (g *Game) Rules() Rules { return g.rules }
func (g *Game) Board() Board { return g.board }
func (g *Game) Active() Piece { return g.active }
func (g *Game) Next() Kind { return g.next }
func (g *Game) Score() int { return g.stats.Score }
func (g *Game) Lines() int { return g.stats.Lines }
func (g *Game) Level() int { return g.stats.Level }
func (g *Game) HighScore() int { return g.stats.HighScore }
func (g *Game) GameOver() bool { return g.gameOver }
func (g *Game) Paused() bool { return g.paused }
func (g *Game) Spawned() int { return g.spawned }
func (g *Game) LastLock() LockResult { return g.last }

// GravityInterval is the current delay between automatic drops.
func (g *Game) GravityInterval() time.Duration {
	return g.rules.GravityInterval(g.stats.Level)
}

// Running reports whether gravity should currently apply.
func (g *Game) Running() bool {
	return !g.gameOver && !g.paused
}

// SpawnNext promotes the queued kind to the active piece at the spawn point
// and queues a new one. The game is over if the new piece does not fit.
func (g *Game) SpawnNext() {
	kind := g.next
	g.next = g.source()
	g.active = Piece{Kind: kind, Pos: g.rules.SpawnPoint()}
	g.spawned++

	if !IsValidPlacement(g.board, g.active.Kind, g.active.Pos, g.active.Rotation) {
		g.gameOver = true
	}
}

// Move shifts the active piece one cell. A successful move down scores soft
// drop points; a blocked move down locks the piece. Unknown directions do
// nothing.
func (g *Game) Move(dir Direction) bool {
	if !g.Running() || !dir.valid() {
		return false
	}
	if g.step(dir) {
		if dir == Down {
			g.stats.Score += g.rules.SoftDropPoints
		}
		return true
	}
	if dir == Down {
		g.lock()
	}
	return false
}

// Tick is one gravity step: the piece falls a row or, when it cannot, locks.
func (g *Game) Tick() bool {
	if !g.Running() {
		return false
	}
	if g.step(Down) {
		return true
	}
	g.lock()
	return false
}

func (g *Game) step(dir Direction) bool {
	dx, dy, ok := dir.offset()
	if !ok {
		return false
	}
	target := g.active.Pos.Add(dx, dy)
	if !IsValidPlacement(g.board, g.active.Kind, target, g.active.Rotation) {
		return false
	}
	g.active.Pos = target
	return true
}

// Rotate turns the active piece a quarter clockwise in place. There are no
// wall kicks: a blocked rotation is rejected.
func (g *Game) Rotate() bool {
	if !g.Running() {
		return false
	}
	rotation := mod4(g.active.Rotation + 1)
	if !IsValidPlacement(g.board, g.active.Kind, g.active.Pos, rotation) {
		return false
	}
	g.active.Rotation = rotation
	return true
}

// HardDrop drops the active piece as far as it goes, scores the distance and
// locks it. It returns the number of rows dropped.
func (g *Game) HardDrop() int {
	if !g.Running() {
		return 0
	}
	d := dropDistance(g.board, g.active.Kind, g.active.Pos, g.active.Rotation)
	g.active.Pos = g.active.Pos.Add(0, d)
	g.stats.Score += d * g.rules.HardDropPoints
	g.lock()
	return d
}

// TogglePause suspends or resumes play. It does nothing once the game is over.
func (g *Game) TogglePause() bool {
	if g.gameOver {
		return false
	}
	g.paused = !g.paused
	return g.paused
}

// Reset starts over on an empty board. The high score is kept.
func (g *Game) Reset() {
	g.board = NewBoard(g.rules.Width, g.rules.Height)
	g.stats = tally{Level: 1, HighScore: g.stats.HighScore}
	g.gameOver = false
	g.paused = false
	g.last = LockResult{}
	g.next = g.source()
	g.SpawnNext()
}

func (g *Game) lock() {
	board, stats, result := settle(g.rules, g.board, g.active, g.stats)
	g.board = board
	g.stats = stats
	g.last = result
	if result.NewHighScore && g.onHighScore != nil {
		g.onHighScore(Record{Score: stats.HighScore, Lines: stats.Lines, Level: stats.Level})
	}
	g.SpawnNext()
}

// settle is the lock sequence as one pass: stamp the piece, clear rows, score
// the clear at the level held before it, recompute the level and raise the
// high score.
func settle(rules Rules, board Board, p Piece, before tally) (Board, tally, LockResult) {
	stamped := Stamp(board, p.Kind, p.Pos, p.Rotation)
	cleared, n := ClearCompletedRows(stamped)

	levelBefore := rules.LevelFor(before.Lines)
	points := n * rules.LineClearPoints * levelBefore

	after := before
	after.Score += points
	after.Lines += n
	after.Level = rules.LevelFor(after.Lines)

	result := LockResult{
		Cleared:     n,
		Points:      points,
		LevelBefore: levelBefore,
		LevelAfter:  after.Level,
	}
	if after.Score > before.HighScore {
		after.HighScore = after.Score
		result.NewHighScore = true
	}
	return cleared, after, result
}

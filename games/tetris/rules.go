package tetris

import (
	"fmt"
	"time"
)

const (
	BoardWidth  = 10
	BoardHeight = 20
)

// Rules holds the tunable constants of a session.
type Rules struct {
	Width  int
	Height int

	// Gravity cadence is max(MinInterval, BaseInterval - (level-1)*IntervalStep).
	BaseInterval time.Duration
	IntervalStep time.Duration
	MinInterval  time.Duration

	LinesPerLevel   int
	LineClearPoints int
	SoftDropPoints  int
	HardDropPoints  int
}

func DefaultRules() Rules {
	return Rules{
		Width:           BoardWidth,
		Height:          BoardHeight,
		BaseInterval:    1000 * time.Millisecond,
		IntervalStep:    100 * time.Millisecond,
		MinInterval:     100 * time.Millisecond,
		LinesPerLevel:   10,
		LineClearPoints: 100,
		SoftDropPoints:  1,
		HardDropPoints:  2,
	}
}

// Validate rejects rule sets the engine cannot play with. The board has to
// be at least five columns wide so the I piece fits at the spawn point.
func (r Rules) Validate() error {
	if r.Width < 5 || r.Height < 4 {
		return fmt.Errorf("board must be at least 5 wide and 4 high, got %dx%d", r.Width, r.Height)
	}
	if r.BaseInterval <= 0 || r.MinInterval <= 0 {
		return fmt.Errorf("gravity intervals must be positive")
	}
	if r.IntervalStep < 0 {
		return fmt.Errorf("gravity step must not be negative")
	}
	if r.LinesPerLevel <= 0 {
		return fmt.Errorf("lines per level must be positive, got %d", r.LinesPerLevel)
	}
	if r.LineClearPoints < 0 || r.SoftDropPoints < 0 || r.HardDropPoints < 0 {
		return fmt.Errorf("points must not be negative")
	}
	return nil
}

// LevelFor returns the level reached after clearing lines in total.
func (r Rules) LevelFor(lines int) int {
	return lines/r.LinesPerLevel + 1
}

// GravityInterval is the delay between automatic drops at level.
func (r Rules) GravityInterval(level int) time.Duration {
	d := r.BaseInterval - time.Duration(level-1)*r.IntervalStep
	if d < r.MinInterval {
		return r.MinInterval
	}
	return d
}

// SpawnPoint is where new pieces appear, centred on the top row.
func (r Rules) SpawnPoint() Point {
	return Point{X: r.Width/2 - 1, Y: 0}
}

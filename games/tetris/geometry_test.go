package tetris

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotate(t *testing.T) {
	tests := []struct {
		kind  Kind
		steps int
		want  string
	}{
		{T, 0, ".#./###"},
		{T, 1, "#./##/#."},
		{T, 2, "###/.#."},
		{T, 3, ".#/##/.#"},
		{I, 1, "#/#/#/#"},
		{I, 2, "####"},
		{L, 1, "#./#./##"},
		{J, -1, ".#/.#/##"},
		{O, 1, "##/##"},
	}
	for _, tt := range tests {
		got := Rotate(tt.kind.Shape(), tt.steps)
		assert.Equal(t, tt.want, got.String(), "Rotate(%s, %d)", tt.kind, tt.steps)
	}
}

func TestRotateRoundTrip(t *testing.T) {
	for _, k := range Kinds {
		shape := k.Shape()
		for r := 0; r < 8; r++ {
			rotated := Rotate(shape, r)
			if r%2 == 1 {
				assert.Len(t, rotated, len(shape[0]), "%s rotated %d times should transpose", k, r)
				assert.Len(t, rotated[0], len(shape), "%s rotated %d times should transpose", k, r)
			}
			back := Rotate(rotated, 4-r%4)
			assert.True(t, back.Equal(shape), "%s: %s after %d+%d steps, want %s", k, back, r, 4-r%4, shape)
		}
	}
}

func TestRotateDoesNotModifyInput(t *testing.T) {
	shape := S.Shape()
	Rotate(shape, 1)
	assert.Equal(t, ".##/##.", shape.String())
}

func TestIsValidPlacement(t *testing.T) {
	empty := NewBoard(10, 20)
	blocked := empty.WithCell(5, 0, "x")

	tests := []struct {
		name     string
		board    Board
		kind     Kind
		pos      Point
		rotation int
		want     bool
	}{
		{"I at spawn", empty, I, Point{4, 0}, 0, true},
		{"I against right wall", empty, I, Point{6, 0}, 0, true},
		{"I past right wall", empty, I, Point{7, 0}, 0, false},
		{"I past left wall", empty, I, Point{-1, 0}, 0, false},
		{"O on the floor", empty, O, Point{0, 18}, 0, true},
		{"O through the floor", empty, O, Point{0, 19}, 0, false},
		{"T partly above the top", empty, T, Point{4, -1}, 0, true},
		{"vertical I above the top", empty, I, Point{0, -3}, 1, true},
		{"above the top still bounded left", empty, I, Point{-1, -3}, 1, false},
		{"above the top still bounded right", empty, I, Point{10, -3}, 1, false},
		{"overlapping a locked cell", blocked, O, Point{4, 0}, 0, false},
		{"next to a locked cell", blocked, O, Point{6, 0}, 0, true},
		{"entirely above the top", blocked, O, Point{4, -2}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPlacement(tt.board, tt.kind, tt.pos, tt.rotation))
		})
	}
}

// TestIsValidPlacementMatchesDefinition checks placements on random boards
// against a direct reading of the placement rule.
func TestIsValidPlacementMatchesDefinition(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		board := NewBoard(10, 20)
		for y := 0; y < 20; y++ {
			for x := 0; x < 10; x++ {
				if rng.Intn(4) == 0 {
					board = board.WithCell(x, y, "x")
				}
			}
		}

		for _, k := range Kinds {
			for r := 0; r < 4; r++ {
				shape := Rotate(k.Shape(), r)
				for y := -4; y <= 21; y++ {
					for x := -4; x <= 12; x++ {
						want := true
						for sy, row := range shape {
							for sx, filled := range row {
								if !filled {
									continue
								}
								bx, by := x+sx, y+sy
								if bx < 0 || bx >= 10 || by >= 20 || (by >= 0 && board.Occupied(bx, by)) {
									want = false
								}
							}
						}
						got := IsValidPlacement(board, k, Point{x, y}, r)
						require.Equal(t, want, got, "%s rotation %d at (%d,%d)\n%s", k, r, x, y, board)
					}
				}
			}
		}
	}
}

func TestStamp(t *testing.T) {
	board := NewBoard(10, 20)

	stamped := Stamp(board, T, Point{3, 5}, 0)
	assert.Equal(t, Empty, board.At(4, 5), "input board must not change")
	assert.Equal(t, T.Color(), stamped.At(4, 5))
	assert.Equal(t, T.Color(), stamped.At(3, 6))
	assert.Equal(t, T.Color(), stamped.At(4, 6))
	assert.Equal(t, T.Color(), stamped.At(5, 6))
	assert.Equal(t, Empty, stamped.At(3, 5))

	// Cells above the top are dropped.
	partial := Stamp(board, I, Point{0, -2}, 1)
	occupied := 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 10; x++ {
			if partial.Occupied(x, y) {
				occupied++
			}
		}
	}
	assert.Equal(t, 2, occupied)
	assert.True(t, partial.Occupied(0, 0))
	assert.True(t, partial.Occupied(0, 1))
}

func TestDropDistance(t *testing.T) {
	board := NewBoard(10, 20)
	assert.Equal(t, 18, dropDistance(board, O, Point{4, 0}, 0))
	assert.Equal(t, 19, dropDistance(board, I, Point{4, 0}, 0))

	board = board.WithCell(4, 10, "x")
	assert.Equal(t, 8, dropDistance(board, O, Point{4, 0}, 0))
	assert.Equal(t, 0, dropDistance(board, O, Point{4, 8}, 0))
}

package tetris

import (
	"fmt"
	"strings"
)

// Board is the grid of locked cells. A Board value is never modified once
// built: every operation that changes cells returns a new Board.
type Board struct {
	width, height int
	cells         []Color
}

// NewBoard returns an empty width×height board.
func NewBoard(width, height int) Board {
	return Board{
		width:  width,
		height: height,
		cells:  make([]Color, width*height),
	}
}

// BoardFromRows builds a board from rows of colors, top row first. Every row
// must have the same length.
func BoardFromRows(rows [][]Color) (Board, error) {
	if len(rows) == 0 {
		return Board{}, fmt.Errorf("board needs at least one row")
	}
	width := len(rows[0])
	if width == 0 {
		return Board{}, fmt.Errorf("board needs at least one column")
	}
	b := NewBoard(width, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return Board{}, fmt.Errorf("row %d has %d cells, want %d", y, len(row), width)
		}
		copy(b.cells[y*width:], row)
	}
	return b, nil
}

func (b Board) Width() int { return b.width }
func (b Board) Height() int { return b.height }

func (b Board) index(x, y int) int {
	return y*b.width + x
}

func (b Board) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// At returns the cell color, or Empty for coordinates off the board.
func (b Board) At(x, y int) Color {
	if !b.inBounds(x, y) {
		return Empty
	}
	return b.cells[b.index(x, y)]
}

func (b Board) Occupied(x, y int) bool {
	return b.At(x, y) != Empty
}

// WithCell returns a copy of the board with one cell replaced.
func (b Board) WithCell(x, y int, c Color) Board {
	out := b.clone()
	if out.inBounds(x, y) {
		out.cells[out.index(x, y)] = c
	}
	return out
}

func (b Board) clone() Board {
	out := b
	out.cells = append([]Color(nil), b.cells...)
	return out
}

func (b Board) row(y int) []Color {
	return b.cells[y*b.width : (y+1)*b.width]
}

func (b Board) rowFull(y int) bool {
	for _, c := range b.row(y) {
		if c == Empty {
			return false
		}
	}
	return true
}

// Rows returns a copy of the cells as rows, top row first.
func (b Board) Rows() [][]Color {
	rows := make([][]Color, b.height)
	for y := range rows {
		rows[y] = append([]Color(nil), b.row(y)...)
	}
	return rows
}

func (b Board) Equal(other Board) bool {
	if b.width != other.width || b.height != other.height {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// String renders the board with '.' for empty and '#' for occupied cells.
func (b Board) String() string {
	var sb strings.Builder
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.Occupied(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ClearCompletedRows removes every full row, shifts the remaining rows down
// keeping their order and refills the top with empty rows. It returns the
// resulting board and how many rows were removed.
func ClearCompletedRows(b Board) (Board, int) {
	cleared := 0
	for y := 0; y < b.height; y++ {
		if b.rowFull(y) {
			cleared++
		}
	}
	if cleared == 0 {
		return b, 0
	}

	out := NewBoard(b.width, b.height)
	dst := b.height - 1
	for y := b.height - 1; y >= 0; y-- {
		if b.rowFull(y) {
			continue
		}
		copy(out.row(dst), b.row(y))
		dst--
	}
	return out, cleared
}

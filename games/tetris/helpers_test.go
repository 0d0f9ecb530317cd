package tetris

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// mustBoard builds a board from ASCII rows: '.' is empty, any other byte is
// a cell painted with that byte as its color.
func mustBoard(t *testing.T, rows ...string) Board {
	t.Helper()
	cells := make([][]Color, len(rows))
	for y, row := range rows {
		cells[y] = make([]Color, len(row))
		for x := 0; x < len(row); x++ {
			if row[x] != '.' {
				cells[y][x] = Color(row[x : x+1])
			}
		}
	}
	b, err := BoardFromRows(cells)
	require.NoError(t, err)
	return b
}

// fillRow paints every column of row y except the ones listed in gaps.
func fillRow(b Board, y int, c Color, gaps ...int) Board {
	skip := make(map[int]bool, len(gaps))
	for _, x := range gaps {
		skip[x] = true
	}
	for x := 0; x < b.Width(); x++ {
		if !skip[x] {
			b = b.WithCell(x, y, c)
		}
	}
	return b
}

func newTestGame(kinds ...Kind) *Game {
	return NewGame(DefaultRules(), WithPieceSource(SequenceSource(kinds...)))
}

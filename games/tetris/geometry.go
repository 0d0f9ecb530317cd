package tetris

// Point is a cell coordinate; y grows downward and may be negative while a
// piece is still above the visible board.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

func mod4(n int) int {
	return ((n % 4) + 4) % 4
}

// Rotate turns the shape clockwise by steps quarter turns. Negative steps
// turn counter-clockwise. The input is never modified.
func Rotate(shape Shape, steps int) Shape {
	out := shape.Clone()
	for i := 0; i < mod4(steps); i++ {
		out = rotateClockwise(out)
	}
	return out
}

func rotateClockwise(shape Shape) Shape {
	rows := len(shape)
	if rows == 0 {
		return Shape{}
	}
	cols := len(shape[0])
	rotated := make(Shape, cols)
	for i := range rotated {
		rotated[i] = make([]bool, rows)
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			rotated[c][rows-1-r] = shape[r][c]
		}
	}

	return rotated
}

// Cells returns the absolute coordinates covered by kind at pos and rotation.
func Cells(kind Kind, pos Point, rotation int) []Point {
	shape := kind.shapeAt(rotation)
	cells := make([]Point, 0, 4)
	for py, row := range shape {
		for px, filled := range row {
			if filled {
				cells = append(cells, pos.Add(px, py))
			}
		}
	}
	return cells
}

// IsValidPlacement reports whether kind fits on board at pos and rotation.
// Cells above the top edge are only checked against the side walls.
func IsValidPlacement(board Board, kind Kind, pos Point, rotation int) bool {
	for _, c := range Cells(kind, pos, rotation) {
		if c.X < 0 || c.X >= board.Width() || c.Y >= board.Height() {
			return false
		}
		if c.Y >= 0 && board.Occupied(c.X, c.Y) {
			return false
		}
	}
	return true
}

// Stamp returns a copy of board with the piece's cells painted in its color.
// Cells above the top edge are dropped.
func Stamp(board Board, kind Kind, pos Point, rotation int) Board {
	out := board.clone()
	color := kind.Color()
	for _, c := range Cells(kind, pos, rotation) {
		if c.Y < 0 || !out.inBounds(c.X, c.Y) {
			continue
		}
		out.cells[out.index(c.X, c.Y)] = color
	}
	return out
}

// dropDistance is how many rows the piece can fall before it would collide.
func dropDistance(board Board, kind Kind, pos Point, rotation int) int {
	d := 0
	for IsValidPlacement(board, kind, pos.Add(0, d+1), rotation) {
		d++
	}
	return d
}

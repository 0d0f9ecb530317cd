package tetris

import (
	"fmt"
	"math/rand"
	"strings"
)

// Kind identifies one of the seven standard pieces.
type Kind int

const (
	I Kind = iota
	O
	T
	S
	Z
	J
	L
)

// Kinds lists every piece kind in catalog order.
var Kinds = []Kind{I, O, T, S, Z, J, L}

// Color is the identifier painted into a board cell. The empty string means
// the cell is free.
type Color string

const Empty Color = ""

// Shape is an occupancy matrix, rows top to bottom.
type Shape [][]bool

type pieceDef struct {
	name  string
	shape Shape
	color Color
}

var catalog = [...]pieceDef{
	I: {"I", parseShape("####"), "#00ffff"},
	O: {"O", parseShape("##", "##"), "#ffff00"},
	T: {"T", parseShape(".#.", "###"), "#a000f0"},
	S: {"S", parseShape(".##", "##."), "#00ff00"},
	Z: {"Z", parseShape("##.", ".##"), "#ff0000"},
	J: {"J", parseShape("#..", "###"), "#0000ff"},
	L: {"L", parseShape("..#", "###"), "#ffa500"},
}

// rotations[k][r] is the shape of kind k after r clockwise quarter turns.
var rotations [len(catalog)][4]Shape

func init() {
	for k := range catalog {
		for r := 0; r < 4; r++ {
			rotations[k][r] = Rotate(catalog[k].shape, r)
		}
	}
}

func parseShape(rows ...string) Shape {
	s := make(Shape, len(rows))
	for y, row := range rows {
		s[y] = make([]bool, len(row))
		for x, c := range row {
			s[y][x] = c == '#'
		}
	}
	return s
}

// Valid reports whether k is one of the seven recognised kinds.
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < len(catalog)
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return catalog[k].name
}

// Shape returns a copy of the canonical rotation-0 shape.
func (k Kind) Shape() Shape {
	return catalog[k].shape.Clone()
}

func (k Kind) Color() Color {
	return catalog[k].color
}

func (k Kind) shapeAt(rotation int) Shape {
	return rotations[k][mod4(rotation)]
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid piece kind %d", int(k))
	}
	return []byte(catalog[k].name), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind maps a letter such as "T" (case-insensitive) to its Kind.
func ParseKind(s string) (Kind, error) {
	for k := range catalog {
		if strings.EqualFold(catalog[k].name, s) {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown piece kind %q", s)
}

// RandomKind picks a kind uniformly.
func RandomKind(rng *rand.Rand) Kind {
	return Kinds[rng.Intn(len(Kinds))]
}

// PieceSource yields the kind of the next piece to queue.
type PieceSource func() Kind

// UniformSource draws every kind with equal probability.
func UniformSource(rng *rand.Rand) PieceSource {
	return func() Kind { return RandomKind(rng) }
}

// SequenceSource repeats the given kinds in order.
func SequenceSource(kinds ...Kind) PieceSource {
	if len(kinds) == 0 {
		kinds = Kinds
	}
	i := 0
	return func() Kind {
		k := kinds[i%len(kinds)]
		i++
		return k
	}
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	for y := range s {
		out[y] = append([]bool(nil), s[y]...)
	}
	return out
}

// Equal reports whether both shapes have the same dimensions and cells.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for y := range s {
		if len(s[y]) != len(other[y]) {
			return false
		}
		for x := range s[y] {
			if s[y][x] != other[y][x] {
				return false
			}
		}
	}
	return true
}

func (s Shape) String() string {
	var b strings.Builder
	for y, row := range s {
		if y > 0 {
			b.WriteByte('/')
		}
		for _, filled := range row {
			if filled {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}

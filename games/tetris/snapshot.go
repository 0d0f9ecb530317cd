package tetris

// ActivePiece is the falling piece as exposed to front ends.
type ActivePiece struct {
	Kind     Kind    `json:"kind"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Rotation int     `json:"rotation"`
	Cells    []Point `json:"cells"`
	Color    Color   `json:"color"`
}

// Snapshot is a copy of everything a front end needs to draw a session. The
// board holds locked cells only; Composite overlays the active piece.
type Snapshot struct {
	Board     [][]Color   `json:"board"`
	Active    ActivePiece `json:"active"`
	Next      Kind        `json:"next"`
	NextShape Shape       `json:"nextShape"`
	Score     int         `json:"score"`
	HighScore int         `json:"highScore"`
	Lines     int         `json:"lines"`
	Level     int         `json:"level"`
	GameOver  bool        `json:"gameOver"`
	Paused    bool        `json:"paused"`
}

// Snapshot copies the current state of the game.
func (g *Game) Snapshot() Snapshot {
	active := ActivePiece{
		Kind:     g.active.Kind,
		X:        g.active.Pos.X,
		Y:        g.active.Pos.Y,
		Rotation: g.active.Rotation,
		Cells:    Cells(g.active.Kind, g.active.Pos, g.active.Rotation),
		Color:    g.active.Kind.Color(),
	}
	return Snapshot{
		Board:     g.board.Rows(),
		Active:    active,
		Next:      g.next,
		NextShape: g.next.Shape(),
		Score:     g.stats.Score,
		HighScore: g.stats.HighScore,
		Lines:     g.stats.Lines,
		Level:     g.stats.Level,
		GameOver:  g.gameOver,
		Paused:    g.paused,
	}
}

// Composite returns the board with the active piece drawn on top. Cells of
// the piece above the top edge are left out.
func (s Snapshot) Composite() [][]Color {
	rows := make([][]Color, len(s.Board))
	for y := range s.Board {
		rows[y] = append([]Color(nil), s.Board[y]...)
	}
	for _, c := range s.Active.Cells {
		if c.Y >= 0 && c.Y < len(rows) && c.X >= 0 && c.X < len(rows[c.Y]) {
			rows[c.Y][c.X] = s.Active.Color
		}
	}
	return rows
}

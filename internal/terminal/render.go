package terminal

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/isaacjstriker/notris/games/tetris"
)

// SupportsColor reports whether stdout is a terminal that understands ANSI
// colors.
func SupportsColor() bool {
	t := os.Getenv("TERM")
	return t != "" && t != "dumb" && term.IsTerminal(int(os.Stdout.Fd()))
}

// Renderer draws snapshots as text. Each board cell is two characters wide.
type Renderer struct {
	Color bool
}

func (r Renderer) cell(c tetris.Color) string {
	if c == tetris.Empty {
		if r.Color {
			return "  "
		}
		return " ."
	}
	if !r.Color {
		return "[]"
	}
	red, green, blue, ok := parseHex(c)
	if !ok {
		return "\033[47m  \033[0m"
	}
	return fmt.Sprintf("\033[48;2;%d;%d;%dm  \033[0m", red, green, blue)
}

// parseHex reads a #rrggbb color.
func parseHex(c tetris.Color) (r, g, b uint8, ok bool) {
	s := strings.TrimPrefix(string(c), "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

// Render returns one full frame: the board with the falling piece, the
// side panel and the controls.
func (r Renderer) Render(snap tetris.Snapshot) string {
	rows := snap.Composite()
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}

	panel := r.panel(snap)

	var b strings.Builder
	b.WriteString("╔" + strings.Repeat("═", width*2) + "╗\n")
	for y, row := range rows {
		b.WriteString("║")
		for _, c := range row {
			b.WriteString(r.cell(c))
		}
		b.WriteString("║")
		if y < len(panel) {
			b.WriteString("  " + panel[y])
		}
		b.WriteString("\n")
	}
	b.WriteString("╚" + strings.Repeat("═", width*2) + "╝\n")

	switch {
	case snap.GameOver:
		b.WriteString("\nGAME OVER - press R to play again or Q to quit\n")
	case snap.Paused:
		b.WriteString("\nPAUSED - press P to resume\n")
	default:
		b.WriteString("\n\n")
	}
	b.WriteString("Controls: ←/→ or A/D move, ↓/S down, ↑/W rotate, Space drop, P pause, R reset, Q quit\n")
	return b.String()
}

func (r Renderer) panel(snap tetris.Snapshot) []string {
	lines := []string{
		fmt.Sprintf("Score: %d", snap.Score),
		fmt.Sprintf("High:  %d", snap.HighScore),
		fmt.Sprintf("Lines: %d", snap.Lines),
		fmt.Sprintf("Level: %d", snap.Level),
		"",
		"Next:",
	}
	color := snap.Next.Color()
	for _, row := range snap.NextShape {
		var b strings.Builder
		for _, filled := range row {
			if filled {
				b.WriteString(r.cell(color))
			} else {
				b.WriteString("  ")
			}
		}
		lines = append(lines, b.String())
	}
	return lines
}

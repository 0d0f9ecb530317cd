package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/eiannone/keyboard"
)

// Exit is returned by Show when the player leaves the menu.
const Exit = "exit"

type MenuItem struct {
	Label string
	Value string
}

type Menu struct {
	Title    string
	Subtitle string
	Items    []MenuItem
	Selected int
	Width    int
}

func NewMenu(title string, items []MenuItem) *Menu {
	return &Menu{
		Title: title,
		Items: items,
		Width: 60,
	}
}

const banner = `
 _   _  ___ _____ ____  ___ ____
| \ | |/ _ \_   _|  _ \|_ _/ ___|
|  \| | | | || | | |_) || |\___ \
| |\  | |_| || | |  _ < | | ___) |
|_| \_|\___/ |_| |_| \_\___|____/
`

// ClearScreen moves the cursor home and clears the terminal.
func ClearScreen() {
	fmt.Print("\033[H\033[2J")
}

func (m *Menu) centerText(text string, width int) string {
	inner := width - 2
	n := len([]rune(text))
	if n >= inner {
		return string([]rune(text)[:inner])
	}
	padding := (inner - n) / 2
	return strings.Repeat(" ", padding) + text + strings.Repeat(" ", inner-n-padding)
}

func (m *Menu) line(left, fill, right string) string {
	return left + strings.Repeat(fill, m.Width-2) + right + "\n"
}

func (m *Menu) String() string {
	var b strings.Builder
	b.WriteString(banner)
	b.WriteString("\n")
	if m.Subtitle != "" {
		b.WriteString(m.centerText(m.Subtitle, m.Width) + "\n\n")
	}

	b.WriteString(m.line("╔", "═", "╗"))
	b.WriteString("║" + m.centerText(m.Title, m.Width) + "║\n")
	b.WriteString(m.line("╠", "═", "╣"))

	for i, item := range m.Items {
		prefix := "  "
		if i == m.Selected {
			prefix = "► "
		}
		text := m.centerText(prefix+item.Label, m.Width)
		if i == m.Selected {
			b.WriteString("║\033[7m" + text + "\033[0m║\n")
		} else {
			b.WriteString("║" + text + "║\n")
		}
	}

	b.WriteString(m.line("╚", "═", "╝"))
	b.WriteString("\nUse ↑/↓ arrows to navigate, Enter to select, 'q' to quit\n")
	return b.String()
}

func (m *Menu) moveUp() {
	if m.Selected > 0 {
		m.Selected--
	} else {
		m.Selected = len(m.Items) - 1
	}
}

func (m *Menu) moveDown() {
	if m.Selected < len(m.Items)-1 {
		m.Selected++
	} else {
		m.Selected = 0
	}
}

// handleKey applies one key press and reports the chosen value once the
// player has decided.
func (m *Menu) handleKey(char rune, key keyboard.Key) (string, bool) {
	switch key {
	case keyboard.KeyArrowUp:
		m.moveUp()
	case keyboard.KeyArrowDown:
		m.moveDown()
	case keyboard.KeyEnter:
		return m.Items[m.Selected].Value, true
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return Exit, true
	}

	switch char {
	case 'q', 'Q':
		return Exit, true
	case 'k', 'w':
		m.moveUp()
	case 'j', 's':
		m.moveDown()
	}
	return "", false
}

// Show draws the menu until the player picks an item.
func (m *Menu) Show() string {
	if len(m.Items) == 0 {
		return Exit
	}
	if err := keyboard.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open keyboard: %v\n", err)
		return Exit
	}
	defer keyboard.Close()

	for {
		ClearScreen()
		fmt.Print(m.String())

		char, key, err := keyboard.GetKey()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading key: %v\n", err)
			return Exit
		}
		if value, done := m.handleKey(char, key); done {
			return value
		}
	}
}

// Pause waits for Enter so the player can read a message.
func Pause() {
	fmt.Println("Press Enter to continue...")
	fmt.Scanln()
}

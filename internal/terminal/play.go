package terminal

import (
	"context"
	"fmt"
	"io"

	"github.com/eiannone/keyboard"

	"github.com/isaacjstriker/notris/games/tetris"
)

// action is what a key press asks for.
type action int

const (
	ignore action = iota
	command
	quit
)

// keyAction maps a key press to a controller command.
func keyAction(char rune, key keyboard.Key) (action, tetris.Command) {
	switch key {
	case keyboard.KeyArrowLeft:
		return command, tetris.MoveLeft
	case keyboard.KeyArrowRight:
		return command, tetris.MoveRight
	case keyboard.KeyArrowDown:
		return command, tetris.MoveDown
	case keyboard.KeyArrowUp:
		return command, tetris.RotatePiece
	case keyboard.KeySpace:
		return command, tetris.HardDropPiece
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return quit, 0
	}

	switch char {
	case 'a', 'A':
		return command, tetris.MoveLeft
	case 'd', 'D':
		return command, tetris.MoveRight
	case 's', 'S':
		return command, tetris.MoveDown
	case 'w', 'W':
		return command, tetris.RotatePiece
	case ' ':
		return command, tetris.HardDropPiece
	case 'p', 'P':
		return command, tetris.TogglePause
	case 'r', 'R':
		return command, tetris.ResetGame
	case 'q', 'Q':
		return quit, 0
	}
	return ignore, 0
}

// Play runs ctrl and drives it from the keyboard, drawing every update to
// out, until the player quits or ctx is cancelled.
func Play(ctx context.Context, ctrl *tetris.Controller, out io.Writer, r Renderer) error {
	keys, err := keyboard.GetKeys(10)
	if err != nil {
		return fmt.Errorf("failed to open keyboard: %w", err)
	}
	defer keyboard.Close()

	return loop(ctx, ctrl, keys, out, r)
}

func loop(ctx context.Context, ctrl *tetris.Controller, keys <-chan keyboard.KeyEvent, out io.Writer, r Renderer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		<-ctrl.Done()
	}()
	go ctrl.Run(ctx)

	fmt.Fprint(out, "\033[?25l")
	defer fmt.Fprint(out, "\033[?25h")

	for {
		select {
		case <-ctx.Done():
			return nil

		case snap := <-ctrl.Updates():
			fmt.Fprint(out, "\033[H\033[2J"+r.Render(snap))

		case ev, ok := <-keys:
			if !ok {
				return nil
			}
			if ev.Err != nil {
				return fmt.Errorf("reading key: %w", ev.Err)
			}
			act, cmd := keyAction(ev.Rune, ev.Key)
			switch act {
			case quit:
				return nil
			case command:
				if _, err := ctrl.Do(cmd); err != nil {
					return err
				}
			}
		}
	}
}

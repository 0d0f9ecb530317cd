package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/isaacjstriker/notris/games/tetris"
)

// LoadRules applies the overrides in the Lua script at path on top of base.
// The script returns a table such as:
//
//	return {
//	  board   = { width = 10, height = 20 },
//	  gravity = { base_ms = 1000, step_ms = 100, min_ms = 100 },
//	  scoring = { line_clear = 100, soft_drop = 1, hard_drop = 2, lines_per_level = 10 },
//	}
//
// Missing keys keep their base value. A missing file is not an error.
func LoadRules(path string, base tetris.Rules) (tetris.Rules, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		log.Printf("[INFO] %s not found, using default rules", path)
		return base, nil
	}

	L := lua.NewState()
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		return base, fmt.Errorf("failed to run %s: %w", path, err)
	}

	tbl, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		return base, fmt.Errorf("%s must return a table", path)
	}

	rules := base
	if board, ok := tbl.RawGetString("board").(*lua.LTable); ok {
		rules.Width = getLuaInt(board, "width", rules.Width)
		rules.Height = getLuaInt(board, "height", rules.Height)
	}
	if gravity, ok := tbl.RawGetString("gravity").(*lua.LTable); ok {
		rules.BaseInterval = getLuaMillis(gravity, "base_ms", rules.BaseInterval)
		rules.IntervalStep = getLuaMillis(gravity, "step_ms", rules.IntervalStep)
		rules.MinInterval = getLuaMillis(gravity, "min_ms", rules.MinInterval)
	}
	if scoring, ok := tbl.RawGetString("scoring").(*lua.LTable); ok {
		rules.LineClearPoints = getLuaInt(scoring, "line_clear", rules.LineClearPoints)
		rules.SoftDropPoints = getLuaInt(scoring, "soft_drop", rules.SoftDropPoints)
		rules.HardDropPoints = getLuaInt(scoring, "hard_drop", rules.HardDropPoints)
		rules.LinesPerLevel = getLuaInt(scoring, "lines_per_level", rules.LinesPerLevel)
	}

	if err := rules.Validate(); err != nil {
		return base, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

func getLuaInt(tbl *lua.LTable, key string, fallback int) int {
	if num, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return int(num)
	}
	return fallback
}

func getLuaMillis(tbl *lua.LTable, key string, fallback time.Duration) time.Duration {
	if num, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return time.Duration(float64(num) * float64(time.Millisecond))
	}
	return fallback
}

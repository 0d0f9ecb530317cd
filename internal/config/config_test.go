package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaacjstriker/notris/games/tetris"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "APP_NAME", "DEBUG", "SERVER_PORT", "SERVER_HOST", "RULES_SCRIPT", "SESSION_FILE", "SCORE_FILE"} {
		t.Setenv(key, "")
	}
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "notris.db", cfg.DatabaseURL)
	assert.Equal(t, "Notris", cfg.AppName)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "localhost:8080", cfg.Addr())
	assert.Equal(t, "rules.lua", cfg.RulesScript)
	assert.Equal(t, "secret", cfg.JWTSecret)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DEBUG", "true")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("DATABASE_URL", "postgres://localhost/notris")

	cfg, err := load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
	assert.Equal(t, "postgres://localhost/notris", cfg.DatabaseURL)
}

func TestLoadGeneratesSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	envFile := filepath.Join(t.TempDir(), ".env")

	cfg, err := load(envFile)
	require.NoError(t, err)
	require.NotEmpty(t, cfg.JWTSecret)

	data, err := os.ReadFile(envFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "JWT_SECRET="+cfg.JWTSecret)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.lua")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadRules(t *testing.T) {
	path := writeScript(t, `
return {
  board = { width = 12 },
  gravity = { base_ms = 800, min_ms = 50 },
  scoring = { line_clear = 40, lines_per_level = 5 },
}`)

	rules, err := LoadRules(path, tetris.DefaultRules())
	require.NoError(t, err)

	assert.Equal(t, 12, rules.Width)
	assert.Equal(t, 20, rules.Height)
	assert.Equal(t, 800*time.Millisecond, rules.BaseInterval)
	assert.Equal(t, 100*time.Millisecond, rules.IntervalStep)
	assert.Equal(t, 50*time.Millisecond, rules.MinInterval)
	assert.Equal(t, 40, rules.LineClearPoints)
	assert.Equal(t, 5, rules.LinesPerLevel)
	assert.Equal(t, 1, rules.SoftDropPoints)
	assert.Equal(t, 2, rules.HardDropPoints)
}

func TestLoadRulesMissingFile(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "nope.lua"), tetris.DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, tetris.DefaultRules(), rules)
}

func TestLoadRulesErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"syntax error", `return {`},
		{"not a table", `return 42`},
		{"invalid rules", `return { board = { width = 2 } }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, err := LoadRules(writeScript(t, tt.script), tetris.DefaultRules())
			assert.Error(t, err)
			assert.Equal(t, tetris.DefaultRules(), rules)
		})
	}
}

func TestShippedRulesMatchDefaults(t *testing.T) {
	rules, err := LoadRules(filepath.Join("..", "..", "rules.lua"), tetris.DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, tetris.DefaultRules(), rules)
}

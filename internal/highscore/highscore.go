// Package highscore provides the places a player's best score can live:
// the database for registered players and guests on the server, a JSON
// file for offline terminal play, and memory for tests.
package highscore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/isaacjstriker/notris/games/tetris"
	"github.com/isaacjstriker/notris/internal/database"
)

var (
	_ tetris.HighScoreStore = (*DBStore)(nil)
	_ tetris.HighScoreStore = (*FileStore)(nil)
	_ tetris.HighScoreStore = (*MemoryStore)(nil)
)

// DBStore keeps one user's high score in the high_scores table.
type DBStore struct {
	DB     *database.DB
	UserID int
}

func (s *DBStore) LoadHighScore(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	hs, err := s.DB.GetHighScore(s.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return hs.Score, nil
}

func (s *DBStore) SaveHighScore(ctx context.Context, rec tetris.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	level := rec.Level
	if level < 1 {
		level = 1
	}
	_, err := s.DB.UpsertHighScore(s.UserID, rec.Score, rec.Lines, level)
	return err
}

// FileStore keeps the high score in a small JSON document.
type FileStore struct {
	Path string
	mu   sync.Mutex
}

type fileRecord struct {
	HighScore int `json:"high_score"`
}

func (s *FileStore) LoadHighScore(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", s.Path, err)
	}
	return rec.HighScore, nil
}

// SaveHighScore replaces the file atomically so a crash mid-write cannot
// lose the previous best.
func (s *FileStore) SaveHighScore(ctx context.Context, rec tetris.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(fileRecord{HighScore: rec.Score})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".highscore-*")
	if err != nil {
		return fmt.Errorf("failed to save high score: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save high score: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save high score: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to save high score: %w", err)
	}
	return nil
}

// MemoryStore holds the high score for the life of the process.
type MemoryStore struct {
	mu    sync.Mutex
	score int
}

func NewMemoryStore(initial int) *MemoryStore {
	return &MemoryStore{score: initial}
}

func (s *MemoryStore) LoadHighScore(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score, nil
}

func (s *MemoryStore) SaveHighScore(ctx context.Context, rec tetris.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.Score > s.score {
		s.score = rec.Score
	}
	return nil
}

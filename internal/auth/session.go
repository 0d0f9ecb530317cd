package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
)

// Session is the logged-in player of the terminal client.
type Session struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SessionManager keeps the terminal session in a file between runs.
type SessionManager struct {
	sessionFile string
	current     *Session
}

func NewSessionManager(sessionFile string) *SessionManager {
	sm := &SessionManager{sessionFile: sessionFile}
	if err := sm.LoadSession(); err != nil {
		log.Printf("[DEBUG] Failed to load previous session: %v", err)
	}
	return sm
}

func (sm *SessionManager) SaveSession(userID int, username, email string) error {
	sm.current = &Session{
		UserID:   userID,
		Username: username,
		Email:    email,
	}

	data, err := json.Marshal(sm.current)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(sm.sessionFile, data, 0600); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession reads the session file. A missing file leaves the player
// logged out.
func (sm *SessionManager) LoadSession() error {
	data, err := os.ReadFile(sm.sessionFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}
	sm.current = &session
	return nil
}

func (sm *SessionManager) Current() *Session {
	return sm.current
}

func (sm *SessionManager) IsLoggedIn() bool {
	return sm.current != nil
}

func (sm *SessionManager) ClearSession() error {
	sm.current = nil
	if err := os.Remove(sm.sessionFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// UserInfo describes the session for menus.
func (sm *SessionManager) UserInfo() string {
	if sm.current == nil {
		return "Not logged in"
	}
	return fmt.Sprintf("Logged in as: %s (%s)", sm.current.Username, sm.current.Email)
}

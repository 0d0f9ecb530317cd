package database

import (
	"fmt"
	"log"
)

// SeedDemoData fills an empty database with a few players and their best
// games. The demo accounts have placeholder password hashes and cannot log in.
func (db *DB) SeedDemoData() error {
	// Only create demo data if no users exist
	var userCount int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&userCount); err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}
	if userCount > 0 {
		log.Println("[INFO] Users already exist, skipping demo data")
		return nil
	}

	log.Println("[INFO] Creating demo data...")

	demo := []struct {
		username string
		email    string
		score    int
		lines    int
		level    int
	}{
		{"speedster", "speedster@example.com", 8500, 25, 3},
		{"stacker", "stacker@example.com", 15000, 50, 6},
		{"quickfingers", "quick@example.com", 4200, 14, 2},
		{"gamemaster", "master@example.com", 22100, 71, 8},
		{"challenger", "challenger@example.com", 1300, 4, 1},
	}

	for _, d := range demo {
		user, err := db.CreateUser(d.username, d.email, "demo-account-no-login")
		if err != nil {
			return fmt.Errorf("failed to create demo user %s: %w", d.username, err)
		}
		if _, err := db.UpsertHighScore(user.ID, d.score, d.lines, d.level); err != nil {
			return fmt.Errorf("failed to create high score for %s: %w", d.username, err)
		}
		log.Printf("[INFO] Created user %s (ID: %d) with high score %d", d.username, user.ID, d.score)
	}

	return nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("already exists")
)

// GuestUserID owns the high score of players who are not logged in.
const GuestUserID = 0

type DB struct {
	conn   *sql.DB
	dbType string // "postgres" or "sqlite3"
}

type User struct {
	ID        int        `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}

// HighScore is a player's best finished or in-progress game.
type HighScore struct {
	UserID    int       `json:"user_id"`
	Score     int       `json:"score"`
	Lines     int       `json:"lines"`
	Level     int       `json:"level"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Connect opens PostgreSQL for postgres:// URLs and SQLite for anything
// else (a file path or file: URL).
func Connect(dbURL string) (*DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	driverName := "sqlite3"
	if strings.HasPrefix(dbURL, "postgres://") || strings.HasPrefix(dbURL, "postgresql://") {
		driverName = "postgres"
	}

	conn, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if driverName == "sqlite3" {
		// SQLite allows one writer; serialising avoids "database is locked".
		conn.SetMaxOpenConns(1)
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("[INFO] Successfully connected to %s database.", driverName)
	return &DB{conn: conn, dbType: driverName}, nil
}

// CreateTables creates the necessary database tables
func (db *DB) CreateTables() error {
	var queries []string

	if db.dbType == "postgres" {
		queries = []string{
			`CREATE TABLE IF NOT EXISTS users (
				id SERIAL PRIMARY KEY,
				username VARCHAR(50) UNIQUE NOT NULL,
				email VARCHAR(100) UNIQUE NOT NULL,
				password_hash VARCHAR(255) NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				last_login TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS high_scores (
				user_id INTEGER PRIMARY KEY,
				score INTEGER NOT NULL DEFAULT 0,
				lines INTEGER NOT NULL DEFAULT 0,
				level INTEGER NOT NULL DEFAULT 1,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_high_scores_score ON high_scores(score DESC)`,
		}
	} else {
		queries = []string{
			`CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT UNIQUE NOT NULL,
				email TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				last_login DATETIME
			)`,
			`CREATE TABLE IF NOT EXISTS high_scores (
				user_id INTEGER PRIMARY KEY,
				score INTEGER NOT NULL DEFAULT 0,
				lines INTEGER NOT NULL DEFAULT 0,
				level INTEGER NOT NULL DEFAULT 1,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_high_scores_score ON high_scores(score DESC)`,
		}
	}

	for _, query := range queries {
		if _, err := db.conn.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL.
func (db *DB) rebind(query string) string {
	if db.dbType != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CreateUser creates a new user in the database
func (db *DB) CreateUser(username, email, passwordHash string) (*User, error) {
	var id int64
	if db.dbType == "postgres" {
		err := db.conn.QueryRow(
			"INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id",
			username, email, passwordHash,
		).Scan(&id)
		if err != nil {
			return nil, wrapInsertError(err)
		}
	} else {
		result, err := db.conn.Exec(
			"INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)",
			username, email, passwordHash,
		)
		if err != nil {
			return nil, wrapInsertError(err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return nil, fmt.Errorf("failed to get user ID: %w", err)
		}
	}

	return &User{
		ID:        int(id),
		Username:  username,
		Email:     email,
		CreatedAt: time.Now(),
	}, nil
}

func wrapInsertError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("failed to create user: %w", ErrDuplicate)
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("failed to create user: %w", ErrDuplicate)
	}
	return fmt.Errorf("failed to create user: %w", err)
}

// GetUserByUsername retrieves a user and their password hash.
func (db *DB) GetUserByUsername(username string) (*User, string, error) {
	query := db.rebind(`
		SELECT id, username, email, password_hash, created_at, last_login
		FROM users WHERE username = ?
	`)

	var user User
	var passwordHash string
	err := db.conn.QueryRow(query, username).Scan(
		&user.ID, &user.Username, &user.Email, &passwordHash,
		&user.CreatedAt, &user.LastLogin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	return &user, passwordHash, nil
}

// TouchLogin records a successful login.
func (db *DB) TouchLogin(userID int) error {
	_, err := db.conn.Exec(db.rebind("UPDATE users SET last_login = ? WHERE id = ?"), time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// GetHighScore returns the stored best for userID, or ErrNotFound.
func (db *DB) GetHighScore(userID int) (*HighScore, error) {
	query := db.rebind(`
		SELECT user_id, score, lines, level, updated_at
		FROM high_scores WHERE user_id = ?
	`)

	var hs HighScore
	err := db.conn.QueryRow(query, userID).Scan(&hs.UserID, &hs.Score, &hs.Lines, &hs.Level, &hs.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("high score for user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get high score: %w", err)
	}
	return &hs, nil
}

// UpsertHighScore stores score for userID unless a higher one is already
// recorded. It reports whether the row changed.
func (db *DB) UpsertHighScore(userID, score, lines, level int) (bool, error) {
	query := db.rebind(`
		INSERT INTO high_scores (user_id, score, lines, level, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			score = excluded.score,
			lines = excluded.lines,
			level = excluded.level,
			updated_at = excluded.updated_at
		WHERE excluded.score > high_scores.score
	`)

	result, err := db.conn.Exec(query, userID, score, lines, level, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to save high score: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to save high score: %w", err)
	}
	return n > 0, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Version reports the driver and server version.
func (db *DB) Version() (string, error) {
	query := "SELECT sqlite_version()"
	if db.dbType == "postgres" {
		query = "SELECT version()"
	}
	var version string
	if err := db.conn.QueryRow(query).Scan(&version); err != nil {
		return "", fmt.Errorf("failed to query version: %w", err)
	}
	return db.dbType + " " + version, nil
}

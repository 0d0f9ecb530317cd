package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	AppName     string
	Debug       bool
	JWTSecret   string
	ServerPort  int
	ServerHost  string
	RulesScript string
	SessionFile string
	ScoreFile   string
}

// Addr is the listen address for the game server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	return load(".env")
}

func load(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		log.Println("[INFO] No .env file found, reading from environment")
	}

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", "notris.db"),
		AppName:     getEnv("APP_NAME", "Notris"),
		Debug:       getEnvAsBool("DEBUG", false),
		ServerPort:  getEnvAsInt("SERVER_PORT", 8080),
		ServerHost:  getEnv("SERVER_HOST", "localhost"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		RulesScript: getEnv("RULES_SCRIPT", "rules.lua"),
		SessionFile: getEnv("SESSION_FILE", ".notris_session"),
		ScoreFile:   getEnv("SCORE_FILE", ".notris_highscore.json"),
	}

	if cfg.JWTSecret == "" {
		secret, err := generateSecret(envFile)
		if err != nil {
			return nil, err
		}
		cfg.JWTSecret = secret
	}

	return cfg, nil
}

// generateSecret creates a JWT signing key and appends it to envFile so the
// next start reuses it. Tokens issued before a failed write stop working on
// restart, which is the only consequence.
func generateSecret(envFile string) (string, error) {
	newKey := make([]byte, 32)
	if _, err := rand.Read(newKey); err != nil {
		return "", fmt.Errorf("failed to generate a new JWT key: %w", err)
	}
	encodedKey := base64.StdEncoding.EncodeToString(newKey)

	f, err := os.OpenFile(envFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		log.Printf("[WARN] JWT_SECRET is not set and %s could not be opened (%v); using a temporary secret", envFile, err)
		return encodedKey, nil
	}
	defer f.Close()

	if _, err := f.WriteString(fmt.Sprintf("\nJWT_SECRET=%s\n", encodedKey)); err != nil {
		log.Printf("[WARN] Failed to save JWT_SECRET to %s: %v", envFile, err)
		return encodedKey, nil
	}
	log.Printf("[SETUP] JWT_SECRET was missing. A new secret has been generated and saved to %s", envFile)
	return encodedKey, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

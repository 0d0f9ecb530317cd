package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/isaacjstriker/notris/internal/auth"
	"github.com/isaacjstriker/notris/internal/database"
)

type RegisterUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the token the game websocket expects.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (s *APIServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid request body"})
		return
	}

	for _, validate := range []func() error{
		func() error { return auth.ValidateUsername(req.Username) },
		func() error { return auth.ValidateEmail(req.Email) },
		func() error { return auth.ValidatePassword(req.Password) },
	} {
		if err := validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
			return
		}
	}

	user, err := auth.Register(s.db, req.Username, req.Email, req.Password)
	if errors.Is(err, auth.ErrUserExists) {
		writeJSON(w, http.StatusConflict, apiError{Error: err.Error()})
		return
	}
	if err != nil {
		log.Printf("[ERROR] Failed to create user: %v", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "failed to create user"})
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (s *APIServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid request body"})
		return
	}

	user, err := auth.Authenticate(s.db, req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		permissionDenied(w)
		return
	}
	if err != nil {
		log.Printf("[ERROR] Login failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "login failed"})
		return
	}

	if err := s.db.TouchLogin(user.ID); err != nil {
		log.Printf("[WARN] %v", err)
	}

	token, err := auth.IssueToken(user.ID, user.Username, s.config.JWTSecret)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "failed to create token"})
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Username: user.Username})
}

// handleGetHighScore returns the caller's best game.
func (s *APIServer) handleGetHighScore(w http.ResponseWriter, r *http.Request) {
	claims, _ := GetUserFromContext(r.Context())

	hs, err := s.db.GetHighScore(claims.UserID)
	if errors.Is(err, database.ErrNotFound) {
		writeJSON(w, http.StatusOK, database.HighScore{UserID: claims.UserID, Level: 1})
		return
	}
	if err != nil {
		log.Printf("[ERROR] Failed to load high score for user %d: %v", claims.UserID, err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "failed to load high score"})
		return
	}
	writeJSON(w, http.StatusOK, hs)
}

package api

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/isaacjstriker/notris/games/tetris"
	"github.com/isaacjstriker/notris/internal/config"
	"github.com/isaacjstriker/notris/internal/database"
)

// APIServer serves accounts over HTTP and game sessions over websockets.
type APIServer struct {
	listenAddr string
	db         *database.DB
	config     *config.Config
	rules      tetris.Rules

	// pieces, when set, deals the pieces of every new game.
	pieces func() tetris.PieceSource
}

func NewAPIServer(cfg *config.Config, db *database.DB, rules tetris.Rules) *APIServer {
	return &APIServer{
		listenAddr: cfg.Addr(),
		db:         db,
		config:     cfg,
		rules:      rules,
	}
}

// Handler returns the router with every route registered.
func (s *APIServer) Handler() http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", s.handleHealth)

	router.HandleFunc("POST /api/register", s.handleRegister)
	router.HandleFunc("POST /api/login", s.handleLogin)
	router.HandleFunc("GET /api/highscore", requireAuth(s, s.handleGetHighScore))

	router.HandleFunc("GET /ws/game", s.handleGameConnection)

	return logRequests(s.config.Debug, router)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *APIServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("[INFO] API server listening on %s", s.listenAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Println("[INFO] Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		log.Printf("[ERROR] Health check failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, apiError{Error: "database unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

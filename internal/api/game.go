package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/isaacjstriker/notris/games/tetris"
	"github.com/isaacjstriker/notris/internal/auth"
	"github.com/isaacjstriker/notris/internal/database"
	"github.com/isaacjstriker/notris/internal/highscore"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// clientMessage is what the browser sends: {"type":"input","key":"left"}.
type clientMessage struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

// serverMessage is a state push, the end of a game or a rejected input.
type serverMessage struct {
	Type  string           `json:"type"`
	State *tetris.Snapshot `json:"state,omitempty"`
	Score *int             `json:"score,omitempty"`
	Error string           `json:"error,omitempty"`
}

// gameSession is one player's game over one websocket connection.
type gameSession struct {
	conn   *websocket.Conn
	ctrl   *tetris.Controller
	player string
	notes  chan serverMessage
}

// handleGameConnection starts a game for the player identified by the
// token query parameter, or for the shared guest account without one.
func (s *APIServer) handleGameConnection(w http.ResponseWriter, r *http.Request) {
	userID, player := database.GuestUserID, "guest"
	if token := r.URL.Query().Get("token"); token != "" {
		claims, err := auth.ParseToken(token, s.config.JWTSecret)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, apiError{Error: "invalid token"})
			return
		}
		userID, player = claims.UserID, claims.Username
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WARN] Failed to upgrade connection: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	store := &highscore.DBStore{DB: s.db, UserID: userID}
	var opts []tetris.Option
	if s.pieces != nil {
		opts = append(opts, tetris.WithPieceSource(s.pieces()))
	}
	ctrl, err := tetris.NewController(ctx, s.rules, store, opts...)
	if err != nil {
		log.Printf("[ERROR] Failed to start game for %s: %v", player, err)
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(serverMessage{Type: "error", Error: "failed to start game"}); err != nil {
			log.Printf("[WARN] WebSocket write error for %s: %v", player, err)
		}
		return
	}

	sess := &gameSession{
		conn:   conn,
		ctrl:   ctrl,
		player: player,
		notes:  make(chan serverMessage, 8),
	}
	log.Printf("[INFO] Game started for %s", player)

	go func() {
		if err := ctrl.Run(ctx); err != nil {
			log.Printf("[ERROR] Game loop for %s stopped: %v", player, err)
		}
	}()
	written := make(chan struct{})
	go func() {
		defer close(written)
		sess.writePump(ctx)
	}()

	sess.readPump(ctx)

	cancel()
	<-written
	<-ctrl.Done()
	log.Printf("[INFO] Game ended for %s with score %d", player, ctrl.Snapshot().Score)
}

// readPump turns client input into commands until the connection drops.
func (sess *gameSession) readPump(ctx context.Context) {
	sess.conn.SetReadLimit(maxMessageSize)
	sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		sess.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg clientMessage
		if err := sess.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WARN] WebSocket error for %s: %v", sess.player, err)
			}
			return
		}

		if msg.Type != "input" {
			sess.note(serverMessage{Type: "error", Error: "unknown message type " + msg.Type})
			continue
		}
		cmd, err := tetris.ParseCommand(msg.Key)
		if err != nil {
			sess.note(serverMessage{Type: "error", Error: err.Error()})
			continue
		}
		if _, err := sess.ctrl.Do(cmd); err != nil {
			return
		}
	}
}

// note queues a message for the writer, dropping it if the client is not
// keeping up.
func (sess *gameSession) note(msg serverMessage) {
	select {
	case sess.notes <- msg:
	default:
	}
}

// writePump is the only writer on the connection. It pushes every snapshot
// the controller publishes and announces each game over once.
func (sess *gameSession) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	over := false
	for {
		var msg serverMessage
		select {
		case <-ctx.Done():
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			sess.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case snap := <-sess.ctrl.Updates():
			if snap.GameOver && !over {
				if !sess.send(serverMessage{Type: "state", State: &snap}) {
					return
				}
				score := snap.Score
				msg = serverMessage{Type: "gameOver", Score: &score}
			} else {
				msg = serverMessage{Type: "state", State: &snap}
			}
			over = snap.GameOver

		case msg = <-sess.notes:

		case <-ticker.C:
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}

		if !sess.send(msg) {
			return
		}
	}
}

func (sess *gameSession) send(msg serverMessage) bool {
	sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := sess.conn.WriteJSON(msg); err != nil {
		log.Printf("[WARN] WebSocket write error for %s: %v", sess.player, err)
		return false
	}
	return true
}

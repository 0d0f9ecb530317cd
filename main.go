package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/isaacjstriker/notris/games/tetris"
	"github.com/isaacjstriker/notris/internal/api"
	"github.com/isaacjstriker/notris/internal/auth"
	"github.com/isaacjstriker/notris/internal/config"
	"github.com/isaacjstriker/notris/internal/database"
	"github.com/isaacjstriker/notris/internal/highscore"
	"github.com/isaacjstriker/notris/internal/terminal"
	"github.com/isaacjstriker/notris/ui"
)

const usage = `Usage: notris [command]

Commands:
  play       play in the terminal (default from the menu)
  serve      run the HTTP and websocket game server
  login      log in to save high scores to your account
  register   create an account
  logout     forget the saved login
  seed       fill an empty database with demo players
  dbcheck    check the database connection

Run without a command to open the menu.`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	if err := run(ctx, cfg, cmd); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, cmd string) error {
	switch cmd {
	case "":
		return showMenu(ctx, cfg)
	case "play":
		return play(ctx, cfg)
	case "serve":
		return serve(ctx, cfg)
	case "login", "register", "logout":
		return account(cfg, cmd)
	case "seed":
		return withDB(cfg, func(db *database.DB) error { return db.SeedDemoData() })
	case "dbcheck":
		return withDB(cfg, func(db *database.DB) error {
			version, err := db.Version()
			if err != nil {
				return err
			}
			fmt.Printf("Connected to %s\n", version)
			return nil
		})
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
}

func showMenu(ctx context.Context, cfg *config.Config) error {
	for {
		session := auth.NewSessionManager(cfg.SessionFile)
		menu := ui.NewMenu("Main Menu", []ui.MenuItem{
			{Label: "Play", Value: "play"},
			{Label: "Account", Value: "account"},
			{Label: "Quit", Value: ui.Exit},
		})
		menu.Subtitle = session.UserInfo()

		switch menu.Show() {
		case "play":
			if err := play(ctx, cfg); err != nil {
				fmt.Printf("Error: %v\n", err)
				ui.Pause()
			}
		case "account":
			err := withDB(cfg, func(db *database.DB) error {
				auth.NewCLIAuth(db, session).ShowAuthMenu()
				return nil
			})
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				ui.Pause()
			}
		default:
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// withDB opens the configured database for the duration of fn.
func withDB(cfg *config.Config, fn func(*database.DB) error) error {
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.CreateTables(); err != nil {
		return err
	}
	return fn(db)
}

func account(cfg *config.Config, cmd string) error {
	return withDB(cfg, func(db *database.DB) error {
		cli := auth.NewCLIAuth(db, auth.NewSessionManager(cfg.SessionFile))
		switch cmd {
		case "login":
			return cli.Login()
		case "register":
			return cli.Register()
		default:
			return cli.Logout()
		}
	})
}

// play runs a terminal game. Logged-in players keep their high score in the
// database; everyone else keeps it in a local file.
func play(ctx context.Context, cfg *config.Config) error {
	rules, err := config.LoadRules(cfg.RulesScript, tetris.DefaultRules())
	if err != nil {
		return err
	}

	// Log lines would tear the board, so they go to a file while playing.
	logFile, err := os.OpenFile("notris.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	} else {
		log.SetOutput(io.Discard)
	}
	defer log.SetOutput(os.Stderr)

	var store tetris.HighScoreStore = &highscore.FileStore{Path: cfg.ScoreFile}
	if session := auth.NewSessionManager(cfg.SessionFile).Current(); session != nil {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("logged in as %s but the database is unavailable: %w", session.Username, err)
		}
		defer db.Close()
		if err := db.CreateTables(); err != nil {
			return err
		}
		store = &highscore.DBStore{DB: db, UserID: session.UserID}
	}

	ctrl, err := tetris.NewController(ctx, rules, store)
	if err != nil {
		return err
	}

	err = terminal.Play(ctx, ctrl, os.Stdout, terminal.Renderer{Color: terminal.SupportsColor()})
	ui.ClearScreen()
	snap := ctrl.Snapshot()
	fmt.Printf("Final score: %d (lines %d, level %d). High score: %d\n", snap.Score, snap.Lines, snap.Level, snap.HighScore)
	if errors.Is(err, tetris.ErrStopped) {
		return nil
	}
	return err
}

func serve(ctx context.Context, cfg *config.Config) error {
	rules, err := config.LoadRules(cfg.RulesScript, tetris.DefaultRules())
	if err != nil {
		return err
	}
	return withDB(cfg, func(db *database.DB) error {
		return api.NewAPIServer(cfg, db, rules).Start(ctx)
	})
}

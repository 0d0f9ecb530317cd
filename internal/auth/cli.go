package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/isaacjstriker/notris/internal/database"
	"github.com/isaacjstriker/notris/ui"
)

// CLIAuth runs the login and registration prompts of the terminal client.
type CLIAuth struct {
	db      *database.DB
	session *SessionManager

	in           *bufio.Reader
	out          io.Writer
	readPassword func() (string, error)
}

func NewCLIAuth(db *database.DB, session *SessionManager) *CLIAuth {
	return &CLIAuth{
		db:      db,
		session: session,
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		readPassword: func() (string, error) {
			b, err := term.ReadPassword(int(os.Stdin.Fd()))
			return string(b), err
		},
	}
}

func (a *CLIAuth) Session() *SessionManager {
	return a.session
}

func (a *CLIAuth) readInput(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readSecret reads a password without echoing it.
func (a *CLIAuth) readSecret(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt)
	password, err := a.readPassword()
	fmt.Fprintln(a.out)
	return password, err
}

// Login prompts for credentials and stores the session on success.
func (a *CLIAuth) Login() error {
	fmt.Fprintln(a.out, "\nLogin to Your Account")
	fmt.Fprintln(a.out, "=====================")

	username, err := a.readInput("Username: ")
	if err != nil {
		return fmt.Errorf("reading username: %w", err)
	}
	password, err := a.readSecret("Password: ")
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	user, err := Authenticate(a.db, username, password)
	if err != nil {
		return err
	}
	if err := a.db.TouchLogin(user.ID); err != nil {
		fmt.Fprintf(a.out, "Warning: %v\n", err)
	}
	if err := a.session.SaveSession(user.ID, user.Username, user.Email); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome back, %s!\n", user.Username)
	return nil
}

// Register prompts for account details, creates the user and logs in.
func (a *CLIAuth) Register() error {
	fmt.Fprintln(a.out, "\nCreate New Account")
	fmt.Fprintln(a.out, "==================")

	username, err := a.readInput("Username (3-50 characters): ")
	if err != nil {
		return fmt.Errorf("reading username: %w", err)
	}
	if err := ValidateUsername(username); err != nil {
		return err
	}

	email, err := a.readInput("Email: ")
	if err != nil {
		return fmt.Errorf("reading email: %w", err)
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}

	password, err := a.readSecret("Password (8+ characters): ")
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	confirm, err := a.readSecret("Confirm Password: ")
	if err != nil {
		return fmt.Errorf("reading confirmation: %w", err)
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	user, err := Register(a.db, username, email, password)
	if err != nil {
		return err
	}
	if err := a.session.SaveSession(user.ID, user.Username, user.Email); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Account created successfully! Welcome, %s!\n", user.Username)
	return nil
}

// Logout forgets the stored session.
func (a *CLIAuth) Logout() error {
	var username string
	if s := a.session.Current(); s != nil {
		username = s.Username
	}
	if err := a.session.ClearSession(); err != nil {
		return err
	}
	if username != "" {
		fmt.Fprintf(a.out, "Goodbye, %s! You have been logged out.\n", username)
	} else {
		fmt.Fprintln(a.out, "You have been logged out.")
	}
	return nil
}

// ShowAuthMenu lets the player log in, register, switch account or log out.
func (a *CLIAuth) ShowAuthMenu() {
	for {
		var items []ui.MenuItem
		if a.session.IsLoggedIn() {
			items = []ui.MenuItem{
				{Label: a.session.UserInfo(), Value: "info"},
				{Label: "Switch Account", Value: "switch"},
				{Label: "Logout", Value: "logout"},
				{Label: "Back to Main Menu", Value: "back"},
			}
		} else {
			items = []ui.MenuItem{
				{Label: "Login", Value: "login"},
				{Label: "Register New Account", Value: "register"},
				{Label: "Continue as Guest", Value: "back"},
			}
		}

		var err error
		switch ui.NewMenu("Account", items).Show() {
		case "login":
			err = a.Login()
		case "register":
			err = a.Register()
		case "switch":
			if err = a.session.ClearSession(); err == nil {
				err = a.Login()
			}
		case "logout":
			err = a.Logout()
		case "info":
			fmt.Fprintln(a.out, a.session.UserInfo())
		default:
			return
		}
		if err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
		}
		ui.Pause()
	}
}

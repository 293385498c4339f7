// ABOUTME: Interactive REPL client running the stateful access mode in-process
// ABOUTME: Slash commands for users and contexts, plain lines append to the active context

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/tamelab/tame/internal/auth"
	"github.com/tamelab/tame/internal/config"
	"github.com/tamelab/tame/internal/ids"
	"github.com/tamelab/tame/internal/session"
	"github.com/tamelab/tame/internal/store"
)

var version = "dev"

const helpText = `Commands:
  /user create NAME      Create a user (prompts for password)
  /user login NAME       Log in (prompts for password)
  /user logout           Log out and revoke the token
  /whoami                Show the current user and active context
  /context create [TITLE] Create a context and make it active
  /context set ID        Switch to a context you own
  /context get           Show the active context
  /context list          List your contexts
  /context delete ID     Delete a context you own
  /history [N]           Show messages in the active context
  /quit                  Exit

Anything else is appended as a message to the active context.`

type repl struct {
	store store.Store
	svc   *auth.Service
	sess  *session.Session

	green  *color.Color
	yellow *color.Color
	red    *color.Color
	gray   *color.Color
}

func main() {
	configPath := flag.String("config", "", "path to gateway config (default: standard locations)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if configPath == "" {
		configPath = defaultConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The REPL is a local tool; keep its own logs quiet unless asked.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if os.Getenv("TAME_REPL_DEBUG") != "" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	var opts []auth.Option
	opts = append(opts, auth.WithAudit(st))
	if cfg.Auth.TokenBytes > 0 {
		opts = append(opts, auth.WithTokenBytes(cfg.Auth.TokenBytes))
	}
	svc := auth.NewService(auth.NewBcryptVerifier(st), st, st, logger, opts...)

	r := &repl{
		store:  st,
		svc:    svc,
		sess:   session.New(svc, logger),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
		gray:   color.New(color.FgHiBlack),
	}

	color.New(color.FgCyan).Printf("tame %s — type /help for commands\n", version)
	return r.loop(ctx, cfg)
}

func defaultConfigPath() string {
	if envPath := os.Getenv("TAME_CONFIG"); envPath != "" {
		return envPath
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "gateway.yaml"
		}
		configDir = homeDir + "/.config"
	}
	return configDir + "/tame/gateway.yaml"
}

func (r *repl) loop(ctx context.Context, cfg *config.Config) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for {
			r.printPrompt()
			if !sc.Scan() {
				return
			}
			lines <- sc.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			r.logoutQuietly(context.Background())
			return nil
		case line, ok := <-lines:
			if !ok {
				r.logoutQuietly(context.Background())
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "/quit" || line == "/exit" {
				r.logoutQuietly(ctx)
				return nil
			}
			r.dispatch(ctx, cfg, line)
		}
	}
}

func (r *repl) printPrompt() {
	user := r.sess.CurrentUser()
	if user == "" {
		r.gray.Print("(logged out) ")
	} else {
		r.green.Printf("%s", user)
		if c := r.sess.ActiveContext(); c != "" {
			r.gray.Printf("@%s", shortID(c))
		}
		fmt.Print(" ")
	}
	fmt.Print("> ")
}

func (r *repl) dispatch(ctx context.Context, cfg *config.Config, line string) {
	if !strings.HasPrefix(line, "/") {
		r.appendMessage(ctx, line)
		return
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/help":
		fmt.Println(helpText)
	case "/user":
		r.cmdUser(ctx, cfg, fields[1:])
	case "/whoami":
		r.cmdWhoami()
	case "/context":
		r.cmdContext(ctx, fields[1:])
	case "/history":
		r.cmdHistory(ctx, fields[1:])
	default:
		r.red.Printf("unknown command %s (try /help)\n", fields[0])
	}
}

func (r *repl) cmdUser(ctx context.Context, cfg *config.Config, args []string) {
	if len(args) == 0 {
		r.red.Println("usage: /user create|login|logout")
		return
	}

	switch args[0] {
	case "create":
		if len(args) < 2 {
			r.red.Println("usage: /user create NAME")
			return
		}
		username := args[1]
		password, ok := r.promptPassword("Password for " + username + ": ")
		if !ok {
			return
		}
		hash, err := auth.HashPassword(password, cfg.Auth.BcryptCost)
		if err != nil {
			r.red.Printf("hashing password: %v\n", err)
			return
		}
		err = r.store.CreateUser(ctx, &store.User{
			Username:     username,
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
		})
		if errors.Is(err, store.ErrUserExists) {
			r.red.Printf("user %s already exists\n", username)
			return
		}
		if err != nil {
			r.red.Printf("creating user: %v\n", err)
			return
		}
		r.green.Printf("created user %s\n", username)

	case "login":
		if len(args) < 2 {
			r.red.Println("usage: /user login NAME")
			return
		}
		username := args[1]
		password, ok := r.promptPassword("Password: ")
		if !ok {
			return
		}
		if err := r.sess.Login(ctx, username, password); err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				r.red.Println("invalid credentials")
				return
			}
			r.red.Printf("login failed: %v\n", err)
			return
		}
		r.green.Printf("logged in as %s\n", username)

	case "logout":
		if err := r.sess.Logout(ctx); err != nil {
			if errors.Is(err, auth.ErrNotAuthenticated) {
				r.yellow.Println("not logged in")
				return
			}
			r.red.Printf("logout failed: %v\n", err)
			return
		}
		r.green.Println("logged out")

	default:
		r.red.Printf("unknown subcommand /user %s\n", args[0])
	}
}

// cmdWhoami reads only the cached session state, nothing talks to the store.
func (r *repl) cmdWhoami() {
	if r.sess.State() != session.StateLoggedIn {
		r.yellow.Println("not logged in")
		return
	}
	fmt.Printf("user:    %s\n", r.sess.CurrentUser())
	if c := r.sess.ActiveContext(); c != "" {
		fmt.Printf("context: %s\n", c)
	} else {
		fmt.Println("context: (none)")
	}
}

func (r *repl) cmdContext(ctx context.Context, args []string) {
	if len(args) == 0 {
		r.red.Println("usage: /context create|set|get|list|delete")
		return
	}

	switch args[0] {
	case "create":
		user := r.sess.CurrentUser()
		if user == "" {
			r.yellow.Println("log in first")
			return
		}
		title := strings.Join(args[1:], " ")
		sc := &store.SessionContext{
			ID:        ids.NewContextID(time.Now(), title),
			Owner:     user,
			Title:     title,
			CreatedAt: time.Now().UTC(),
		}
		if err := r.store.CreateContext(ctx, sc); err != nil {
			r.red.Printf("creating context: %v\n", err)
			return
		}
		decision, err := r.sess.SwitchContext(ctx, sc.ID)
		if err != nil || !decision.IsGranted() {
			r.red.Printf("created %s but could not activate it\n", sc.ID)
			return
		}
		r.green.Printf("created and switched to %s\n", sc.ID)

	case "set":
		if len(args) < 2 {
			r.red.Println("usage: /context set ID")
			return
		}
		decision, err := r.sess.SwitchContext(ctx, args[1])
		if err != nil {
			r.red.Printf("switch failed: %v\n", err)
			return
		}
		if !decision.IsGranted() {
			switch decision.Reason() {
			case auth.ReasonNotAuthenticated:
				r.yellow.Println("log in first")
			case auth.ReasonUnknownContext:
				r.red.Println("no such context; you have been logged out")
			default:
				r.red.Println("that context belongs to another user; you have been logged out")
			}
			return
		}
		r.green.Printf("switched to %s\n", args[1])

	case "get":
		if c := r.sess.ActiveContext(); c != "" {
			fmt.Println(c)
		} else {
			r.yellow.Println("no active context")
		}

	case "list":
		user := r.sess.CurrentUser()
		if user == "" {
			r.yellow.Println("log in first")
			return
		}
		contexts, err := r.store.ListContexts(ctx, user)
		if err != nil {
			r.red.Printf("listing contexts: %v\n", err)
			return
		}
		if len(contexts) == 0 {
			fmt.Println("(no contexts)")
			return
		}
		active := r.sess.ActiveContext()
		for _, sc := range contexts {
			marker := "  "
			if sc.ID == active {
				marker = "* "
			}
			fmt.Printf("%s%s", marker, sc.ID)
			if sc.Title != "" {
				r.gray.Printf("  %s", sc.Title)
			}
			fmt.Println()
		}

	case "delete":
		if len(args) < 2 {
			r.red.Println("usage: /context delete ID")
			return
		}
		user := r.sess.CurrentUser()
		if user == "" {
			r.yellow.Println("log in first")
			return
		}
		id := args[1]
		owner, err := r.store.ContextOwner(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			r.red.Println("no such context")
			return
		}
		if err != nil {
			r.red.Printf("resolving context: %v\n", err)
			return
		}
		if owner != user {
			r.red.Println("that context belongs to another user")
			return
		}
		if err := r.store.DeleteContext(ctx, id); err != nil {
			r.red.Printf("deleting context: %v\n", err)
			return
		}
		if r.sess.ActiveContext() == id {
			// The active context is gone; drop back to "no context".
			r.sess.ClearActiveContext()
		}
		r.green.Printf("deleted %s\n", id)

	default:
		r.red.Printf("unknown subcommand /context %s\n", args[0])
	}
}

func (r *repl) cmdHistory(ctx context.Context, args []string) {
	identity, decision := r.sess.Require()
	if !decision.IsGranted() {
		r.requireHint(decision)
		return
	}

	limit := 0
	if len(args) > 0 {
		fmt.Sscanf(args[0], "%d", &limit)
	}

	messages, err := r.store.ListMessages(ctx, identity.ContextID, limit)
	if err != nil {
		r.red.Printf("listing messages: %v\n", err)
		return
	}
	for _, m := range messages {
		r.gray.Printf("%s ", m.CreatedAt.Local().Format("15:04:05"))
		r.green.Printf("%s: ", m.Sender)
		fmt.Println(m.Content)
	}
}

func (r *repl) appendMessage(ctx context.Context, content string) {
	identity, decision := r.sess.Require()
	if !decision.IsGranted() {
		r.requireHint(decision)
		return
	}

	msg := &store.Message{
		ID:        ids.NewMessageID(),
		ContextID: identity.ContextID,
		Sender:    identity.User,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.store.AppendMessage(ctx, msg); err != nil {
		r.red.Printf("appending message: %v\n", err)
		return
	}
	r.gray.Printf("→ %s\n", shortID(identity.ContextID))
}

func (r *repl) requireHint(decision auth.Decision) {
	switch decision.Reason() {
	case auth.ReasonUnknownContext:
		r.yellow.Println("no active context (use /context create or /context set)")
	default:
		r.yellow.Println("not logged in (use /user login NAME)")
	}
}

func (r *repl) promptPassword(label string) (string, bool) {
	fmt.Print(label)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		r.red.Printf("reading password: %v\n", err)
		return "", false
	}
	return string(password), true
}

func (r *repl) logoutQuietly(ctx context.Context) {
	if r.sess.State() == session.StateLoggedIn {
		_ = r.sess.Logout(ctx)
		fmt.Println("logged out")
	}
}

// shortID trims a context id for prompt display.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12] + "…"
}

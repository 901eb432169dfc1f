// hanu - terminal client for the Hanu.ai business assistant.
//
// Copyright (c) 2024-2025 Hanu.ai
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hanuai/hanu-tui/internal/admin"
	"github.com/hanuai/hanu-tui/internal/api"
	"github.com/hanuai/hanu-tui/internal/auth"
	"github.com/hanuai/hanu-tui/internal/cli"
	"github.com/hanuai/hanu-tui/internal/config"
	"github.com/hanuai/hanu-tui/internal/objstore"
	"github.com/hanuai/hanu-tui/internal/session"
	"github.com/hanuai/hanu-tui/internal/store"
	"github.com/hanuai/hanu-tui/internal/ui/shell"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file (default ~/.hanu/config.toml)")
		plain       = flag.Bool("plain", false, "run the line-mode chat instead of the TUI")
		signup      = flag.Bool("signup", false, "create a new account before signing in")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("hanu %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(*configPath, *plain, *signup); err != nil {
		fmt.Fprintln(os.Stderr, "hanu:", err)
		os.Exit(1)
	}
}

func run(configPath string, plain, signup bool) error {
	cfg, cfgPath, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, logClose, err := openLogger()
	if err != nil {
		return err
	}
	defer logClose()
	logger.Printf("hanu %s starting", Version)

	dbPath := cfg.Storage.DatabasePath
	if dbPath == "" {
		if dbPath, err = config.DefaultDatabasePath(); err != nil {
			return err
		}
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	authn := auth.New(st.DB(), cfg.Admin.RequireTOTP)
	user, err := signIn(authn, signup)
	if err != nil {
		return err
	}
	logger.Printf("signed in as %s", user.Email)

	actor := admin.NewActorFor(user.ID, user.Email, cfg.Admin.Users)

	client := api.NewClient(cfg.Backend.BaseURL).
		WithTimeout(time.Duration(cfg.Backend.TimeoutSecs) * time.Second).
		WithMaxRetries(cfg.Backend.MaxRetries)
	if cfg.Backend.RequestsPerMinute > 0 {
		client = client.WithRateLimit(cfg.Backend.RequestsPerMinute)
	}

	uploader := objstore.NewClient(cfg.Upload.Endpoint, cfg.Upload.PublicBaseURL, cfg.Upload.HostPattern)

	if plain {
		sess := session.New(client, st, cfg.UI.WelcomeText, logger)
		return cli.RunPlain(context.Background(), cli.Deps{
			Store:    st,
			Actor:    actor,
			Client:   client,
			Session:  sess,
			StateDir: filepath.Dir(dbPath),
			Logger:   logger,
		})
	}

	root := shell.New(shell.Deps{
		Config:   cfg,
		Store:    st,
		Auth:     authn,
		Actor:    actor,
		Client:   client,
		Uploader: uploader,
		Logger:   logger,
	})
	program := tea.NewProgram(root, tea.WithAltScreen())

	// Live-reload the config so allow-list or backend changes apply
	// without a restart.
	watcher, err := config.NewWatcher(cfgPath, func(next *config.Config) {
		program.Send(shell.ConfigChangedMsg{Config: next})
	})
	if err != nil {
		logger.Printf("config watch unavailable: %v", err)
	} else if err := watcher.Watch(); err != nil {
		logger.Printf("config watch: %v", err)
		watcher.Close()
	} else {
		defer watcher.Close()
	}

	_, err = program.Run()
	return err
}

func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, "", err
		}
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, nil
}

// openLogger writes to ~/.hanu/hanu.log; the TUI owns the terminal.
func openLogger() (*log.Logger, func(), error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil, err
	}
	dir := filepath.Join(home, ".hanu")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "hanu.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, err
	}
	logger := log.New(f, "", log.LstdFlags)
	log.SetOutput(f)
	return logger, func() { f.Close() }, nil
}

// signIn runs the terminal credential flow, including the optional TOTP
// second factor and the --signup path.
func signIn(authn *auth.Authenticator, signup bool) (*auth.User, error) {
	email, password, err := auth.PromptCredentials()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if signup {
		user, err := authn.SignUp(ctx, email, password)
		if err != nil {
			return nil, fmt.Errorf("sign up: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Account created.")
		return user, nil
	}

	user, err := authn.SignIn(ctx, email, password)
	if errors.Is(err, auth.ErrTOTPRequired) {
		code, perr := auth.PromptTOTP()
		if perr != nil {
			return nil, perr
		}
		return authn.VerifyTOTP(ctx, email, code)
	}
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return user, nil
}

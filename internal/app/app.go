// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app builds the process-wide object graph: one config, one logger,
// one API client, one session store and one auth manager shared by every
// command and view.
package app

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/parley/internal/api"
	"github.com/jeranaias/parley/internal/auth"
	"github.com/jeranaias/parley/internal/chat"
	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/locale"
	"github.com/jeranaias/parley/internal/logging"
	"github.com/jeranaias/parley/internal/ratelimit"
	"github.com/jeranaias/parley/internal/render"
	"github.com/jeranaias/parley/internal/session"
)

// Options controls how New builds the application.
type Options struct {
	// Config, when set, is used as is. Otherwise ConfigPath or the default
	// config directory is loaded.
	Config     *config.Config
	ConfigPath string

	// Verbose lowers the log level to debug.
	Verbose bool
	// Stderr, when set, receives warnings in addition to the log file.
	Stderr io.Writer
}

// App is the wired application.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	RunID   string
	Text    *locale.Printer
	Client  *api.Client
	Store   session.Store
	Tracker *ratelimit.Tracker
	Auth    *auth.Manager
	Chat    *chat.Controller
}

// New loads configuration and wires every component. The session is not
// restored yet; call Auth.Init.
func New(opts Options) (*App, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg, opts)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	store, err := session.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	text := locale.New(cfg.UI.Locale)
	client := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout()),
		api.WithLogger(logger.Named("api")),
	)
	tracker := ratelimit.NewTracker(client, logger.Named("ratelimit"))
	manager := auth.NewManager(store, tracker, client, logger.Named("auth"))
	controller := chat.NewController(manager, client, text, logger.Named("chat"))
	manager.Subscribe(func(s auth.State) {
		if s == auth.StateUnauthenticated {
			controller.Reset()
		}
	})

	logger.Debug("application wired",
		zap.String("base_url", cfg.API.BaseURL),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("locale", text.Tag().String()),
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		RunID:   runID,
		Text:    text,
		Client:  client,
		Store:   store,
		Tracker: tracker,
		Auth:    manager,
		Chat:    controller,
	}, nil
}

// NewRenderer creates a Markdown renderer following the UI settings.
func (a *App) NewRenderer(width int) (*render.Renderer, error) {
	style := a.Config.UI.Theme
	if style == "" {
		style = render.StyleAuto
	}
	if width <= 0 {
		width = a.Config.UI.WordWrap
	}
	return render.New(style, width)
}

// Close waits for background work and releases the store.
func (a *App) Close() error {
	a.Auth.Wait()
	err := a.Store.Close()
	_ = a.Logger.Sync()
	return err
}

func loadConfig(opts Options) (*config.Config, error) {
	if opts.Config != nil {
		return opts.Config, nil
	}
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	if opts.ConfigPath != "" {
		return config.LoadFromPath(opts.ConfigPath)
	}
	return config.Load()
}

func newLogger(cfg *config.Config, opts Options) (*zap.Logger, error) {
	file, err := cfg.LogFile()
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}

	logger, err := logging.New(logging.Options{
		File:       file,
		Level:      level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		Stderr:     opts.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

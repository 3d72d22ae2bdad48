// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/parley/internal/auth"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/session"
	"github.com/jeranaias/parley/internal/ui/chat"
	"github.com/jeranaias/parley/internal/ui/login"
	"github.com/jeranaias/parley/internal/ui/shell"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// WatchSession starts a watcher that re-syncs the auth manager when another
// process changes the stored session.
func (a *App) WatchSession(ctx context.Context) (*session.Watcher, error) {
	w, err := session.NewWatcher(a.Store, session.DefaultDebounce, func() {
		a.Auth.Sync(ctx)
	}, a.Logger.Named("watch"))
	if err != nil {
		return nil, err
	}
	w.Start()
	return w, nil
}

// RunTUI runs the full-screen interface until the user quits.
func (a *App) RunTUI(ctx context.Context) error {
	theme := styles.NewTheme(a.Config.UI.Theme)
	renderer, err := a.NewRenderer(0)
	if err != nil {
		return err
	}

	root := shell.New(ctx, a.Auth,
		login.New(ctx, a.Auth, theme, a.Text),
		chat.New(ctx, a.Chat, a.Auth, renderer, theme, a.Text),
		theme, a.Text)

	program := tea.NewProgram(root,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	// Observers run on worker goroutines; Send is safe from any of them
	a.Auth.Subscribe(func(s auth.State) {
		program.Send(shell.StateMsg{State: s})
	})
	a.Chat.Subscribe(func() {
		program.Send(chat.RefreshMsg{})
	})
	a.Tracker.OnChange(func(model.RateLimitStatus) {
		program.Send(chat.RefreshMsg{})
	})

	watcher, err := a.WatchSession(ctx)
	if err != nil {
		a.Logger.Warn("session watcher unavailable", zap.Error(err))
	} else {
		defer watcher.Close()
	}

	a.Logger.Info("tui started")
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

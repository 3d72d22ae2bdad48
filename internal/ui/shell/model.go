// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shell provides the root bubbletea model of the TUI. It selects the
// screen from the authentication state:
//
//	Initializing    → spinner + "Loading..."
//	Unauthenticated → login form
//	Authenticated   → chat view
package shell

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley/internal/auth"
	"github.com/jeranaias/parley/internal/locale"
	"github.com/jeranaias/parley/internal/ui/chat"
	"github.com/jeranaias/parley/internal/ui/login"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// StateMsg reports an authentication state change.
type StateMsg struct {
	State auth.State
}

// Manager is the part of auth.Manager the shell drives.
type Manager interface {
	Init(ctx context.Context)
	State() auth.State
}

// Model is the root model.
type Model struct {
	ctx     context.Context
	manager Manager
	theme   *styles.Theme
	text    *locale.Printer

	state   auth.State
	spinner spinner.Model
	login   login.Model
	chat    chat.Model

	width  int
	height int
}

// New creates the root model. The views are built by the caller so they
// share the application's controller and renderer.
func New(ctx context.Context, manager Manager, loginView login.Model, chatView chat.Model, theme *styles.Theme, text *locale.Printer) Model {
	return Model{
		ctx:     ctx,
		manager: manager,
		theme:   theme,
		text:    text,
		state:   auth.StateInitializing,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Spinner)),
		login:   loginView,
		chat:    chatView,
	}
}

// State returns the state the shell is currently showing.
func (m Model) State() auth.State {
	return m.state
}

// Init implements tea.Model. Session restore runs as a command so the
// spinner shows while it resolves.
func (m Model) Init() tea.Cmd {
	ctx, manager := m.ctx, m.manager
	restore := func() tea.Msg {
		manager.Init(ctx)
		return StateMsg{State: manager.State()}
	}
	return tea.Batch(m.spinner.Tick, restore, m.login.Init(), m.chat.Init())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		cmds = append(cmds, cmd)
		m.chat, cmd = m.chat.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case StateMsg:
		return m.setState(msg.State)

	case spinner.TickMsg:
		if m.state == auth.StateInitializing {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		// Login form owns the other spinner
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd

	case login.ResultMsg:
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd

	case chat.RefreshMsg, chat.SendDoneMsg, chat.LogoutDoneMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.state {
	case auth.StateUnauthenticated:
		m.login, cmd = m.login.Update(msg)
	case auth.StateAuthenticated:
		m.chat, cmd = m.chat.Update(msg)
	}
	return m, cmd
}

func (m Model) setState(state auth.State) (tea.Model, tea.Cmd) {
	// Initializing is left exactly once
	if state == auth.StateInitializing {
		return m, nil
	}
	prev := m.state
	m.state = state

	if state == auth.StateUnauthenticated && prev == auth.StateAuthenticated {
		m.login.Reset()
	}

	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(chat.RefreshMsg{})
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	switch m.state {
	case auth.StateInitializing:
		loading := m.spinner.View() + " " + m.text.T(locale.Loading)
		if m.width == 0 || m.height == 0 {
			return loading
		}
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, loading)
	case auth.StateUnauthenticated:
		return m.login.View()
	default:
		return m.chat.View()
	}
}

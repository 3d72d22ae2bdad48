// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	chatctl "github.com/jeranaias/parley/internal/chat"
	"github.com/jeranaias/parley/internal/locale"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/render"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// Layout constants.
const (
	headerHeight = 2 // title line + border
	inputHeight  = 4 // border + three text rows
	helpHeight   = 1

	minViewportHeight = 3
	defaultWidth      = 80
	defaultHeight     = 24
)

// Account is the part of the auth manager the view reads.
type Account interface {
	User() model.User
	RateLimit() model.RateLimitStatus
	Logout() error
}

// Model is the chat view.
type Model struct {
	ctx      context.Context
	ctrl     *chatctl.Controller
	account  Account
	renderer *render.Renderer
	theme    *styles.Theme
	text     *locale.Printer
	keys     KeyMap

	viewport viewport.Model
	input    textarea.Model

	width  int
	height int

	// Rendered messages keyed by ID; cleared when the width changes
	cache      map[uint64]string
	lastCount  int
	lastTyping bool
}

// New creates a chat view.
func New(ctx context.Context, ctrl *chatctl.Controller, account Account, renderer *render.Renderer, theme *styles.Theme, text *locale.Printer) Model {
	ta := textarea.New()
	ta.Placeholder = text.T(locale.InputHint)
	ta.ShowLineNumbers = false
	ta.Prompt = "> "
	ta.CharLimit = 0
	ta.SetHeight(inputHeight - 1)
	// Enter is handled by the view; Alt+Enter inserts newlines
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	m := Model{
		ctx:      ctx,
		ctrl:     ctrl,
		account:  account,
		renderer: renderer,
		theme:    theme,
		text:     text,
		keys:     DefaultKeyMap(),
		viewport: viewport.New(defaultWidth, defaultHeight-headerHeight-inputHeight-helpHeight),
		input:    ta,
		cache:    make(map[uint64]string),
	}
	m.SetSize(defaultWidth, defaultHeight)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// SetSize lays the view out for a terminal of the given size.
func (m *Model) SetSize(width, height int) {
	if width == m.width && height == m.height {
		return
	}
	m.width, m.height = width, height

	m.input.SetWidth(width)

	vpHeight := height - headerHeight - inputHeight - helpHeight
	if vpHeight < minViewportHeight {
		vpHeight = minViewportHeight
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight

	if m.renderer != nil {
		_ = m.renderer.SetWidth(m.bubbleWidth() - 4)
	}
	m.cache = make(map[uint64]string)
	m.refresh()
}

// InputDisabled reports whether the input should reject typing: a send is
// pending or the server reports no requests left.
func (m Model) InputDisabled() bool {
	return m.ctrl.InFlight() || m.account.RateLimit().Exhausted()
}

// Input returns the current input text.
func (m Model) Input() string {
	return m.input.Value()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case RefreshMsg, SendDoneMsg, LogoutDoneMsg:
		m.refresh()
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Logout):
		return m, LogoutCmd(m.account.Logout)

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Newline):
		if !m.InputDisabled() {
			m.input.InsertString("\n")
			m.ctrl.SetDraft(m.input.Value())
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	if m.InputDisabled() {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetDraft(m.input.Value())
	return m, cmd
}

// submit hands the input to the controller. The optimistic append happens
// inside SendMessage, which the redraw after the command picks up.
func (m Model) submit() (Model, tea.Cmd) {
	if m.InputDisabled() {
		return m, nil
	}
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}

	m.input.Reset()
	return m, SendCmd(m.ctx, m.ctrl, text)
}

// refresh re-renders the transcript and follows the bottom whenever the
// transcript or the typing indicator changed.
func (m *Model) refresh() {
	msgs := m.ctrl.Messages()
	typing := m.ctrl.Typing()

	// Transcript was reset; rendered entries of the old one are dead
	if len(msgs) < m.lastCount {
		m.cache = make(map[uint64]string)
	}

	m.viewport.SetContent(m.renderTranscript(msgs, typing))

	if len(msgs) != m.lastCount || typing != m.lastTyping {
		m.viewport.GotoBottom()
	}
	m.lastCount = len(msgs)
	m.lastTyping = typing

	if m.InputDisabled() {
		m.input.Blur()
	} else if !m.input.Focused() {
		m.input.Focus()
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login provides the sign-in / registration form of the TUI.
package login

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley/internal/api"
	"github.com/jeranaias/parley/internal/locale"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// Authenticator performs the sign-in. *auth.Manager implements it.
type Authenticator interface {
	LoginWithPassword(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, password string) error
}

// ResultMsg carries the outcome of a submit.
type ResultMsg struct {
	Err error
}

const (
	fieldEmail = iota
	fieldPassword
	fieldCount
)

// KeyMap defines the form's key bindings.
type KeyMap struct {
	Next       key.Binding
	Prev       key.Binding
	Submit     key.Binding
	SwitchMode key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:       key.NewBinding(key.WithKeys("tab", "down")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab", "up")),
		Submit:     key.NewBinding(key.WithKeys("enter")),
		SwitchMode: key.NewBinding(key.WithKeys("ctrl+r")),
	}
}

// Model is the login form.
type Model struct {
	ctx   context.Context
	authn Authenticator
	theme *styles.Theme
	text  *locale.Printer
	keys  KeyMap

	inputs   [fieldCount]textinput.Model
	focus    int
	register bool
	busy     bool
	err      string
	spinner  spinner.Model

	width  int
	height int
}

// New creates the form with the email field focused.
func New(ctx context.Context, authn Authenticator, theme *styles.Theme, text *locale.Printer) Model {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = ""
	email.CharLimit = 254
	email.Width = 40

	password := textinput.New()
	password.Prompt = ""
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.Width = 40

	m := Model{
		ctx:     ctx,
		authn:   authn,
		theme:   theme,
		text:    text,
		keys:    DefaultKeyMap(),
		inputs:  [fieldCount]textinput.Model{email, password},
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Spinner)),
	}
	m.setFocus(fieldEmail)
	return m
}

// Reset clears the form, keeping the chosen mode.
func (m *Model) Reset() {
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	m.busy = false
	m.err = ""
	m.setFocus(fieldEmail)
}

// SetError shows a message above the form, e.g. after a forced logout.
func (m *Model) SetError(msg string) {
	m.err = msg
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Busy reports whether a submit is pending.
func (m Model) Busy() bool {
	return m.busy
}

// Registering reports whether the form is in registration mode.
func (m Model) Registering() bool {
	return m.register
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case ResultMsg:
		m.busy = false
		if msg.Err != nil {
			m.err = m.describe(msg.Err)
			m.inputs[fieldPassword].Reset()
			m.setFocus(fieldPassword)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.SwitchMode):
			m.register = !m.register
			m.err = ""
			return m, nil
		case key.Matches(msg, m.keys.Next):
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			if m.focus == fieldEmail {
				m.setFocus(fieldPassword)
				return m, nil
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()
	if email == "" || password == "" {
		return m, nil
	}

	m.busy = true
	m.err = ""

	ctx, authn, register := m.ctx, m.authn, m.register
	do := func() tea.Msg {
		if register {
			return ResultMsg{Err: authn.Register(ctx, email, password)}
		}
		return ResultMsg{Err: authn.LoginWithPassword(ctx, email, password)}
	}
	return m, tea.Batch(do, m.spinner.Tick)
}

func (m *Model) setFocus(field int) {
	m.focus = field
	for i := range m.inputs {
		if i == field {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// describe turns a login failure into one line for the form.
func (m Model) describe(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if errors.Is(err, api.ErrUnauthorized) {
		return m.text.T(locale.SessionRejected)
	}
	return err.Error()
}

// View implements tea.Model.
func (m Model) View() string {
	title := m.text.T(locale.LoginTitle)
	if m.register {
		title = m.text.T(locale.RegisterTitle)
	}

	rows := []string{
		m.theme.FormTitle.Render(title),
		m.theme.FormLabel.Render(m.text.T(locale.EmailLabel)),
		m.inputs[fieldEmail].View(),
		"",
		m.theme.FormLabel.Render(m.text.T(locale.PasswordLabel)),
		m.inputs[fieldPassword].View(),
		"",
	}

	switch {
	case m.busy:
		rows = append(rows, m.spinner.View()+" "+m.text.T(locale.SigningIn))
	case m.err != "":
		rows = append(rows, m.theme.FormError.Render(m.err))
	default:
		rows = append(rows, m.theme.FormButton.Render("[ "+title+" ]"))
	}

	box := m.theme.FormBox.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	help := m.theme.Help.Render(m.text.T(locale.LoginHelp))
	content := lipgloss.JoinVertical(lipgloss.Center, box, "", help)

	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

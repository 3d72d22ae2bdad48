// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/parley/internal/api"
	chatctl "github.com/jeranaias/parley/internal/chat"
	"github.com/jeranaias/parley/internal/locale"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/render"
	"github.com/jeranaias/parley/internal/ui/styles"
)

type fakeAccount struct {
	mu      sync.Mutex
	rl      model.RateLimitStatus
	logouts int
}

func (a *fakeAccount) Token() string { return "tok" }

func (a *fakeAccount) User() model.User { return model.NewUser("a@b.c") }

func (a *fakeAccount) RateLimit() model.RateLimitStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rl
}

func (a *fakeAccount) RefreshRateLimit(context.Context) model.RateLimitStatus {
	return a.RateLimit()
}

func (a *fakeAccount) Logout() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logouts++
	return nil
}

func newTestView(t *testing.T, reply string) (Model, *chatctl.Controller, *fakeAccount) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)

	account := &fakeAccount{rl: model.DefaultRateLimit()}
	text := locale.New("en")
	ctrl := chatctl.NewController(account, api.NewClient(srv.URL), text, nil)

	renderer, err := render.New("dark", 60)
	require.NoError(t, err)

	m := New(context.Background(), ctrl, account, renderer, styles.NewTheme(styles.ModeDark), text)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, ctrl, account
}

// run executes a command and feeds its message back into the model.
func run(m Model, cmd tea.Cmd) Model {
	if cmd == nil {
		return m
	}
	m, _ = m.Update(cmd())
	return m
}

func typeText(m Model, s string) Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func TestView_WelcomeWhenEmpty(t *testing.T) {
	m, _, _ := newTestView(t, "hi")
	view := m.View()
	assert.Contains(t, view, "Welcome to AI Chat")
	assert.Contains(t, view, "Start a conversation by typing a message below.")
	assert.Contains(t, view, "a@b.c")
	assert.Contains(t, view, "0/10 messages used (10 left)")
}

func TestView_SendRoundTrip(t *testing.T) {
	m, ctrl, _ := newTestView(t, `"Hello **there**"`)

	m = typeText(m, "ping")
	assert.Equal(t, "ping", ctrl.Draft())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Empty(t, m.Input())

	m = run(m, cmd)
	msgs := ctrl.Messages()
	require.Len(t, msgs, 2)

	view := m.View()
	assert.Contains(t, view, "ping")
	assert.Contains(t, view, "there")
	assert.NotContains(t, view, "Welcome to AI Chat")
}

func TestView_BlankInputDoesNotSend(t *testing.T) {
	m, ctrl, _ := newTestView(t, "hi")
	m = typeText(m, "   ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, ctrl.Messages())
}

func TestView_MarkdownOnlyForAI(t *testing.T) {
	m, _, _ := newTestView(t, "")

	user := m.renderMessage(model.Message{ID: 1, Sender: model.SenderUser, Text: "**not bold**", Timestamp: "10:00"})
	assert.Contains(t, user, "**not bold**", "user text is shown literally")

	ai := m.renderMessage(model.Message{ID: 2, Sender: model.SenderAI, Text: "**bold**", Timestamp: "10:00"})
	assert.Contains(t, ai, "bold")
	assert.NotContains(t, ai, "**bold**", "ai text goes through the markdown renderer")
}

func TestView_UserTextKeepsLineBreaks(t *testing.T) {
	m, _, _ := newTestView(t, "")
	out := m.renderMessage(model.Message{ID: 1, Sender: model.SenderUser, Text: "line one\nline two"})

	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, "line") {
			lines = append(lines, l)
		}
	}
	assert.Len(t, lines, 2)
}

func TestView_DisabledWhenQuotaExhausted(t *testing.T) {
	m, ctrl, account := newTestView(t, "hi")
	account.rl = model.RateLimitStatus{Limit: 10, Used: 10, Remaining: 0}
	m, _ = m.Update(RefreshMsg{})

	assert.True(t, m.InputDisabled())
	assert.Contains(t, m.View(), "Daily limit reached")

	m = typeText(m, "ping")
	assert.Empty(t, m.Input())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, ctrl.Messages())
}

func TestView_NewlineKey(t *testing.T) {
	m, _, _ := newTestView(t, "hi")
	m = typeText(m, "a")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter, Alt: true})
	m = typeText(m, "b")
	assert.Equal(t, "a\nb", m.Input())
}

func TestView_LogoutKey(t *testing.T) {
	m, _, account := newTestView(t, "hi")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.IsType(t, LogoutDoneMsg{}, msg)
	assert.Equal(t, 1, account.logouts)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/parley/internal/api"
	"github.com/jeranaias/parley/internal/locale"
	"github.com/jeranaias/parley/internal/model"
)

// Session is the part of the auth manager the controller needs.
type Session interface {
	Token() string
	Logout() error
	RefreshRateLimit(ctx context.Context) model.RateLimitStatus
}

// Sender posts a chat message. *api.Client implements it.
type Sender interface {
	Chat(ctx context.Context, token, message string) (string, error)
}

// followUp is the work done after the in-flight flags are cleared.
type followUp int

const (
	followNone followUp = iota
	followRefresh
	followLogout
)

// Controller is the chat transcript plus the send state machine.
// It is safe for concurrent use.
type Controller struct {
	session Session
	sender  Sender
	text    *locale.Printer
	logger  *zap.Logger

	transcript *model.Transcript

	mu        sync.Mutex
	draft     string
	inFlight  bool
	typing    bool
	observers []func()
}

// NewController creates a controller with an empty transcript.
func NewController(session Session, sender Sender, text *locale.Printer, logger *zap.Logger) *Controller {
	if text == nil {
		text = locale.New("en")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		session:    session,
		sender:     sender,
		text:       text,
		logger:     logger,
		transcript: model.NewTranscript(),
	}
}

// =============================================================================
// SEND
// =============================================================================

// SendMessage relays text to the chat endpoint and blocks until the exchange
// settles. It returns false without touching the transcript or the network
// when text is blank, a send is already in flight, or there is no token.
func (c *Controller) SendMessage(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return false
	}
	token := c.session.Token()
	if token == "" {
		c.mu.Unlock()
		return false
	}
	c.inFlight = true
	c.typing = true
	c.draft = ""
	c.transcript.Append(model.SenderUser, text)
	c.mu.Unlock()
	c.notify()

	next := c.exchange(ctx, token, text)
	c.notify()

	switch next {
	case followRefresh:
		c.session.RefreshRateLimit(ctx)
	case followLogout:
		c.logger.Info("chat token rejected, logging out")
		_ = c.session.Logout()
	}
	return true
}

// exchange performs the request and appends its outcome. The in-flight and
// typing flags are cleared on every path, including panics.
func (c *Controller) exchange(ctx context.Context, token, text string) (next followUp) {
	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.typing = false
		c.mu.Unlock()
	}()

	reply, err := c.sender.Chat(ctx, token, text)

	// The session ended or changed while the request was out
	if c.session.Token() != token {
		c.logger.Debug("discarding chat outcome for a replaced session", zap.Error(err))
		return followNone
	}

	switch {
	case err == nil:
		c.transcript.Append(model.SenderAI, NormalizeReply(reply, c.text.T(locale.ReplyFallback)))
		return followRefresh

	case errors.Is(err, api.ErrUnauthorized):
		return followLogout

	case errors.Is(err, api.ErrRateLimited):
		c.logger.Info("daily chat limit reached")
		c.transcript.Append(model.SenderAI, c.text.T(locale.DailyLimit))
		return followRefresh

	default:
		c.logger.Warn("chat request failed", zap.Error(err))
		c.transcript.Append(model.SenderAI, c.text.T(locale.ErrorTryAgain, err.Error()))
		return followNone
	}
}

// NormalizeReply cleans a raw chat body for Markdown rendering: one leading
// and one trailing double quote are stripped, then each literal backslash-n
// becomes a newline. An empty result is replaced by fallback.
func NormalizeReply(body, fallback string) string {
	body = strings.TrimPrefix(body, `"`)
	body = strings.TrimSuffix(body, `"`)
	body = strings.ReplaceAll(body, `\n`, "\n")
	if body == "" {
		return fallback
	}
	return body
}

// =============================================================================
// DRAFT
// =============================================================================

// SetDraft replaces the input buffer.
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	c.draft = text
	c.mu.Unlock()
}

// Draft returns the input buffer.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Submit sends the current draft.
func (c *Controller) Submit(ctx context.Context) bool {
	return c.SendMessage(ctx, c.Draft())
}

// Reset empties the transcript and the draft. It runs when the session ends
// so the next user starts with a blank conversation.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.draft = ""
	c.transcript.Clear()
	c.mu.Unlock()
	c.notify()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Messages returns the transcript in append order.
func (c *Controller) Messages() []model.Message {
	return c.transcript.Messages()
}

// InFlight reports whether a send is awaiting its response.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Typing reports whether the typing indicator should be shown.
func (c *Controller) Typing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing
}

// Subscribe registers fn to run whenever the transcript or flags change.
func (c *Controller) Subscribe(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

func (c *Controller) notify() {
	c.mu.Lock()
	observers := append([]func(){}, c.observers...)
	c.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}

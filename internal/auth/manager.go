// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/parley/internal/api"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/ratelimit"
	"github.com/jeranaias/parley/internal/session"
	"github.com/jeranaias/parley/internal/util"
)

// =============================================================================
// STATE
// =============================================================================

// State is the authentication state of the process.
type State int

const (
	StateInitializing State = iota
	StateUnauthenticated
	StateAuthenticated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidSession indicates Login was called without a user or token.
var ErrInvalidSession = errors.New("login requires a user record and a token")

// Authenticator exchanges credentials for a session. *api.Client implements it.
type Authenticator interface {
	Login(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error)
	Register(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error)
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager holds the current session and keeps store, tracker and observers
// consistent with it. It is safe for concurrent use.
type Manager struct {
	store   session.Store
	tracker *ratelimit.Tracker
	authn   Authenticator
	logger  *zap.Logger

	mu        sync.RWMutex
	state     State
	session   model.Session
	loggingIn int
	listeners []func(State)

	initOnce sync.Once
	bg       sync.WaitGroup
}

// NewManager creates a manager in StateInitializing and takes over the
// tracker's unauthorized hook.
func NewManager(store session.Store, tracker *ratelimit.Tracker, authn Authenticator, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		store:   store,
		tracker: tracker,
		authn:   authn,
		logger:  logger,
		state:   StateInitializing,
	}
	tracker.OnUnauthorized(m.RejectToken)
	return m
}

// Init restores a stored session. It runs once; later calls wait for the
// first to finish and return. A restored session is refreshed in the
// background, so Init never waits on the network.
func (m *Manager) Init(ctx context.Context) {
	m.initOnce.Do(func() {
		s, ok, err := m.store.Restore()
		if err != nil {
			m.logger.Warn("stored session unreadable, starting signed out", zap.Error(err))
			ok = false
		}

		if !ok {
			m.setState(StateUnauthenticated, model.Session{})
			return
		}

		m.logger.Info("session restored",
			zap.String("user", s.User.DisplayName()),
			zap.String("token_fp", util.Fingerprint(s.Token)),
		)
		m.setState(StateAuthenticated, s)
		m.refreshInBackground(ctx, s.Token)
	})
}

// Login persists the session, waits for the first rate-limit refresh and
// only then reports Authenticated. If that refresh is rejected with 401 the
// session is cleared and api.ErrUnauthorized is returned.
func (m *Manager) Login(ctx context.Context, user model.User, token string) error {
	s := model.Session{User: user, Token: token}
	if !s.Authenticated() {
		return ErrInvalidSession
	}

	m.mu.Lock()
	m.session = s
	m.loggingIn++
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.loggingIn--
		m.mu.Unlock()
	}()

	if err := m.store.Persist(s); err != nil {
		m.logger.Error("failed to persist session", zap.Error(err))
		m.mu.Lock()
		if m.session.Token == token {
			m.session = model.Session{}
		}
		m.mu.Unlock()
		return fmt.Errorf("failed to save session: %w", err)
	}

	m.tracker.Refresh(ctx, token)

	m.mu.Lock()
	current := m.session.Token == token
	m.mu.Unlock()
	if !current {
		return api.ErrUnauthorized
	}

	m.logger.Info("logged in",
		zap.String("user", user.DisplayName()),
		zap.String("token_fp", util.Fingerprint(token)),
	)
	m.setState(StateAuthenticated, s)
	return nil
}

// LoginWithPassword calls the login endpoint and then Login.
func (m *Manager) LoginWithPassword(ctx context.Context, email, password string) error {
	resp, err := m.authn.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	return m.Login(ctx, resp.User, resp.Token)
}

// Register creates an account and logs in with the returned session.
func (m *Manager) Register(ctx context.Context, email, password string) error {
	resp, err := m.authn.Register(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	return m.Login(ctx, resp.User, resp.Token)
}

// Logout clears the session, both store slots and the cached rate limit.
// Calling it while signed out is harmless.
func (m *Manager) Logout() error {
	m.mu.Lock()
	wasAuthenticated := m.state == StateAuthenticated
	m.mu.Unlock()

	err := m.store.Clear()
	if err != nil {
		m.logger.Error("failed to clear stored session", zap.Error(err))
	}
	m.tracker.Reset()
	m.setState(StateUnauthenticated, model.Session{})

	if wasAuthenticated {
		m.logger.Info("logged out")
	}
	return err
}

// RejectToken logs out if token is still the current one. Rejections of a
// token that has since been replaced are ignored.
func (m *Manager) RejectToken(token string) {
	m.mu.RLock()
	current := token != "" && m.session.Token == token
	m.mu.RUnlock()

	if !current {
		return
	}
	m.logger.Warn("server rejected session token", zap.String("token_fp", util.Fingerprint(token)))
	_ = m.Logout()
}

// Sync re-reads the store after another process changed it. Slots cleared
// elsewhere log this process out; a different session written elsewhere is
// adopted.
func (m *Manager) Sync(ctx context.Context) {
	m.mu.RLock()
	state, current, busy := m.state, m.session, m.loggingIn > 0
	m.mu.RUnlock()

	if state == StateInitializing || busy {
		return
	}

	s, ok, err := m.store.Restore()
	if err != nil {
		m.logger.Warn("stored session unreadable during sync", zap.Error(err))
		ok = false
	}

	switch {
	case !ok && state == StateAuthenticated:
		m.logger.Info("session cleared by another process")
		m.tracker.Reset()
		m.setState(StateUnauthenticated, model.Session{})

	case ok && s.Token != current.Token:
		m.logger.Info("session replaced by another process",
			zap.String("user", s.User.DisplayName()),
			zap.String("token_fp", util.Fingerprint(s.Token)),
		)
		m.tracker.Reset()
		m.setState(StateAuthenticated, s)
		m.refreshInBackground(ctx, s.Token)
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Session returns the current session (zero when signed out).
func (m *Manager) Session() model.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Token returns the bearer token, or "".
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Token
}

// User returns the user record.
func (m *Manager) User() model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.User
}

// RateLimit returns the cached quota.
func (m *Manager) RateLimit() model.RateLimitStatus {
	return m.tracker.Status()
}

// RefreshRateLimit refreshes the quota for the current token.
func (m *Manager) RefreshRateLimit(ctx context.Context) model.RateLimitStatus {
	return m.tracker.Refresh(ctx, m.Token())
}

// Tracker returns the rate limit tracker.
func (m *Manager) Tracker() *ratelimit.Tracker {
	return m.tracker
}

// Subscribe registers fn to run after every state change. fn is called
// without the manager's lock held.
func (m *Manager) Subscribe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Wait blocks until background refreshes have finished.
func (m *Manager) Wait() {
	m.bg.Wait()
}

// =============================================================================
// INTERNALS
// =============================================================================

func (m *Manager) setState(state State, s model.Session) {
	m.mu.Lock()
	changed := m.state != state || m.session.Token != s.Token
	m.state = state
	m.session = s
	listeners := append([]func(State){}, m.listeners...)
	m.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range listeners {
		fn(state)
	}
}

// refreshInBackground is best-effort; a 401 reaches RejectToken via the
// tracker hook.
func (m *Manager) refreshInBackground(ctx context.Context, token string) {
	m.bg.Add(1)
	go func() {
		defer m.bg.Done()
		m.tracker.Refresh(context.WithoutCancel(ctx), token)
	}()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/parley/internal/api"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/ratelimit"
	"github.com/jeranaias/parley/internal/session"
)

// fakeServer is a minimal chat API with a configurable rate-limit response.
type fakeServer struct {
	mu            sync.Mutex
	rateStatus    int
	rateBody      string
	rateCalls     atomic.Int32
	loginResponse string
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(api.PathRateLimit, func(w http.ResponseWriter, r *http.Request) {
		f.rateCalls.Add(1)
		f.mu.Lock()
		status, body := f.rateStatus, f.rateBody
		f.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
		}
		_, _ = io.WriteString(w, body)
	})
	authHandler := func(w http.ResponseWriter, r *http.Request) {
		var creds api.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Invalid credentials"}`)
			return
		}
		_, _ = io.WriteString(w, f.loginResponse)
	}
	mux.HandleFunc(api.PathLogin, authHandler)
	mux.HandleFunc(api.PathRegister, authHandler)
	return mux
}

func (f *fakeServer) setRate(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rateStatus, f.rateBody = status, body
}

type harness struct {
	server  *fakeServer
	store   session.Store
	tracker *ratelimit.Tracker
	manager *Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fs := &fakeServer{
		rateBody:      `{"limit":10,"used":3,"remaining":7}`,
		loginResponse: `{"token":"tok-login","user":{"email":"a@b.c"}}`,
	}
	srv := httptest.NewServer(fs.handler(t))
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL)
	store := session.NewFileStore(t.TempDir())
	tracker := ratelimit.NewTracker(client, nil)
	return &harness{
		server:  fs,
		store:   store,
		tracker: tracker,
		manager: NewManager(store, tracker, client, nil),
	}
}

func storedSession(t *testing.T, store session.Store) (model.Session, bool) {
	t.Helper()
	s, ok, err := store.Restore()
	require.NoError(t, err)
	return s, ok
}

// =============================================================================
// INIT
// =============================================================================

func TestInit_NoStoredSession(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, StateInitializing, h.manager.State())

	h.manager.Init(context.Background())
	assert.Equal(t, StateUnauthenticated, h.manager.State())
	assert.Zero(t, h.server.rateCalls.Load())
}

func TestInit_RestoresAndRefreshes(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Persist(model.Session{User: model.NewUser("a@b.c"), Token: "tok-old"}))

	h.manager.Init(context.Background())
	assert.Equal(t, StateAuthenticated, h.manager.State())
	assert.Equal(t, "tok-old", h.manager.Token())

	h.manager.Wait()
	assert.Equal(t, model.RateLimitStatus{Limit: 10, Used: 3, Remaining: 7}, h.manager.RateLimit())
}

func TestInit_RunsOnce(t *testing.T) {
	h := newHarness(t)
	h.manager.Init(context.Background())

	require.NoError(t, h.store.Persist(model.Session{User: model.NewUser("a@b.c"), Token: "tok"}))
	h.manager.Init(context.Background())
	assert.Equal(t, StateUnauthenticated, h.manager.State())
}

func TestInit_RestoredTokenRejectedLogsOut(t *testing.T) {
	h := newHarness(t)
	h.server.setRate(http.StatusUnauthorized, "")
	require.NoError(t, h.store.Persist(model.Session{User: model.NewUser("a@b.c"), Token: "tok-revoked"}))

	h.manager.Init(context.Background())
	h.manager.Wait()

	assert.Equal(t, StateUnauthenticated, h.manager.State())
	assert.Empty(t, h.manager.Token())
	_, ok := storedSession(t, h.store)
	assert.False(t, ok)
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

func TestLogin_RateLimitReadyBeforeAuthenticated(t *testing.T) {
	h := newHarness(t)
	h.manager.Init(context.Background())

	var atAuth model.RateLimitStatus
	h.manager.Subscribe(func(s State) {
		if s == StateAuthenticated {
			atAuth = h.manager.RateLimit()
		}
	})

	require.NoError(t, h.manager.Login(context.Background(), model.NewUser("a@b.c"), "tok-1"))
	assert.Equal(t, StateAuthenticated, h.manager.State())
	assert.Equal(t, model.RateLimitStatus{Limit: 10, Used: 3, Remaining: 7}, atAuth)

	s, ok := storedSession(t, h.store)
	require.True(t, ok)
	assert.Equal(t, "tok-1", s.Token)
}

func TestLogin_RefreshFailureStillAuthenticates(t *testing.T) {
	h := newHarness(t)
	h.manager.Init(context.Background())
	h.server.setRate(http.StatusInternalServerError, "")

	require.NoError(t, h.manager.Login(context.Background(), model.NewUser("a@b.c"), "tok-1"))
	assert.Equal(t, StateAuthenticated, h.manager.State())
	assert.Equal(t, model.DefaultRateLimit(), h.manager.RateLimit())
}

func TestLogin_RejectedToken(t *testing.T) {
	h := newHarness(t)
	h.manager.Init(context.Background())
	h.server.setRate(http.StatusUnauthorized, "")

	err := h.manager.Login(context.Background(), model.NewUser("a@b.c"), "tok-bad")
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, StateUnauthenticated, h.manager.State())
	_, ok := storedSession(t, h.store)
	assert.False(t, ok)
}

func TestLogin_InvalidSession(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.manager.Login(context.Background(), model.User{}, "tok"), ErrInvalidSession)
	assert.ErrorIs(t, h.manager.Login(context.Background(), model.NewUser("a@b.c"), ""), ErrInvalidSession)
}

func TestLoginWithPassword(t *testing.T) {
	h := newHarness(t)
	h.manager.Init(context.Background())

	err := h.manager.LoginWithPassword(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")
	assert.Equal(t, StateUnauthenticated, h.manager.State())

	require.NoError(t, h.manager.LoginWithPassword(context.Background(), "a@b.c", "secret"))
	assert.Equal(t, "tok-login", h.manager.Token())
	assert.Equal(t, "a@b.c", h.manager.User().Email)
}

func TestRegister(t *testing.T) {
	h := newHarness(t)
	h.manager.Init(context.Background())

	require.NoError(t, h.manager.Register(context.Background(), "a@b.c", "secret"))
	assert.Equal(t, StateAuthenticated, h.manager.State())
}

func TestLogout_Idempotent(t *testing.T) {
	h := newHarness(t)
	h.manager.Init(context.Background())
	require.NoError(t, h.manager.Login(context.Background(), model.NewUser("a@b.c"), "tok-1"))

	var states []State
	h.manager.Subscribe(func(s State) { states = append(states, s) })

	require.NoError(t, h.manager.Logout())
	require.NoError(t, h.manager.Logout())

	assert.Equal(t, []State{StateUnauthenticated}, states)
	assert.Equal(t, StateUnauthenticated, h.manager.State())
	assert.Equal(t, model.DefaultRateLimit(), h.manager.RateLimit())
	_, ok := storedSession(t, h.store)
	assert.False(t, ok)
}

func TestRejectToken_IgnoresStaleToken(t *testing.T) {
	h := newHarness(t)
	h.manager.Init(context.Background())
	require.NoError(t, h.manager.Login(context.Background(), model.NewUser("a@b.c"), "tok-new"))

	h.manager.RejectToken("tok-old")
	assert.Equal(t, StateAuthenticated, h.manager.State())

	h.manager.RejectToken("tok-new")
	assert.Equal(t, StateUnauthenticated, h.manager.State())
}

// gatedFetcher blocks each quota request until release is closed.
type gatedFetcher struct {
	started chan struct{}
	release chan struct{}
}

func (f *gatedFetcher) RateLimit(context.Context, string) (model.RateLimitStatus, error) {
	f.started <- struct{}{}
	<-f.release
	return model.RateLimitStatus{Limit: 10, Used: 7, Remaining: 3}, nil
}

func TestLogout_DuringRestoreRefreshKeepsDefaultQuota(t *testing.T) {
	store := session.NewFileStore(t.TempDir())
	require.NoError(t, store.Persist(model.Session{User: model.NewUser("a@b.c"), Token: "tok-1"}))

	f := &gatedFetcher{started: make(chan struct{}, 1), release: make(chan struct{})}
	m := NewManager(store, ratelimit.NewTracker(f, nil), nil, nil)

	m.Init(context.Background())
	<-f.started
	require.NoError(t, m.Logout())
	close(f.release)
	m.Wait()

	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Equal(t, model.DefaultRateLimit(), m.RateLimit())
}

// =============================================================================
// SYNC
// =============================================================================

func TestSync_ClearedElsewhere(t *testing.T) {
	h := newHarness(t)
	h.manager.Init(context.Background())
	require.NoError(t, h.manager.Login(context.Background(), model.NewUser("a@b.c"), "tok-1"))

	require.NoError(t, h.store.Clear())
	h.manager.Sync(context.Background())

	assert.Equal(t, StateUnauthenticated, h.manager.State())
	assert.Equal(t, model.DefaultRateLimit(), h.manager.RateLimit())
}

func TestSync_AdoptsNewSession(t *testing.T) {
	h := newHarness(t)
	h.manager.Init(context.Background())

	require.NoError(t, h.store.Persist(model.Session{User: model.NewUser("x@y.z"), Token: "tok-other"}))
	h.manager.Sync(context.Background())
	h.manager.Wait()

	assert.Equal(t, StateAuthenticated, h.manager.State())
	assert.Equal(t, "x@y.z", h.manager.User().Email)
	assert.Equal(t, 7, h.manager.RateLimit().Remaining)
}

func TestSync_SameSessionIsNoop(t *testing.T) {
	h := newHarness(t)
	h.manager.Init(context.Background())
	require.NoError(t, h.manager.Login(context.Background(), model.NewUser("a@b.c"), "tok-1"))
	calls := h.server.rateCalls.Load()

	h.manager.Sync(context.Background())
	h.manager.Wait()
	assert.Equal(t, calls, h.server.rateCalls.Load())
}

// =============================================================================
// TOKEN EXPIRY
// =============================================================================

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("any-key"))
	require.NoError(t, err)

	got, ok := TokenExpiry(signed)
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = TokenExpiry("opaque-token")
	assert.False(t, ok)

	_, ok = TokenExpiry("")
	assert.False(t, ok)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "initializing", StateInitializing.String())
	assert.Equal(t, "unauthenticated", StateUnauthenticated.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
}

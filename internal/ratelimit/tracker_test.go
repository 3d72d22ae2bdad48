// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/parley/internal/api"
	"github.com/jeranaias/parley/internal/model"
)

type fakeFetcher struct {
	mu     sync.Mutex
	status model.RateLimitStatus
	err    error
	calls  []string
}

func (f *fakeFetcher) RateLimit(_ context.Context, token string) (model.RateLimitStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, token)
	return f.status, f.err
}

func TestTracker_DefaultStatus(t *testing.T) {
	tr := NewTracker(&fakeFetcher{}, nil)
	assert.Equal(t, model.DefaultRateLimit(), tr.Status())
}

func TestTracker_RefreshStoresVerbatim(t *testing.T) {
	f := &fakeFetcher{status: model.RateLimitStatus{Limit: 10, Used: 4, Remaining: 9}}
	tr := NewTracker(f, nil)

	got := tr.Refresh(context.Background(), "tok")
	assert.Equal(t, f.status, got)
	assert.Equal(t, f.status, tr.Status(), "remaining is not recomputed")
	assert.Equal(t, []string{"tok"}, f.calls)
}

func TestTracker_EmptyTokenIsNoop(t *testing.T) {
	f := &fakeFetcher{}
	tr := NewTracker(f, nil)

	tr.Refresh(context.Background(), "")
	assert.Empty(t, f.calls)
}

func TestTracker_FailureKeepsCache(t *testing.T) {
	f := &fakeFetcher{status: model.RateLimitStatus{Limit: 10, Used: 2, Remaining: 8}}
	tr := NewTracker(f, nil)
	tr.Refresh(context.Background(), "tok")

	f.err = errors.New("connection refused")
	got := tr.Refresh(context.Background(), "tok")
	assert.Equal(t, model.RateLimitStatus{Limit: 10, Used: 2, Remaining: 8}, got)
}

func TestTracker_UnauthorizedHook(t *testing.T) {
	f := &fakeFetcher{err: api.ErrUnauthorized}
	tr := NewTracker(f, nil)

	var rejected []string
	tr.OnUnauthorized(func(token string) { rejected = append(rejected, token) })

	tr.Refresh(context.Background(), "stale")
	assert.Equal(t, []string{"stale"}, rejected)

	f.err = &api.StatusError{Status: 500}
	tr.Refresh(context.Background(), "stale")
	assert.Len(t, rejected, 1, "only 401 triggers the hook")
}

func TestTracker_ResetAndObservers(t *testing.T) {
	f := &fakeFetcher{status: model.RateLimitStatus{Limit: 10, Used: 10, Remaining: 0}}
	tr := NewTracker(f, nil)

	var seen []model.RateLimitStatus
	tr.OnChange(func(s model.RateLimitStatus) { seen = append(seen, s) })

	tr.Refresh(context.Background(), "tok")
	tr.Refresh(context.Background(), "tok")
	tr.Reset()

	require.Len(t, seen, 2, "unchanged status does not notify")
	assert.True(t, seen[0].Exhausted())
	assert.Equal(t, model.DefaultRateLimit(), seen[1])
}

// blockingFetcher holds every call until release is closed.
type blockingFetcher struct {
	started chan struct{}
	release chan struct{}
	status  model.RateLimitStatus
}

func (f *blockingFetcher) RateLimit(ctx context.Context, _ string) (model.RateLimitStatus, error) {
	f.started <- struct{}{}
	<-f.release
	return f.status, nil
}

func TestTracker_ResetDiscardsRefreshInFlight(t *testing.T) {
	f := &blockingFetcher{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
		status:  model.RateLimitStatus{Limit: 10, Used: 7, Remaining: 3},
	}
	tr := NewTracker(f, nil)

	done := make(chan model.RateLimitStatus)
	go func() { done <- tr.Refresh(context.Background(), "tok") }()

	<-f.started
	tr.Reset()
	close(f.release)

	assert.Equal(t, model.DefaultRateLimit(), <-done)
	assert.Equal(t, model.DefaultRateLimit(), tr.Status())

	// Refreshes started after the reset are stored again
	go func() { done <- tr.Refresh(context.Background(), "tok") }()
	<-f.started
	assert.Equal(t, f.status, <-done)
	assert.Equal(t, f.status, tr.Status())
}

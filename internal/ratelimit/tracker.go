// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ratelimit caches the server-reported daily chat quota.
package ratelimit

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/parley/internal/api"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/util"
)

// Fetcher reads the quota for a token. *api.Client implements it.
type Fetcher interface {
	RateLimit(ctx context.Context, token string) (model.RateLimitStatus, error)
}

// Tracker holds the last status the server reported.
//
// Refresh failures are soft: they are logged and the cached status is kept.
type Tracker struct {
	fetcher Fetcher
	logger  *zap.Logger

	mu             sync.RWMutex
	status         model.RateLimitStatus
	onUnauthorized func(token string)
	onChange       []func(model.RateLimitStatus)

	// gen is bumped by Reset; results of older refreshes are discarded
	gen uint64
}

// NewTracker creates a tracker starting at the default status.
func NewTracker(fetcher Fetcher, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		fetcher: fetcher,
		logger:  logger,
		status:  model.DefaultRateLimit(),
	}
}

// OnUnauthorized sets the hook run when the server rejects the token.
// The rejected token is passed so the caller can ignore stale rejections.
func (t *Tracker) OnUnauthorized(fn func(token string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onUnauthorized = fn
}

// OnChange registers an observer of status replacements.
func (t *Tracker) OnChange(fn func(model.RateLimitStatus)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = append(t.onChange, fn)
}

// Status returns the cached status.
func (t *Tracker) Status() model.RateLimitStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Reset restores the default status. Refreshes still in flight when Reset
// runs do not overwrite it.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.gen++
	gen := t.gen
	t.mu.Unlock()
	t.set(gen, model.DefaultRateLimit())
}

// Refresh fetches the status for token and returns the (possibly unchanged)
// cached value. An empty token does nothing.
func (t *Tracker) Refresh(ctx context.Context, token string) model.RateLimitStatus {
	if token == "" {
		return t.Status()
	}

	t.mu.RLock()
	gen := t.gen
	t.mu.RUnlock()

	status, err := t.fetcher.RateLimit(ctx, token)
	if err != nil {
		t.logger.Warn("rate limit refresh failed",
			zap.String("token_fp", util.Fingerprint(token)),
			zap.Error(err),
		)
		if errors.Is(err, api.ErrUnauthorized) {
			t.mu.RLock()
			hook := t.onUnauthorized
			t.mu.RUnlock()
			if hook != nil {
				hook(token)
			}
		}
		return t.Status()
	}

	if !t.set(gen, status) {
		t.logger.Debug("discarding rate limit from before reset",
			zap.String("token_fp", util.Fingerprint(token)),
		)
		return t.Status()
	}
	return status
}

// set stores status if no Reset happened since gen was read. It reports
// whether the status was stored.
func (t *Tracker) set(gen uint64, status model.RateLimitStatus) bool {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return false
	}
	changed := t.status != status
	t.status = status
	observers := append([]func(model.RateLimitStatus){}, t.onChange...)
	t.mu.Unlock()

	if changed {
		for _, fn := range observers {
			fn(status)
		}
	}
	return true
}

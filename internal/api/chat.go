// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/jeranaias/parley/internal/model"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
	// Images is reserved by the service; the client always sends [].
	Images []string `json:"images"`
}

// Chat sends one message and returns the raw reply body.
//
// The body of a 2xx response is plain text and is returned untouched;
// callers normalize it. Errors: ErrNoToken, ErrUnauthorized (401),
// ErrRateLimited (429), *StatusError (other non-2xx), or the transport
// error when the request never completed.
func (c *Client) Chat(ctx context.Context, token, message string) (string, error) {
	if token == "" {
		return "", ErrNoToken
	}

	status, body, err := c.do(ctx, http.MethodPost, PathChat, token, ChatRequest{
		Message: message,
		Images:  []string{},
	})
	if err != nil {
		return "", err
	}

	if !isSuccess(status) {
		c.logger.Warn("chat request rejected",
			zap.Int("status", status),
			zap.Int("body_bytes", len(body)),
		)
		return "", bearerError(status, body)
	}
	return string(body), nil
}

// RateLimit fetches the current quota counters.
func (c *Client) RateLimit(ctx context.Context, token string) (model.RateLimitStatus, error) {
	if token == "" {
		return model.RateLimitStatus{}, ErrNoToken
	}

	status, body, err := c.do(ctx, http.MethodGet, PathRateLimit, token, nil)
	if err != nil {
		return model.RateLimitStatus{}, err
	}
	if !isSuccess(status) {
		return model.RateLimitStatus{}, bearerError(status, body)
	}

	var rl model.RateLimitStatus
	if err := json.Unmarshal(body, &rl); err != nil {
		return model.RateLimitStatus{}, fmt.Errorf("failed to parse rate limit response: %w", err)
	}
	return rl, nil
}

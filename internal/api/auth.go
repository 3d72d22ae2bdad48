// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/parley/internal/model"
)

// ErrMalformedAuthResponse indicates a 2xx auth response without a token or user.
var ErrMalformedAuthResponse = errors.New("auth response missing token or user")

// Credentials is the body of the auth endpoints.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the success body of the auth endpoints.
type AuthResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login exchanges credentials for a user record and bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	return c.authenticate(ctx, PathLogin, creds)
}

// Register creates an account. The service answers like Login.
func (c *Client) Register(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	return c.authenticate(ctx, PathRegister, creds)
}

func (c *Client) authenticate(ctx context.Context, path string, creds Credentials) (*AuthResponse, error) {
	// Composed form so the same address typed on different keyboards matches
	creds.Email = norm.NFC.String(strings.TrimSpace(creds.Email))

	status, body, err := c.do(ctx, http.MethodPost, path, "", creds)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if !isSuccess(status) {
		return nil, &StatusError{
			Status:  status,
			Message: serverMessage(body),
			Body:    string(body),
		}
	}

	var out AuthResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse auth response: %w", err)
	}
	if out.Token == "" || out.User.IsZero() {
		return nil, ErrMalformedAuthResponse
	}
	return &out, nil
}

// serverMessage extracts {"message": ...} or {"error": ...} from an error body.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
)

// =============================================================================
// USER RECORD
// =============================================================================

// User is the user record returned by the auth service.
//
// The record is opaque to the client: only Email (and Name when present) are
// read, and the original JSON is kept so that persisting and restoring the
// record round-trips every field the server sent.
type User struct {
	Email string
	Name  string

	raw json.RawMessage
}

// NewUser creates a user record with just an email address.
func NewUser(email string) User {
	return User{Email: email}
}

// IsZero reports whether the record carries no identity at all.
func (u User) IsZero() bool {
	return u.Email == "" && u.Name == "" && len(u.raw) == 0
}

// DisplayName returns the best human-readable label for the user.
func (u User) DisplayName() string {
	if u.Email != "" {
		return u.Email
	}
	if u.Name != "" {
		return u.Name
	}
	return "unknown user"
}

// UnmarshalJSON keeps the raw record and extracts the known fields.
func (u *User) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*u = User{}
		return nil
	}

	var known struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(trimmed, &known); err != nil {
		return err
	}

	u.Email = known.Email
	u.Name = known.Name
	u.raw = append(json.RawMessage(nil), trimmed...)
	return nil
}

// MarshalJSON writes the original record when one was received.
func (u User) MarshalJSON() ([]byte, error) {
	if len(u.raw) > 0 {
		return u.raw, nil
	}
	return json.Marshal(struct {
		Email string `json:"email,omitempty"`
		Name  string `json:"name,omitempty"`
	}{u.Email, u.Name})
}

// =============================================================================
// SESSION
// =============================================================================

// Session is an authenticated identity and its bearer token.
type Session struct {
	User  User
	Token string
}

// Authenticated is true iff both the user record and the token are present.
func (s Session) Authenticated() bool {
	return !s.User.IsZero() && s.Token != ""
}

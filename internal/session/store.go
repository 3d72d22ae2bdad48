// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/model"
)

// Slot names. They double as file names for FileStore and keys for SQLiteStore.
const (
	SlotToken = "auth_token"
	SlotUser  = "auth_user"
)

// ErrCorruptSlot indicates a stored slot could not be decoded.
var ErrCorruptSlot = errors.New("corrupt session slot")

// Store is the durable key-value store for the session.
type Store interface {
	// Restore returns the stored session. ok is false unless both slots are
	// present and non-empty.
	Restore() (s model.Session, ok bool, err error)

	// Persist writes both slots.
	Persist(s model.Session) error

	// Clear removes both slots. Clearing an empty store is not an error.
	Clear() error

	// Paths returns the filesystem paths a Watcher should observe.
	Paths() []string

	// Close releases resources held by the store.
	Close() error
}

// Open returns the store selected by the storage backend setting.
func Open(cfg *config.Config) (Store, error) {
	dir, err := cfg.StateDir()
	if err != nil {
		return nil, err
	}

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		return OpenSQLite(filepath.Join(dir, sqliteFileName))
	case config.BackendFile, "":
		return NewFileStore(dir), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// encodeUser renders the user slot.
func encodeUser(u model.User) (string, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("failed to encode user record: %w", err)
	}
	return string(data), nil
}

// decodeSession builds a session from raw slot values.
func decodeSession(token, user string) (model.Session, bool, error) {
	if token == "" || user == "" {
		return model.Session{}, false, nil
	}

	var u model.User
	if err := json.Unmarshal([]byte(user), &u); err != nil {
		return model.Session{}, false, fmt.Errorf("%w: %s: %v", ErrCorruptSlot, SlotUser, err)
	}

	s := model.Session{User: u, Token: token}
	if !s.Authenticated() {
		return model.Session{}, false, nil
	}
	return s, true, nil
}

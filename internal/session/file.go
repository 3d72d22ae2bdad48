// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/util"
)

// SECURITY: Slots hold a bearer token, owner-only permissions.
const slotFilePerm = 0600

// FileStore keeps each slot in its own file.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a store rooted at dir. The directory is created on
// first Persist.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (st *FileStore) tokenPath() string {
	return filepath.Join(st.dir, SlotToken)
}

func (st *FileStore) userPath() string {
	return filepath.Join(st.dir, SlotUser+".json")
}

// Restore implements Store.
func (st *FileStore) Restore() (model.Session, bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	token, err := readSlot(st.tokenPath())
	if err != nil {
		return model.Session{}, false, err
	}
	user, err := readSlot(st.userPath())
	if err != nil {
		return model.Session{}, false, err
	}
	return decodeSession(strings.TrimSpace(token), strings.TrimSpace(user))
}

// Persist implements Store. The user slot is written last so a reader that
// sees it also sees the token.
func (st *FileStore) Persist(s model.Session) error {
	user, err := encodeUser(s.User)
	if err != nil {
		return err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if err := util.AtomicWriteFile(st.tokenPath(), []byte(s.Token), slotFilePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", SlotToken, err)
	}
	if err := util.AtomicWriteFile(st.userPath(), []byte(user), slotFilePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", SlotUser, err)
	}
	return nil
}

// Clear implements Store.
func (st *FileStore) Clear() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	return errors.Join(
		util.RemoveIfExists(st.userPath()),
		util.RemoveIfExists(st.tokenPath()),
	)
}

// Paths implements Store.
func (st *FileStore) Paths() []string {
	return []string{st.tokenPath(), st.userPath()}
}

// Close implements Store.
func (st *FileStore) Close() error {
	return nil
}

// readSlot returns the slot content, or "" if the file does not exist.
func readSlot(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return string(data), nil
}

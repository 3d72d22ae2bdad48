// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/parley/internal/model"
)

const sqliteFileName = "session.db"

const slotsSchema = `
CREATE TABLE IF NOT EXISTS slots (
    name  TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

// SQLiteStore keeps both slots as rows of one table.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) the session database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	// Single writer; the session is two tiny rows
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(slotsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	// SECURITY: the database holds a bearer token
	_ = os.Chmod(path, slotFilePerm)

	return &SQLiteStore{db: db, path: path}, nil
}

// Restore implements Store.
func (s *SQLiteStore) Restore() (model.Session, bool, error) {
	rows, err := s.db.Query("SELECT name, value FROM slots WHERE name IN (?, ?)", SlotToken, SlotUser)
	if err != nil {
		return model.Session{}, false, fmt.Errorf("failed to read slots: %w", err)
	}
	defer rows.Close()

	var token, user string
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return model.Session{}, false, fmt.Errorf("failed to scan slot: %w", err)
		}
		switch name {
		case SlotToken:
			token = value
		case SlotUser:
			user = value
		}
	}
	if err := rows.Err(); err != nil {
		return model.Session{}, false, fmt.Errorf("failed to read slots: %w", err)
	}

	return decodeSession(token, user)
}

// Persist implements Store. Both slots change in one transaction.
func (s *SQLiteStore) Persist(sess model.Session) error {
	user, err := encodeUser(sess.User)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const upsert = `INSERT INTO slots (name, value) VALUES (?, ?)
        ON CONFLICT(name) DO UPDATE SET value = excluded.value`

	if _, err := tx.Exec(upsert, SlotToken, sess.Token); err != nil {
		return fmt.Errorf("failed to write %s: %w", SlotToken, err)
	}
	if _, err := tx.Exec(upsert, SlotUser, user); err != nil {
		return fmt.Errorf("failed to write %s: %w", SlotUser, err)
	}
	return tx.Commit()
}

// Clear implements Store.
func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM slots WHERE name IN (?, ?)", SlotToken, SlotUser); err != nil {
		return fmt.Errorf("failed to clear slots: %w", err)
	}
	return nil
}

// Paths implements Store. WAL mode writes land in the -wal file first.
func (s *SQLiteStore) Paths() []string {
	return []string{s.path, s.path + "-wal"}
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if errors.Is(err, sql.ErrConnDone) {
		return nil
	}
	return err
}

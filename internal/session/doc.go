// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session persists the authenticated session across restarts.
//
// A session is kept in two slots: the bearer token (raw string) and the user
// record (JSON text). Both are written together and cleared together. The
// store performs no validation of the token; that is the server's job.
//
// # Backends
//
//   - FileStore: auth_token and auth_user.json in the state directory
//   - SQLiteStore: one slots table in session.db
//
// # Cross-process sync
//
// Watcher reports changes made to the slots by another parley process,
// such as "parley logout" run in a second terminal.
package session

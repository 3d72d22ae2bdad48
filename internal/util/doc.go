// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across parley.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//   - RemoveIfExists: Remove a file, treating "not found" as success
//
// Display:
//   - TruncateWidth: Display-width aware truncation with ellipsis
//
// Secrets:
//   - Fingerprint: Short SHA-256 fingerprint for logging secrets
//
// # Usage
//
//	// Write the token slot without ever leaving a partial file behind
//	err := util.AtomicWriteFile(path, []byte(token), 0600)
//
//	// Fit an email address into a narrow header
//	label := util.TruncateWidth(email, 24)
package util

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the parley core.
//
// # Key Types
//
//   - User: Opaque user record returned by the auth service
//   - Session: Authenticated identity plus bearer token
//   - RateLimitStatus: Server-reported daily quota counters
//   - Message: Single transcript entry (user or ai)
//   - Transcript: Append-only ordered message list with monotonic IDs
//
// # Usage
//
//	t := model.NewTranscript()
//	t.Append(model.SenderUser, "Hello!")
//	for _, msg := range t.Messages() {
//	    fmt.Printf("[%s] %s: %s\n", msg.Timestamp, msg.Sender.DisplayName(), msg.Text)
//	}
package model

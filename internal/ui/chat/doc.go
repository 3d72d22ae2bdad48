// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view of the TUI.
//
// The view is a thin shell over chat.Controller: it renders the transcript,
// forwards input and redraws on RefreshMsg, which the application sends
// whenever the controller or the rate limit tracker reports a change.
//
// Layout, top to bottom:
//   - header: user email, quota, logout hint
//   - viewport: transcript, or the welcome text when empty
//   - typing indicator while a reply is pending
//   - textarea input (replaced by a notice while disabled)
package chat

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat owns the conversation transcript and the send operation.
//
// A Controller relays one message at a time to the chat endpoint:
//
//	SendMessage(text)
//	  ├─ append user message, clear draft, set in-flight + typing
//	  ├─ POST /api/chat
//	  │    2xx  → append normalized reply, refresh quota
//	  │    429  → append daily-limit notice, refresh quota
//	  │    401  → log out, nothing appended
//	  │    else → append "Error: ... Please try again."
//	  └─ clear in-flight + typing
//
// There is no retry; the user resends.
package chat

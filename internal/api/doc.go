// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the remote chat service.
//
// The service exposes four endpoints under one base URL:
//
//	POST /auth/register   create an account, returns user + token
//	POST /auth/login      returns user + token
//	POST /api/chat        Bearer; {"message": "...", "images": []} -> raw text
//	GET  /api/rate-limit  Bearer; -> {"limit", "used", "remaining"}
//
// # Key Types
//
//   - Client: HTTP client bound to a base URL
//   - Credentials / AuthResponse: auth endpoint payloads
//   - StatusError: non-2xx response without a dedicated sentinel
//
// # Errors
//
// 401 responses from Bearer endpoints map to ErrUnauthorized and 429 to
// ErrRateLimited; use errors.Is. Everything else non-2xx is a *StatusError.
// Requests are attempted exactly once; there is no retry.
//
// # Security
//
// Bearer tokens are never logged. Log fields carry a short fingerprint.
package api

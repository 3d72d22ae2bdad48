// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth owns the authenticated session of the running process.
//
// A single Manager is created at startup and passed to every component that
// needs the bearer token. It moves through three states:
//
//	Initializing ──Init──▶ Authenticated      (session restored)
//	             └─Init──▶ Unauthenticated    (nothing stored)
//	Unauthenticated ──Login──▶ Authenticated
//	Authenticated ──Logout / 401──▶ Unauthenticated
//
// Any 401 seen for the current token logs the session out, whether it came
// from the chat endpoint or from a rate-limit refresh.
package auth

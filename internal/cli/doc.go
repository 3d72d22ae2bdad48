// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the parley command line.
//
// Commands:
//
//	parley              full-screen chat (default)
//	parley login        sign in and store the session
//	parley register     create an account and sign in
//	parley logout       forget the stored session
//	parley status       show session, token expiry and quota
//	parley ask MESSAGE  send one message and print the reply
//	parley chat         line-mode chat with input history
//	parley config show  print the effective configuration
//	parley config path  print the configuration directory
//
// Global flags: --config FILE, --verbose.
package cli

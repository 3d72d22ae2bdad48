// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the structured logger used across parley.
//
// The terminal belongs to the UI, so logs go to a rotating JSON file
// (lumberjack) rather than stdout. Non-interactive commands can tee
// warnings to stderr.
//
// # Usage
//
//	logger, err := logging.New(logging.Options{
//	    File:  "/home/me/.parley/logs/parley.log",
//	    Level: "info",
//	})
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	logger.Info("session restored", zap.String("user", email))
package logging

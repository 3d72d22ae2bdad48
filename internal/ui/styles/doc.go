// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling of the parley TUI.
//
// All colors are lipgloss.AdaptiveColor values, so one palette serves light
// and dark terminals. Theme bundles the styles the views use; build it once
// with NewTheme and pass it down.
package styles

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	chatctl "github.com/jeranaias/parley/internal/chat"
)

// RefreshMsg asks the view to re-read the controller and quota.
type RefreshMsg struct{}

// SendDoneMsg reports that a send settled.
type SendDoneMsg struct {
	Sent bool
}

// LogoutDoneMsg reports that a logout requested from the view finished.
type LogoutDoneMsg struct {
	Err error
}

// SendCmd runs a blocking send off the UI goroutine.
func SendCmd(ctx context.Context, ctrl *chatctl.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		return SendDoneMsg{Sent: ctrl.SendMessage(ctx, text)}
	}
}

// LogoutCmd logs the session out.
func LogoutCmd(logout func() error) tea.Cmd {
	return func() tea.Msg {
		return LogoutDoneMsg{Err: logout()}
	}
}

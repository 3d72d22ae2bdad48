// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley/internal/locale"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/util"
)

// View implements tea.Model.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.theme.Help.Render(m.text.T(locale.ChatHelp)),
	)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	rl := m.account.RateLimit()
	quota := m.theme.QuotaStyle(rl.Remaining, rl.Limit).
		Render(m.text.T(locale.QuotaStatus, rl.Used, rl.Limit, rl.Remaining))

	title := m.theme.HeaderTitle.Render("AI Assistant")
	room := m.width - lipgloss.Width(title) - lipgloss.Width(quota) - 6
	user := m.theme.HeaderSubtitle.Render(
		util.TruncateWidth(m.account.User().DisplayName(), max(room, 8)))

	left := title + "  " + user
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(quota) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + quota)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// bubbleWidth is the widest a message bubble may get.
func (m Model) bubbleWidth() int {
	return max(m.width*4/5, 24)
}

func (m *Model) renderTranscript(msgs []model.Message, typing bool) string {
	if len(msgs) == 0 && !typing {
		return lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center,
				m.theme.WelcomeTitle.Render(m.text.T(locale.WelcomeTitle)),
				m.theme.WelcomeHint.Render(m.text.T(locale.WelcomeHint)),
			))
	}

	blocks := make([]string, 0, len(msgs)+1)
	for _, msg := range msgs {
		rendered, ok := m.cache[msg.ID]
		if !ok {
			rendered = m.renderMessage(msg)
			m.cache[msg.ID] = rendered
		}
		blocks = append(blocks, rendered)
	}
	if typing {
		blocks = append(blocks, m.theme.Typing.Render(m.text.T(locale.Typing)))
	}
	return strings.Join(blocks, "\n\n")
}

// renderMessage draws one message: AI text as Markdown on the left, user
// text verbatim (wrapped, whitespace kept) on the right.
func (m Model) renderMessage(msg model.Message) string {
	label := m.theme.SenderLabel.Render(msg.Sender.DisplayName()) + " " +
		m.theme.Timestamp.Render(msg.Timestamp)

	if msg.IsAI() {
		body := m.theme.AssistantBubble.Render(m.renderer.RenderOrPlain(msg.Text))
		return lipgloss.JoinVertical(lipgloss.Left, label, body)
	}

	width := min(lipgloss.Width(msg.Text)+2, m.bubbleWidth())
	body := m.theme.UserBubble.Width(width).Render(msg.Text)
	block := lipgloss.JoinVertical(lipgloss.Right, label, body)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, block)
}

// =============================================================================
// INPUT
// =============================================================================

func (m Model) renderInput() string {
	if m.account.RateLimit().Exhausted() {
		return m.theme.InputContainer.Width(m.width).
			Render(m.theme.InputDisabled.Render(m.text.T(locale.LimitReached)))
	}
	return m.theme.InputContainer.Width(m.width).Render(m.input.View())
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestNewTheme_ExplicitMode(t *testing.T) {
	assert.True(t, NewTheme(ModeDark).IsDark)
	assert.False(t, NewTheme(ModeLight).IsDark)
	assert.True(t, NewTheme("DARK").IsDark)
}

func TestQuotaStyle(t *testing.T) {
	theme := NewTheme(ModeDark)

	tests := []struct {
		name      string
		remaining int
		limit     int
		want      lipgloss.Style
	}{
		{"plenty", 7, 10, theme.QuotaOK},
		{"low", 2, 10, theme.QuotaLow},
		{"empty", 0, 10, theme.QuotaEmpty},
		{"negative", -1, 10, theme.QuotaEmpty},
		{"no limit", 3, 0, theme.QuotaOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := theme.QuotaStyle(tt.remaining, tt.limit)
			assert.Equal(t, tt.want.GetForeground(), got.GetForeground())
		})
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_FormatsMarkdown(t *testing.T) {
	r, err := New(StylePlain, 80)
	require.NoError(t, err)

	out, err := r.Render("# Title\n\nSome **bold** text.\n\n- one\n- two")
	require.NoError(t, err)

	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "bold")
	assert.False(t, strings.HasPrefix(out, "\n"))
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestSetWidth(t *testing.T) {
	r, err := New(StylePlain, 5)
	require.NoError(t, err)
	assert.Equal(t, MinWidth, r.Width())

	require.NoError(t, r.SetWidth(40))
	assert.Equal(t, 40, r.Width())

	out, err := r.Render(strings.Repeat("word ", 30))
	require.NoError(t, err)
	assert.Greater(t, strings.Count(out, "\n"), 1, "long paragraphs wrap")
}

func TestRenderOrPlain_NilRenderer(t *testing.T) {
	var r *Renderer
	assert.Equal(t, "# raw", r.RenderOrPlain("# raw"))
}

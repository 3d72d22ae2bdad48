// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns Markdown replies into styled terminal text.
//
// Parsing and styling are glamour's job; this package only manages the
// renderer's configuration and its wrap width.
package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Style names accepted by New besides glamour's standard style names.
const (
	StyleAuto = "auto"
	// StylePlain renders without ANSI escapes.
	StylePlain = "notty"
)

// MinWidth is the narrowest wrap width the renderer accepts.
const MinWidth = 20

// Renderer renders Markdown at a configurable wrap width.
// It is safe for concurrent use.
type Renderer struct {
	mu    sync.Mutex
	style string
	width int
	tr    *glamour.TermRenderer
}

// New creates a renderer. style is "auto", "dark", "light", "notty" or
// another glamour standard style name.
func New(style string, width int) (*Renderer, error) {
	r := &Renderer{style: style}
	if err := r.SetWidth(width); err != nil {
		return nil, err
	}
	return r, nil
}

// Width returns the current wrap width.
func (r *Renderer) Width() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width
}

// SetWidth rebuilds the renderer for a new wrap width. Same width is a no-op.
func (r *Renderer) SetWidth(width int) error {
	if width < MinWidth {
		width = MinWidth
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tr != nil && r.width == width {
		return nil
	}

	styleOpt := glamour.WithAutoStyle()
	if r.style != "" && r.style != StyleAuto {
		styleOpt = glamour.WithStandardStyle(r.style)
	}

	tr, err := glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	r.tr = tr
	r.width = width
	return nil
}

// Render renders markdown. Surrounding blank lines added by glamour are
// trimmed so callers control spacing.
func (r *Renderer) Render(markdown string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out, err := r.tr.Render(markdown)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

// RenderOrPlain renders markdown, returning it unchanged on failure.
func (r *Renderer) RenderOrPlain(markdown string) string {
	if r == nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}

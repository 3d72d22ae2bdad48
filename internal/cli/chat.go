// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/parley/internal/app"
	"github.com/jeranaias/parley/internal/auth"
	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/locale"
	"github.com/jeranaias/parley/internal/render"
)

// historyFileName is the REPL input history file in the config directory.
const historyFileName = "chat_history"

// =============================================================================
// LINE EDITOR
// =============================================================================

// lineEditor is the input side of the REPL.
type lineEditor interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// historyLine provides input history and line editing for the REPL.
type historyLine struct {
	line        *liner.State
	historyFile string
}

func newHistoryLine() *historyLine {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	h := &historyLine{line: line}
	if dir, err := config.ConfigDir(); err == nil {
		h.historyFile = filepath.Join(dir, historyFileName)
		if f, err := os.Open(h.historyFile); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}
	return h
}

// Prompt reads one line and records non-empty input in the history.
func (h *historyLine) Prompt(prompt string) (string, error) {
	input, err := h.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		h.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the history with owner-only permissions.
func (h *historyLine) Close() error {
	defer h.line.Close()
	if h.historyFile == "" {
		return nil
	}
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	f, err := os.OpenFile(h.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = h.line.WriteHistory(f)
	return err
}

// plainLine reads from a non-terminal stream.
type plainLine struct {
	p *prompter
}

func (l plainLine) Prompt(prompt string) (string, error) { return l.p.Line(prompt) }
func (l plainLine) Close() error                         { return nil }

// =============================================================================
// COMMAND
// =============================================================================

func newChatCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Line-mode chat with input history",
		Long: `Line-mode chat with input history.

Type a message and press Enter. Commands:
  /status   show the daily quota
  /logout   forget the session and exit
  /quit     exit (also Ctrl+D)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := requireSession(cmd.Context(), a); err != nil {
				return err
			}

			var editor lineEditor
			if isTerminal(cmd.InOrStdin()) {
				editor = newHistoryLine()
			} else {
				editor = plainLine{p: newPrompter(cmd.InOrStdin(), io.Discard)}
			}
			defer editor.Close()

			return runREPL(cmd, editor, &replSession{
				app:      a,
				out:      cmd.OutOrStdout(),
				renderer: replyRenderer(a, cmd.OutOrStdout()),
			})
		},
	}
}

func runREPL(cmd *cobra.Command, editor lineEditor, s *replSession) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Signed in as %s. %s\n", s.app.Auth.User().DisplayName(), s.app.Auth.RateLimit())

	for {
		input, err := editor.Prompt("> ")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return err
		}

		switch strings.TrimSpace(input) {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/status":
			fmt.Fprintln(out, s.app.Auth.RefreshRateLimit(cmd.Context()))
			continue
		case "/logout":
			if err := s.app.Auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(out, s.app.Text.T(locale.LoggedOut))
			return nil
		}

		if !s.send(cmd, input) {
			return fmt.Errorf("%w: %s", errNotLoggedIn, s.app.Text.T(locale.SessionRejected))
		}
	}
}

// replSession sends REPL input and prints what each send appended.
type replSession struct {
	app      *app.App
	out      io.Writer
	renderer *render.Renderer
}

// send returns false when the session ended (the server rejected the token).
func (s *replSession) send(cmd *cobra.Command, input string) bool {
	before := len(s.app.Chat.Messages())
	s.app.Chat.SendMessage(cmd.Context(), input)

	for _, msg := range repliesSince(s.app.Chat.Messages(), before) {
		fmt.Fprintf(s.out, "%s [%s]\n%s\n\n", msg.Sender.DisplayName(), msg.Timestamp, s.renderer.RenderOrPlain(msg.Text))
	}
	if s.app.Auth.State() != auth.StateAuthenticated {
		return false
	}
	if s.app.Auth.RateLimit().Exhausted() {
		fmt.Fprintln(s.out, s.app.Text.T(locale.LimitReached))
	}
	return true
}

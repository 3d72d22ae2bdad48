// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/parley/internal/app"
	"github.com/jeranaias/parley/internal/locale"
	"github.com/jeranaias/parley/internal/model"
	"github.com/jeranaias/parley/internal/render"
)

func newAskCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [message]",
		Short: "Send one message and print the reply",
		Long: `Send one message and print the reply.

The message is taken from the arguments, or from stdin when none are given.
The reply is rendered as Markdown when stdout is a terminal and printed
verbatim otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				text = string(data)
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("nothing to send")
			}

			a, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := requireSession(cmd.Context(), a); err != nil {
				return err
			}

			before := len(a.Chat.Messages())
			a.Chat.SendMessage(cmd.Context(), text)

			replies := repliesSince(a.Chat.Messages(), before)
			if len(replies) == 0 {
				// 401: the controller logged out instead of replying
				return fmt.Errorf("%w: %s", errNotLoggedIn, a.Text.T(locale.SessionRejected))
			}

			out := cmd.OutOrStdout()
			r := replyRenderer(a, out)
			for _, msg := range replies {
				fmt.Fprintln(out, r.RenderOrPlain(msg.Text))
			}
			return nil
		},
	}
}

// repliesSince returns the AI messages appended after index from.
func repliesSince(msgs []model.Message, from int) []model.Message {
	var out []model.Message
	for _, msg := range msgs[min(from, len(msgs)):] {
		if msg.IsAI() {
			out = append(out, msg)
		}
	}
	return out
}

// replyRenderer returns a Markdown renderer for a terminal, or nil (plain
// output) for pipes and NO_COLOR.
func replyRenderer(a *app.App, out io.Writer) *render.Renderer {
	if !colorsEnabled(out) {
		return nil
	}
	r, err := a.NewRenderer(min(terminalWidth(out), a.Config.UI.WordWrap))
	if err != nil {
		return nil
	}
	return r
}

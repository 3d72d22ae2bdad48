// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeranaias/parley/internal/app"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	verbose    bool
}

// openApp wires the application for one command.
func (g *globalFlags) openApp(cmd *cobra.Command) (*app.App, error) {
	var stderr io.Writer
	if g.verbose {
		stderr = cmd.ErrOrStderr()
	}
	return app.New(app.Options{
		ConfigPath: g.configPath,
		Verbose:    g.verbose,
		Stderr:     stderr,
	})
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "parley",
		Short: "Terminal client for the AI chat service",
		Long: `parley is a terminal client for the AI chat service.

Run it without arguments for the full-screen chat. Sign in once with
"parley login"; the session is kept in ~/.parley until you log out or the
server rejects it.

Quick Start:
  parley login                 # sign in
  parley                       # full-screen chat
  parley ask "hello"           # one message, reply on stdout
  parley status                # session and daily quota`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.RunTUI(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default: ~/.parley/config.toml)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "debug logging, warnings on stderr")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newLoginCommand(g, false),
		newLoginCommand(g, true),
		newLogoutCommand(g),
		newStatusCommand(g),
		newAskCommand(g),
		newChatCommand(g),
		newConfigCommand(g),
	)
	return root
}

// Execute runs the command line and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

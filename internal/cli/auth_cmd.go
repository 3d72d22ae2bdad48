// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/parley/internal/app"
	"github.com/jeranaias/parley/internal/auth"
	"github.com/jeranaias/parley/internal/locale"
	"github.com/jeranaias/parley/internal/util"
)

// errNotLoggedIn is returned by commands that need a session.
var errNotLoggedIn = errors.New("not logged in")

// =============================================================================
// LOGIN / REGISTER
// =============================================================================

func newLoginCommand(g *globalFlags, register bool) *cobra.Command {
	var email string
	var passwordStdin bool

	use, short := "login", "Sign in and store the session"
	if register {
		use, short = "register", "Create an account and sign in"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
			if email == "" {
				if email, err = p.Line(a.Text.T(locale.EmailLabel) + ": "); err != nil {
					return fmt.Errorf("failed to read email: %w", err)
				}
			}

			var password string
			if passwordStdin {
				password, err = p.Line("")
			} else {
				password, err = p.Password(a.Text.T(locale.PasswordLabel) + ": ")
			}
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			email = strings.TrimSpace(email)
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}

			ctx := cmd.Context()
			a.Auth.Init(ctx)
			if register {
				err = a.Auth.Register(ctx, email, password)
			} else {
				err = a.Auth.LoginWithPassword(ctx, email, password)
			}
			if err != nil {
				return err
			}

			rl := a.Auth.RateLimit()
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", a.Auth.User().DisplayName(), rl)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email (prompted when omitted)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

// =============================================================================
// LOGOUT
// =============================================================================

func newLogoutCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.Text.T(locale.LoggedOut))
			return nil
		},
	}
}

// =============================================================================
// STATUS
// =============================================================================

func newStatusCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session, token expiry and daily quota",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			restoreSession(cmd.Context(), a)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Server:    %s\n", a.Config.API.BaseURL)

			if a.Auth.State() != auth.StateAuthenticated {
				fmt.Fprintln(out, "Session:   none")
				return nil
			}

			fmt.Fprintf(out, "User:      %s\n", a.Auth.User().DisplayName())
			fmt.Fprintf(out, "Token:     %s\n", util.Fingerprint(a.Auth.Token()))
			if exp, ok := a.Auth.TokenExpiry(); ok {
				fmt.Fprintf(out, "Expires:   %s\n", describeExpiry(exp, time.Now()))
			}
			fmt.Fprintf(out, "Quota:     %s\n", a.Auth.RateLimit())
			return nil
		},
	}
}

// restoreSession restores the stored session and waits for its first
// quota refresh, so a rejected token is already logged out on return.
func restoreSession(ctx context.Context, a *app.App) {
	a.Auth.Init(ctx)
	a.Auth.Wait()
}

// requireSession is restoreSession for commands that cannot run signed out.
func requireSession(ctx context.Context, a *app.App) error {
	restoreSession(ctx, a)
	if a.Auth.State() != auth.StateAuthenticated {
		return fmt.Errorf("%w: %s", errNotLoggedIn, a.Text.T(locale.NotLoggedIn))
	}
	return nil
}

func describeExpiry(exp, now time.Time) string {
	stamp := exp.Local().Format("2006-01-02 15:04")
	if exp.Before(now) {
		return stamp + " (expired)"
	}
	return fmt.Sprintf("%s (in %s)", stamp, exp.Sub(now).Round(time.Minute))
}

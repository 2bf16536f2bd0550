package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kanakk365/ysntest-sub001/internal/session"
)

func newLoginCmd(c *cli) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Long: `Sign in with an email and password. The session is kept in the local
state file until you log out.

When --password is omitted the password is read from the first line of
standard input.

Examples:
  ysn login --email coach@ysn.com --password secret
  echo secret | ysn login --email coach@ysn.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app

			if password == "" && !cmd.Flags().Changed("password") {
				p, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}
				password = p
			}

			if !a.store.Login(cmd.Context(), email, password) {
				s := a.store.Snapshot()
				var verr *session.ValidationError
				if errors.As(a.store.LastError(), &verr) {
					return fmt.Errorf("invalid input: %s", s.Error)
				}
				return fmt.Errorf("login failed: %s", s.Error)
			}

			s := a.store.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s> (%s)\n", s.User.Name, s.User.Email, s.Role())
			fmt.Fprintf(cmd.OutOrStdout(), "Home area: %s\n", a.roles.DefaultArea(s.Role()))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app
			wasIn := a.store.Snapshot().Authenticated
			a.store.Logout(cmd.Context())

			if wasIn {
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			}
			return nil
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the remembered session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app
			s := a.store.Snapshot()
			out := cmd.OutOrStdout()

			if !s.Authenticated {
				fmt.Fprintln(out, "Not logged in.")
				fmt.Fprintln(out, "Use 'ysn login' to authenticate.")
				return nil
			}

			fmt.Fprintf(out, "User ID:   %d\n", s.User.ID)
			fmt.Fprintf(out, "Name:      %s\n", s.User.Name)
			fmt.Fprintf(out, "Email:     %s\n", s.User.Email)
			fmt.Fprintf(out, "Role:      %s\n", s.Role())
			fmt.Fprintf(out, "Home area: %s\n", a.roles.DefaultArea(s.Role()))
			return nil
		},
	}
}

func newResetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard all local state",
		Long: `Discard the remembered session and cached preferences without
contacting the backend. Use this when the local state is damaged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app
			a.store.Reset(cmd.Context())
			a.state.Reset()
			fmt.Fprintln(cmd.OutOrStdout(), "Local state cleared.")
			return nil
		},
	}
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kanakk365/ysntest-sub001/internal/role"
)

func newAreaCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "area [name]",
		Short: "Check whether the session may open an area",
		Long: `Check whether the current session may open a role-restricted area
("coach" or "super-admin"). A denied check prints where you would be sent
instead. Without a name, prints the last area you opened, or your home area.

Examples:
  ysn area coach
  ysn area super-admin
  ysn area`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			out := cmd.OutOrStdout()
			s := a.store.Snapshot()

			if len(args) == 0 {
				if last, ok, err := a.state.Preference(lastAreaPreference); err == nil && ok {
					fmt.Fprintln(out, last)
					return nil
				}
				fmt.Fprintln(out, a.roles.DefaultArea(s.Role()))
				return nil
			}

			area, ok := a.roles.Area(args[0])
			if !ok {
				return fmt.Errorf("unknown area %q", args[0])
			}

			gate := role.NewGate(a.roles, area)
			outcome := gate.Observe(s)

			switch outcome.Decision {
			case role.Allow:
				if err := a.state.SetPreference(lastAreaPreference, area.Path); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not remember area: %v\n", err)
				}
				fmt.Fprintf(out, "%s %s\n", outcome.Decision, area.Path)
			case role.Deny:
				fmt.Fprintf(out, "%s %s -> %s\n", outcome.Decision, area.Path, outcome.Redirect)
			default:
				fmt.Fprintf(out, "%s %s\n", outcome.Decision, area.Path)
			}
			return nil
		},
	}
}

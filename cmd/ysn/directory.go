package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kanakk365/ysntest-sub001/internal/api/validation"
	"github.com/kanakk365/ysntest-sub001/internal/backend"
)

func newOrgCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "org <slug>",
		Short: "Show an organization's public profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org, err := loadDetail(cmd.Context(), args[0], c.app.backend.Organization)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", org.Name, org.Slug)
			if org.Description != "" {
				fmt.Fprintln(out, org.Description)
			}
			for _, t := range org.Teams {
				printTeamLine(out, &t)
			}
			return nil
		},
	}
}

func newTeamCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "team <slug>",
		Short: "Show a team's public profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			team, err := loadDetail(cmd.Context(), args[0], c.app.backend.Team)
			if err != nil {
				return err
			}
			printTeamLine(cmd.OutOrStdout(), team)
			return nil
		},
	}
}

// loadDetail validates slug and fetches it through a DetailLoader, so an
// interrupt cancels the request instead of leaving it running.
func loadDetail[T any](ctx context.Context, slug string, fetch backend.Fetcher[T]) (T, error) {
	var zero T
	if errs := validation.ValidateSlug(slug); len(errs) > 0 {
		return zero, fmt.Errorf("invalid slug %q: %s", slug, errs[0].Message)
	}

	loader := backend.NewDetailLoader(fetch)
	defer loader.Close()

	data, err := loader.Load(ctx, slug)
	if err != nil {
		return zero, fmt.Errorf("loading %s: %s", slug, backend.Message(err))
	}
	return data, nil
}

func printTeamLine(out io.Writer, t *backend.Team) {
	line := "  " + t.Name + " (" + t.Slug + ")"
	if t.Sport != "" {
		line += " " + t.Sport
	}
	if t.AgeGroup != "" {
		line += " " + t.AgeGroup
	}
	fmt.Fprintln(out, line)
}

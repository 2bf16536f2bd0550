package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/kanakk365/ysntest-sub001/internal/config"
)

// cli carries the lazily built app between the root command's pre-run hook
// and its subcommands.
type cli struct {
	app *app
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "ysn",
		Short: "Youth Sports Network client",
		Long: `ysn signs you in to the Youth Sports Network platform, remembers the
session between runs, checks which area your role may open and lets you
message other users once your chat identity is established.

Configuration is read from YSN_* environment variables; YSN_BACKEND_URL is
required.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			setupLogger(cfg.LogLevel, cmd.ErrOrStderr())

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}

	root.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newAreaCmd(c),
		newOrgCmd(c),
		newTeamCmd(c),
		newResetCmd(c),
		newChatCmd(c),
	)
	return root
}

func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	c := &cli{}
	defer func() { c.app.close() }()

	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.ExecuteContext(ctx)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/kanakk365/ysntest-sub001/internal/chat"
	"github.com/kanakk365/ysntest-sub001/internal/identity"
	"github.com/kanakk365/ysntest-sub001/internal/reconciler"
	"github.com/kanakk365/ysntest-sub001/internal/session"
)

var errChatDisabled = errors.New("chat is not configured; set YSN_CHAT_API_KEY")

// chatSession is a chat service bound to an established chat identity.
type chatSession struct {
	svc     *chat.Service
	session session.Session
	close   func()
}

// openChat signs in to the chat system as the local session's user and
// registers the user's document.
func (a *app) openChat(ctx context.Context) (*chatSession, error) {
	if a.cfg.ChatAPIKey == "" {
		return nil, errChatDisabled
	}
	s, err := a.requireSession()
	if err != nil {
		return nil, err
	}

	toolkit, bridge := a.chatBridge()

	rec := reconciler.New(a.store, bridge, a.cfg.ReconcileInterval)
	if err := rec.Once(ctx); err != nil {
		return nil, fmt.Errorf("establishing chat identity: %w", err)
	}

	store, closeStore, err := a.chatStore(ctx)
	if err != nil {
		return nil, err
	}

	svc := chat.NewService(bridge, store)
	if _, err := svc.RegisterSelf(ctx, s); err != nil {
		closeStore()
		return nil, fmt.Errorf("registering chat user: %w", err)
	}

	return &chatSession{
		svc:     svc,
		session: s,
		close: func() {
			closeStore()
			_ = toolkit.SignOut(context.Background())
		},
	}, nil
}

func (a *app) chatBridge() (*chat.IdentityToolkit, *identity.Bridge) {
	toolkit := chat.NewIdentityToolkit(a.cfg.ChatAuthURL, a.cfg.ChatAPIKey, a.cfg.RequestTimeout)
	exchanger := identity.NewExchangeClient(a.cfg.ServerURL, a.cfg.RequestTimeout)
	return toolkit, identity.NewBridge(exchanger, toolkit)
}

func (a *app) chatStore(ctx context.Context) (chat.Store, func(), error) {
	if a.cfg.ChatDatabaseURL == "" {
		slog.Warn("YSN_CHAT_DATABASE_URL not set; chat history is kept in memory for this run only")
		return chat.NewMemoryStore(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, a.cfg.ChatDatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to chat database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pinging chat database: %w", err)
	}

	store := chat.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}

func newChatCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Message other users",
		Long: `Message other users through the chat system. The chat identity is
derived from your local account and established before every command.

Commands:
  send     Send a message to a user
  history  Show the conversation with a user
  list     List your conversations
  watch    Keep the chat identity in step with an interactive session`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newChatSendCmd(c), newChatHistoryCmd(c), newChatListCmd(c), newChatWatchCmd(c))
	return cmd
}

func newChatSendCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "send <user-id> <message...>",
		Short:   "Send a message to a user",
		Example: `  ysn chat send 11 "Practice moved to 6pm"`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer, err := parsePeer(args[0])
			if err != nil {
				return err
			}

			cs, err := c.app.openChat(cmd.Context())
			if err != nil {
				return err
			}
			defer cs.close()

			msg, err := cs.svc.Send(cmd.Context(), cs.session, peer, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %s to %s\n", msg.ID, msg.ConversationKey)
			return nil
		},
	}
}

func newChatHistoryCmd(c *cli) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <user-id>",
		Short: "Show the conversation with a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peer, err := parsePeer(args[0])
			if err != nil {
				return err
			}

			cs, err := c.app.openChat(cmd.Context())
			if err != nil {
				return err
			}
			defer cs.close()

			msgs, err := cs.svc.Messages(cmd.Context(), cs.session, peer, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(msgs) == 0 {
				fmt.Fprintln(out, "No messages yet.")
				return nil
			}
			for _, m := range msgs {
				fmt.Fprintf(out, "[%s] %s: %s\n", m.SentAt.Local().Format("2006-01-02 15:04"), m.SenderID, m.Body)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of messages to show")
	return cmd
}

func newChatListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cs, err := c.app.openChat(cmd.Context())
			if err != nil {
				return err
			}
			defer cs.close()

			convs, err := cs.svc.Conversations(cmd.Context(), cs.session)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(convs) == 0 {
				fmt.Fprintln(out, "No conversations.")
				return nil
			}
			for _, conv := range convs {
				fmt.Fprintf(out, "%-24s %s  %s\n", conv.Key, conv.UpdatedAt.Local().Format("2006-01-02 15:04"), conv.LastMessage)
			}
			return nil
		},
	}
}

func parsePeer(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("user id must be a positive integer, got %q", arg)
	}
	if _, err := identity.DeriveForeignID(id); err != nil {
		return 0, err
	}
	return id, nil
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/kanakk365/ysntest-sub001/internal/chat"
	"github.com/kanakk365/ysntest-sub001/internal/identity"
	"github.com/kanakk365/ysntest-sub001/internal/reconciler"
	"github.com/kanakk365/ysntest-sub001/internal/session"
)

// settlePoll is how often a watch command re-checks the bridge while the
// reconciler catches up with a session change.
const settlePoll = 20 * time.Millisecond

var errStillSignedIn = errors.New("chat sign-out pending")

func newChatWatchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the chat identity in step with an interactive session",
		Long: `Start an interactive session. The chat identity follows every login
and logout made here, and failed sign-ins are retried in the background.

Commands are read from standard input, one per line:
  login <email> <password>
  logout
  status
  send <user-id> <message...>
  quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.watch(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

type watcher struct {
	app        *app
	bridge     *identity.Bridge
	svc        *chat.Service
	out        io.Writer
	registered string
}

func (a *app) watch(ctx context.Context, in io.Reader, out io.Writer) error {
	if a.cfg.ChatAPIKey == "" {
		return errChatDisabled
	}

	toolkit, bridge := a.chatBridge()
	store, closeStore, err := a.chatStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	recCtx, stop := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		reconciler.New(a.store, bridge, a.cfg.ReconcileInterval).Start(recCtx)
	}()
	defer func() {
		stop()
		wg.Wait()
		_ = toolkit.SignOut(context.Background())
	}()

	w := &watcher{app: a, bridge: bridge, svc: chat.NewService(bridge, store), out: out}

	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-readCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			args := strings.Fields(line)
			if len(args) == 0 {
				continue
			}
			if args[0] == "quit" || args[0] == "exit" {
				return nil
			}
			w.run(ctx, args)
		}
	}
}

func (w *watcher) run(ctx context.Context, args []string) {
	store := w.app.store

	switch args[0] {
	case "login":
		if len(args) != 3 {
			fmt.Fprintln(w.out, "usage: login <email> <password>")
			return
		}
		if !store.Login(ctx, args[1], args[2]) {
			fmt.Fprintf(w.out, "login failed: %s\n", store.Snapshot().Error)
			return
		}
		s := store.Snapshot()
		fmt.Fprintf(w.out, "Logged in as %s <%s> (%s)\n", s.User.Name, s.User.Email, s.Role())

	case "logout":
		store.Logout(ctx)
		fmt.Fprintln(w.out, "Logged out.")

	case "status":
		s := store.Snapshot()
		id, err := w.settle(ctx, s)
		switch {
		case err != nil:
			fmt.Fprintf(w.out, "chat: not ready (%v)\n", err)
		case !s.Authenticated:
			fmt.Fprintln(w.out, "chat: signed out")
		default:
			fmt.Fprintf(w.out, "chat: ready as %s\n", id)
		}

	case "send":
		if len(args) < 3 {
			fmt.Fprintln(w.out, "usage: send <user-id> <message...>")
			return
		}
		if err := w.send(ctx, args[1], strings.Join(args[2:], " ")); err != nil {
			fmt.Fprintf(w.out, "send failed: %v\n", err)
		}

	default:
		fmt.Fprintf(w.out, "unknown command %q\n", args[0])
	}
}

func (w *watcher) send(ctx context.Context, peerArg, body string) error {
	peer, err := parsePeer(peerArg)
	if err != nil {
		return err
	}
	s, err := w.app.requireSession()
	if err != nil {
		return err
	}

	me, err := w.settle(ctx, s)
	if err != nil {
		return err
	}
	if w.registered != me {
		if _, err := w.svc.RegisterSelf(ctx, s); err != nil {
			return err
		}
		w.registered = me
	}

	msg, err := w.svc.Send(ctx, s, peer, body)
	if err != nil {
		return err
	}
	fmt.Fprintf(w.out, "Sent %s to %s\n", msg.ID, msg.ConversationKey)
	return nil
}

// settle waits, up to the request timeout, for the reconciler to bring the
// bridge in line with s. It returns the chat id for a logged-in session.
func (w *watcher) settle(ctx context.Context, s session.Session) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, w.app.cfg.RequestTimeout)
	defer cancel()

	ticker := time.NewTicker(settlePoll)
	defer ticker.Stop()

	for {
		id, err := w.matches(s)
		if err == nil {
			return id, nil
		}
		select {
		case <-ctx.Done():
			return "", err
		case <-ticker.C:
		}
	}
}

func (w *watcher) matches(s session.Session) (string, error) {
	if s.Authenticated {
		return w.bridge.RequireReady(s.UserID())
	}
	if w.bridge.Ready() {
		return "", errStillSignedIn
	}
	return "", nil
}

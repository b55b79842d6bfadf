package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/snapsync/internal/client/push"
	"github.com/iudanet/snapsync/internal/client/session"
)

func (c *Cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep presence and unread count in sync until interrupted",
		Long: "Runs the heartbeat and the unread synchronizer for the logged-in viewer. " +
			"Login and logout from another process are picked up from the session file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			ident := c.identity()
			client := c.apiClient(ident)
			ws := push.NewWSClient(push.WSConfig{
				Tokens:   ident,
				Identity: ident,
				URL:      c.cfg.PushEndpoint(),
			}, c.logger)

			manager := session.NewManager(ident, session.Deps{
				Emitter:           client,
				Lister:            client,
				Push:              ws,
				Logger:            c.logger,
				Unread:            c.unreadConfig(),
				HeartbeatInterval: c.cfg.Presence.HeartbeatInterval.Duration,
			}, c.logger)

			manager.OnSession(func(s *session.Session) {
				if s == nil {
					c.io.Println("Session ended")
					return
				}
				c.io.Printf("✓ Watching as %s\n", s.ViewerID())
				s.Unread().OnChange(func(count int) {
					c.io.Printf("Unread messages: %d\n", count)
				})
			})

			if _, ok := ident.Current(); !ok {
				c.io.Println("Not logged in, waiting for login...")
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return ident.Run(ctx) })
			g.Go(func() error { return ws.Run(ctx) })
			g.Go(func() error { return manager.Run(ctx) })

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			c.io.Println("Stopped.")
			return nil
		},
	}
}

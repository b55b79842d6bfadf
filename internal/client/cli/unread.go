package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/snapsync/internal/client/unread"
)

func (c *Cli) unreadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unread",
		Short: "Print the total number of unread messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ident, viewerID, err := c.requireViewer()
			if err != nil {
				return err
			}

			// без push: один опрос и выход
			syncer := unread.NewSynchronizer(c.apiClient(ident), nil, c.unreadConfig(), c.logger)
			if err := syncer.Start(ctx, viewerID); err != nil {
				return fmt.Errorf("failed to start unread sync: %w", err)
			}
			defer syncer.Stop()

			if err := syncer.Refresh(ctx); err != nil {
				return fmt.Errorf("failed to load conversations: %w", err)
			}

			c.io.Printf("Unread messages: %d\n", syncer.Count())
			return nil
		},
	}
}

func (c *Cli) unreadConfig() unread.Config {
	return unread.Config{
		PollInterval:   c.cfg.Unread.PollInterval.Duration,
		RequestTimeout: c.cfg.Server.RequestTimeout.Duration,
		PageSize:       c.cfg.Unread.PageSize,
	}
}

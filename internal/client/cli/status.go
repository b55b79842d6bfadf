package cli

import (
	"time"

	"github.com/spf13/cobra"
)

func (c *Cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session and configuration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.io.Println("=== Status ===")
			c.io.Printf("Server: %s\n", c.cfg.Server.URL)
			c.io.Printf("Push:   %s\n", c.cfg.PushEndpoint())
			c.io.Printf("Store:  %s (%s)\n", c.cfg.Store.Backend, c.cfg.Store.Path)
			c.io.Println()

			ident := c.identity()
			viewerID, ok := ident.Current()
			if !ok {
				c.io.Println("Status: Not authenticated")
				c.io.Println()
				c.io.Println("Run 'snapsync login' to authenticate.")
				return nil
			}

			c.io.Println("Status: Authenticated")
			c.io.Printf("Viewer: %s\n", viewerID)
			if exp, ok := ident.ExpiresAt(); ok {
				c.io.Printf("Token expires: %s\n", exp.Format(time.RFC3339))
				c.io.Printf("Time remaining: %s\n", time.Until(exp).Round(time.Second))
			}
			return nil
		},
	}
}

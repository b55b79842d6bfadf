package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *Cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.io.Println("=== Logout ===")

			if err := c.identity().Remove(); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}

			c.io.Println("✓ Logout successful!")
			c.io.Println("Your local session has been deleted.")
			return nil
		},
	}
}

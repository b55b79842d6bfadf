package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (c *Cli) loginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the access token of a viewer",
		Long:  "Stores a session token issued by the web login flow. The token is read without echo unless --token is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.io.Println("=== Login ===")

			if token == "" {
				var err error
				token, err = c.io.ReadSecret("Access token: ")
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}
			}

			ident := c.identity()
			if err := ident.Save(token); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			viewerID, ok := ident.Current()
			if !ok {
				return fmt.Errorf("login failed: token has already expired")
			}

			c.io.Printf("✓ Logged in as %s\n", viewerID)
			if exp, ok := ident.ExpiresAt(); ok {
				c.io.Printf("Token expires: %s\n", exp.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Access token (prompted when empty)")
	return cmd
}

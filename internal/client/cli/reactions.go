package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/snapsync/internal/client/reactions"
	"github.com/iudanet/snapsync/internal/crdt"
	"github.com/iudanet/snapsync/internal/models"
)

func (c *Cli) reactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reactions",
		Short: "Show or change reactions on posts and comments",
	}
	cmd.AddCommand(c.reactionsShowCmd(), c.reactionsSetCmd())
	return cmd
}

// withReactions opens the store and builds the reaction service for one command.
func (c *Cli) withReactions(cmd *cobra.Command, fn func(*reactions.Service) error) error {
	ident, _, err := c.requireViewer()
	if err != nil {
		return err
	}

	store, closeStore, err := c.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer c.closeStore(closeStore)

	cache := reactions.NewCache(store, crdt.NewClock(), c.logger)
	return fn(reactions.NewService(c.apiClient(ident), cache, c.logger))
}

func (c *Cli) reactionsShowCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "show <entity-id>",
		Short: "Show the reaction summary of a post or comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReactions(cmd, func(svc *reactions.Service) error {
				get := svc.Get
				if refresh {
					get = svc.Fetch
				}
				entry, err := get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				c.printEntry(entry)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the local cache")
	return cmd
}

func (c *Cli) reactionsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <entity-id> <kind|none>",
		Short: "React to a post or comment",
		Long:  "Sets the viewer's reaction. Valid kinds: like, love, laugh, wow, sad, angry. Use none to clear it.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := models.ParseReactionKind(args[1])
			if err != nil {
				return err
			}

			return c.withReactions(cmd, func(svc *reactions.Service) error {
				entry, err := svc.React(cmd.Context(), args[0], kind)
				if err != nil {
					return fmt.Errorf("failed to react: %w", err)
				}
				c.io.Println("✓ Reaction saved")
				c.printEntry(entry)
				return nil
			})
		},
	}
}

func (c *Cli) printEntry(entry models.ReactionEntry) {
	c.io.Printf("Entity: %s\n", entry.EntityID)
	for _, kind := range models.AllReactionKinds {
		c.io.Printf("  %-6s %d\n", kind, entry.Counts[kind])
	}
	yours := string(entry.ViewerReaction)
	if yours == "" {
		yours = "none"
	}
	c.io.Printf("Your reaction: %s\n", yours)
	c.io.Printf("Updated: %s\n", time.UnixMilli(entry.UpdatedAt).Format(time.RFC3339))
}

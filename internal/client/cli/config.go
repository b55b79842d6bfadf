package cli

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/iudanet/snapsync/internal/config"
)

func (c *Cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit the configuration file",
	}
	cmd.AddCommand(c.configShowCmd(), c.configSetCmd())
	return cmd
}

func (c *Cli) configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := toml.Marshal(c.cfg)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			c.io.Printf("# %s\n", c.flags.configPath)
			_, err = c.io.Write(data)
			return err
		},
	}
}

func (c *Cli) configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value (e.g. server.url)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// только файл: переменные окружения и флаги не должны попасть на диск
			cfg, err := config.LoadFile(c.flags.configPath)
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Save(c.flags.configPath); err != nil {
				return err
			}
			c.io.Printf("✓ Set %s = %s\n", args[0], args[1])
			return nil
		},
	}
}

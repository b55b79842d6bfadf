package cli

import "github.com/spf13/cobra"

func (c *Cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// версия не требует конфигурации
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			c.io.Printf("snapsync client\n")
			c.io.Printf("Version:    %s\n", c.version.Version)
			c.io.Printf("Build Date: %s\n", c.version.BuildDate)
			c.io.Printf("Git Commit: %s\n", c.version.GitCommit)
		},
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"aaronromeo.com/inboxpilot/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and print a redacted summary",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), config.Summary(cfg))
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration OK")
		return nil
	},
}

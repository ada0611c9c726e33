package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"aaronromeo.com/inboxpilot/pkg/models/message"
	"aaronromeo.com/inboxpilot/pkg/utils"
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Inspect and prepare the message metadata table",
}

var mirrorInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the metadata table if it does not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg.Mirror.EnsureTable = true

		ctx := commandContext(cmd)
		logger := utils.NewLogger(cmd.ErrOrStderr(), cfg.Log.Level, false)
		if _, err := newMirror(ctx, cfg, logger); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Table %q is ready\n", cfg.Mirror.Table)
		return nil
	},
}

var mirrorGetCmd = &cobra.Command{
	Use:   "get <message-id>",
	Short: "Print the mirrored metadata for one message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx := commandContext(cmd)
		logger := utils.NewLogger(cmd.ErrOrStderr(), cfg.Log.Level, false)
		mirror, err := newMirror(ctx, cfg, logger)
		if err != nil {
			return err
		}

		id := message.ID(args[0])
		rec, found, err := mirror.Get(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no metadata recorded for %s", id)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	mirrorCmd.AddCommand(mirrorInitCmd)
	mirrorCmd.AddCommand(mirrorGetCmd)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

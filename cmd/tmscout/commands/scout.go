package commands

import (
	"fmt"
	"log/slog"

	"tmscout-backend/lib/serviceutil"
	"tmscout-backend/lib/textutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(scoutCmd)
}

var scoutCmd = &cobra.Command{
	Use:   "scout <team id or squad page url>",
	Short: "Merges an opponent squad's attributes into the players table.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := loadConfig()

		client := newSiteClient(ctx, cfg)
		store, sqldb := openStore(cfg)
		defer sqldb.Close()

		target := args[0]
		if !textutil.IsDigits(target) {
			return fmt.Errorf("team id must be numeric, got %q (pass a bare id)", target)
		}
		target = client.TeamURL(target)

		pipeline := newPipeline(client, store, cfg)
		result, err := pipeline.ScoutTeam(ctx, target)
		if err != nil {
			serviceutil.Fatal("scout run failed", err)
		}
		slog.Info("scout complete", "players", len(result.Entries), "failed", result.Failed)
		return nil
	},
}

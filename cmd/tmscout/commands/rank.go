package commands

import (
	"os"

	"tmscout-backend/lib/serviceutil"
	"tmscout-backend/services/market"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	rankFunds  *int64
	rankNotify *bool
)

func init() {
	rankFunds = rankCmd.Flags().Int64("funds", 0, "Budget ceiling, overrides the configured one.")
	rankNotify = rankCmd.Flags().Bool("notify", false, "Send the digest to Telegram as well.")
	rootCmd.AddCommand(rankCmd)
}

var rankCmd = &cobra.Command{
	Use:   "rank [--funds <baht>] [--notify]",
	Short: "Ranks the stored market snapshot without scraping.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		store, sqldb := openStore(cfg)
		defer sqldb.Close()

		entries, err := store.Market(ctx)
		if err != nil {
			serviceutil.Fatal("failed to read market", err)
		}

		funds := cfg.Rank.Funds
		if *rankFunds > 0 {
			funds = *rankFunds
		}
		candidates := market.Rank(entries, rankOptions(cfg, funds))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"#", "Name", "Pos", "Age", "Buy", "Forecast", "ROI %", "Deadline",
		})
		for i, c := range candidates {
			t.AppendRow(table.Row{
				i + 1, c.Name, c.Position, c.Age,
				c.Snapshot.BuyPrice, c.Snapshot.ForecastSell,
				c.Snapshot.RoiPercent, c.Deadline.Format("Mon 15:04"),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()

		if *rankNotify {
			err := market.Notify(ctx, newNotifier(cfg), candidates, funds)
			if err != nil {
				serviceutil.Fatal("failed to send digest", err)
			}
		}
	},
}

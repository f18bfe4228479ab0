package commands

import (
	"log/slog"
	"os"
	"time"

	"tmscout-backend/lib/serviceutil"
	"tmscout-backend/services/market"

	"github.com/spf13/cobra"
)

var (
	scrapeCsv    *string
	scrapeNotify *bool
)

func init() {
	scrapeCsv = scrapeCmd.Flags().String("csv", "", "Also export the run to a csv file.")
	scrapeNotify = scrapeCmd.Flags().Bool("notify", false, "Send the ranked digest to Telegram afterwards.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--csv <path/to/out.csv>] [--notify]",
	Short: "Runs one full market pass: crawl, extract, merge, rank.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		client := newSiteClient(ctx, cfg)
		store, sqldb := openStore(cfg)
		defer sqldb.Close()

		pipeline := newPipeline(client, store, cfg)

		t1 := time.Now()
		result, err := pipeline.Run(ctx)
		if err != nil {
			serviceutil.Fatal("market run failed", err)
		}
		t2 := time.Now()
		slog.Info("scraping time", "seconds", t2.Sub(t1).Seconds())

		if *scrapeCsv != "" {
			f, err := os.Create(*scrapeCsv)
			if err != nil {
				serviceutil.Fatal("failed to create csv file", err)
			}
			defer f.Close()
			if err := market.WriteCsv(f, result.Entries); err != nil {
				serviceutil.Fatal("failed to write csv", err)
			}
			slog.Info("wrote csv", "path", *scrapeCsv, "entries", len(result.Entries))
		}

		if *scrapeNotify {
			funds, err := resolveFunds(ctx, cfg, client)
			if err != nil {
				serviceutil.Fatal("failed to fetch team info for funds", err)
			}
			candidates := market.Rank(result.Entries, rankOptions(cfg, funds))
			err = market.Notify(ctx, newNotifier(cfg), candidates, funds)
			if err != nil {
				serviceutil.Fatal("failed to send digest", err)
			}
		}
	},
}

package commands

import (
	"context"
	"errors"
	"log/slog"

	"tmscout-backend/lib/serviceutil"
	"tmscout-backend/lib/telegram"
	"tmscout-backend/lib/telemetry"
	"tmscout-backend/services/market"
	"tmscout-backend/services/scout"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs market passes on a cron schedule and answers the Telegram bot.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := serviceutil.SignalContext()
		telemetry.InstrumentPerfStats(ctx)
		cfg := loadConfig()

		if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatId == "" {
			serviceutil.Fatal("serve requires telegram to be configured", errors.New("missing bot_token or chat_id"))
		}

		client := newSiteClient(ctx, cfg)
		store, sqldb := openStore(cfg)
		defer sqldb.Close()

		pipeline := newPipeline(client, store, cfg)
		notifier := newNotifier(cfg)

		runOnce := func() {
			result, err := pipeline.Run(ctx)
			if err != nil {
				slog.Error("scheduled market run failed", "err", err)
				return
			}
			funds, err := resolveFunds(ctx, cfg, client)
			if err != nil {
				slog.Error("failed to fetch team info for funds", "err", err)
				return
			}
			candidates := market.Rank(result.Entries, rankOptions(cfg, funds))
			err = market.Notify(ctx, notifier, candidates, funds)
			if err != nil {
				slog.Error("failed to send digest", "err", err)
			}
		}

		scheduler := cron.New()
		if cfg.Cron != "" {
			_, err := scheduler.AddFunc(cfg.Cron, runOnce)
			if err != nil {
				serviceutil.Fatal("invalid cron spec", err)
			}
			scheduler.Start()
			defer scheduler.Stop()
			slog.Info("scheduled market runs", "cron", cfg.Cron)
		}

		bot := scout.NewBot(
			telegram.NewClient(telegram.ClientOptions{Token: cfg.Telegram.BotToken}),
			pipeline,
			scout.BotOptions{
				ChatId:  cfg.Telegram.ChatId,
				TeamUrl: client.TeamURL,
			},
		)
		err := bot.Run(ctx)
		if err != nil && err != context.Canceled {
			serviceutil.Fatal("bot exited", err)
		}
	},
}

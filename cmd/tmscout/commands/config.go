package commands

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tmscout-backend/lib/configutil"
	"tmscout-backend/lib/scrapers/pmanager"
	"tmscout-backend/lib/serviceutil"
	"tmscout-backend/lib/sqliteutil"
	"tmscout-backend/services/market"
	"tmscout-backend/services/market/db"
)

type SiteConfig struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
	// TeamId is our own team, used to pull available funds.
	TeamId string `json:"team_id"`
}

type TelegramConfig struct {
	BotToken string `json:"bot_token"`
	ChatId   string `json:"chat_id"`
}

type PipelineConfig struct {
	MaxPages  int                     `json:"max_pages"`
	Workers   int                     `json:"workers"`
	Scenarios []pmanager.SearchFilter `json:"scenarios"`
}

type RankConfig struct {
	// Funds overrides the scraped team funds when non-zero.
	Funds       int64 `json:"funds"`
	WindowHours int   `json:"window_hours"`
	TopN        int   `json:"top_n"`
	// SiteUtcOffsetHours, when non-zero, interprets site deadline times
	// in that fixed UTC offset instead of the pipeline timezone.
	SiteUtcOffsetHours int `json:"site_utc_offset_hours"`
}

type Config struct {
	Site     SiteConfig     `json:"site"`
	Database string         `json:"database"`
	Telegram TelegramConfig `json:"telegram"`
	Pipeline PipelineConfig `json:"pipeline"`
	Rank     RankConfig     `json:"rank"`
	// Cron schedules market runs in serve mode, standard 5-field spec.
	Cron string `json:"cron"`
}

func loadConfig() Config {
	cfg, err := configutil.ReadConfig[Config](*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.Database == "" {
		cfg.Database = "tmscout.db"
	}
	return cfg
}

func newSiteClient(ctx context.Context, cfg Config) *pmanager.Client {
	ctx, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	client, err := pmanager.NewClient(ctx, pmanager.ClientOptions{
		BaseUrl: cfg.Site.BaseUrl,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize site client", err)
	}
	err = client.Login(ctx, cfg.Site.Username, cfg.Site.Password)
	if err != nil {
		serviceutil.Fatal("failed to login", err)
	}
	return client
}

func openStore(cfg Config) (*market.Store, *sql.DB) {
	sqldb, err := sqliteutil.OpenDB(db.Schema, cfg.Database)
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}
	return market.NewStore(sqldb), sqldb
}

func newPipeline(client *pmanager.Client, store *market.Store, cfg Config) *market.Pipeline {
	return market.NewPipeline(client, store, market.PipelineOptions{
		Scenarios: cfg.Pipeline.Scenarios,
		MaxPages:  cfg.Pipeline.MaxPages,
		Workers:   cfg.Pipeline.Workers,
	})
}

// resolveFunds prefers the configured budget, falling back to the
// team's scraped available funds.
func resolveFunds(ctx context.Context, cfg Config, client *pmanager.Client) (int64, error) {
	if cfg.Rank.Funds > 0 {
		return cfg.Rank.Funds, nil
	}
	info, err := client.TeamInfo(ctx)
	if err != nil {
		return 0, err
	}
	return info.AvailableFundsInt, nil
}

func rankOptions(cfg Config, funds int64) market.RankOptions {
	opts := market.RankOptions{
		Funds:  funds,
		Window: time.Duration(cfg.Rank.WindowHours) * time.Hour,
		TopN:   cfg.Rank.TopN,
	}
	if offset := cfg.Rank.SiteUtcOffsetHours; offset != 0 {
		opts.Location = time.FixedZone(fmt.Sprintf("UTC%+d", offset), offset*60*60)
	}
	return opts
}

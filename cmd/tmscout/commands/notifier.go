package commands

import (
	"context"

	"tmscout-backend/lib/telegram"
	"tmscout-backend/services/market"
)

type telegramNotifier struct {
	tg     *telegram.Client
	chatId string
}

func (n telegramNotifier) Send(ctx context.Context, text string, markdown bool) error {
	return n.tg.SendMessage(ctx, n.chatId, text, markdown)
}

// newNotifier returns nil when telegram isn't configured, the digest is
// then skipped silently.
func newNotifier(cfg Config) market.Notifier {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatId == "" {
		return nil
	}
	return telegramNotifier{
		tg:     telegram.NewClient(telegram.ClientOptions{Token: cfg.Telegram.BotToken}),
		chatId: cfg.Telegram.ChatId,
	}
}

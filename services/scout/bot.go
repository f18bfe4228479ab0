// Package scout runs the Telegram bot that triggers squad scouting on
// demand.
package scout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tmscout-backend/lib/telegram"
	"tmscout-backend/lib/textutil"
	"tmscout-backend/lib/timezone"
	"tmscout-backend/services/market"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("services/scout")

const pollTimeout = 25 // seconds, server-side long-poll hold

// TeamScouter is the one pipeline operation the bot drives.
type TeamScouter interface {
	ScoutTeam(ctx context.Context, teamUrl string) (market.RunResult, error)
}

type BotOptions struct {
	// ChatId is the only chat the bot answers. Messages from anywhere
	// else are dropped.
	ChatId string
	// TeamUrl builds a squad page link from a bare team id.
	TeamUrl func(teamId string) string
}

type Bot struct {
	tg      *telegram.Client
	scouter TeamScouter
	opts    BotOptions

	lastScout  time.Time
	lastResult market.RunResult
}

func NewBot(tg *telegram.Client, scouter TeamScouter, opts BotOptions) *Bot {
	return &Bot{tg: tg, scouter: scouter, opts: opts}
}

// Run long-polls for commands until the context is canceled. Poll
// failures back off and retry, the bot never exits on a transient
// Telegram error.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64
	for {
		updates, err := b.tg.GetUpdates(ctx, offset, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.WarnContext(ctx, "update poll failed", "err", err)
			select {
			case <-time.After(time.Second * 5):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		for _, update := range updates {
			if update.UpdateId >= offset {
				offset = update.UpdateId + 1
			}
			if fmt.Sprint(update.Message.Chat.Id) != b.opts.ChatId {
				continue
			}
			reply := b.handle(ctx, update.Message.Text)
			if reply == "" {
				continue
			}
			if err := b.tg.SendMessage(ctx, b.opts.ChatId, reply, false); err != nil {
				slog.WarnContext(ctx, "failed to send reply", "err", err)
			}
		}
	}
}

func (b *Bot) handle(ctx context.Context, text string) string {
	ctx, span := tracer.Start(ctx, "bot:handle")
	defer span.End()

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}

	switch fields[0] {
	case "/scout":
		if len(fields) < 2 {
			return "Usage: /scout <team id or squad page url>"
		}
		return b.scout(ctx, fields[1])
	case "/status":
		if b.lastScout.IsZero() {
			return "No scout runs yet."
		}
		return fmt.Sprintf("Last scout %s: %d players merged, %d failed.",
			b.lastScout.Format("2006-01-02 15:04"),
			len(b.lastResult.Entries), b.lastResult.Failed)
	case "/help":
		return "Commands:\n/scout <team id or url>\n/status\n/help"
	default:
		return ""
	}
}

func (b *Bot) scout(ctx context.Context, raw string) string {
	target, err := b.ResolveTarget(raw)
	if err != nil {
		return err.Error()
	}

	result, err := b.scouter.ScoutTeam(ctx, target)
	if err != nil {
		slog.WarnContext(ctx, "scout run failed", "target", target, "err", err)
		return fmt.Sprintf("Scout failed: %v", err)
	}

	b.lastScout = timezone.Now()
	b.lastResult = result
	return fmt.Sprintf("Scouted %d players (%d failed).", len(result.Entries), result.Failed)
}

// ResolveTarget turns a user-supplied target into a squad page url.
// Anything that isn't a squad page url must be a bare numeric team id,
// free text never reaches the site.
func (b *Bot) ResolveTarget(raw string) (string, error) {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		if !strings.Contains(raw, "ver_equipa.asp") {
			return "", fmt.Errorf("not a squad page url: %s", raw)
		}
		return raw, nil
	}
	if !textutil.IsDigits(raw) {
		return "", fmt.Errorf("team id must be numeric, got %q", raw)
	}
	return b.opts.TeamUrl(raw), nil
}

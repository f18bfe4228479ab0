package scout

import (
	"context"
	"fmt"
	"testing"

	"tmscout-backend/lib/telemetry"
	"tmscout-backend/services/market"

	"github.com/stretchr/testify/require"
)

type fakeScouter struct {
	scouted []string
	result  market.RunResult
	err     error
}

func (f *fakeScouter) ScoutTeam(ctx context.Context, teamUrl string) (market.RunResult, error) {
	f.scouted = append(f.scouted, teamUrl)
	return f.result, f.err
}

func newTestBot(t *testing.T, scouter *fakeScouter) *Bot {
	cleanup := telemetry.SetupForTesting(t, "test:services/scout")
	t.Cleanup(cleanup)

	return NewBot(nil, scouter, BotOptions{
		ChatId: "99",
		TeamUrl: func(teamId string) string {
			return fmt.Sprintf("http://site/ver_equipa.asp?equipa=%s&vjog=1", teamId)
		},
	})
}

func TestResolveTarget(t *testing.T) {
	bot := newTestBot(t, &fakeScouter{})

	target, err := bot.ResolveTarget("35126")
	require.NoError(t, err)
	require.Equal(t, "http://site/ver_equipa.asp?equipa=35126&vjog=1", target)

	target, err = bot.ResolveTarget("http://site/ver_equipa.asp?equipa=7&vjog=1")
	require.NoError(t, err)
	require.Equal(t, "http://site/ver_equipa.asp?equipa=7&vjog=1", target)

	// free text must never be spliced into a site url
	_, err = bot.ResolveTarget("35126&vjog=1")
	require.Error(t, err)
	_, err = bot.ResolveTarget("drop table")
	require.Error(t, err)
	_, err = bot.ResolveTarget("http://site/ver_jogador.asp?jog_id=42")
	require.Error(t, err)
}

func TestHandleScout(t *testing.T) {
	scouter := &fakeScouter{result: market.RunResult{
		Entries: []market.Entry{{Id: "1"}, {Id: "2"}},
		Failed:  1,
	}}
	bot := newTestBot(t, scouter)

	reply := bot.handle(context.Background(), "/scout 35126")
	require.Equal(t, "Scouted 2 players (1 failed).", reply)
	require.Equal(t, []string{"http://site/ver_equipa.asp?equipa=35126&vjog=1"}, scouter.scouted)

	// status now reports the run
	reply = bot.handle(context.Background(), "/status")
	require.Contains(t, reply, "2 players merged, 1 failed")
}

func TestHandleScoutMissingArgument(t *testing.T) {
	scouter := &fakeScouter{}
	bot := newTestBot(t, scouter)

	reply := bot.handle(context.Background(), "/scout")
	require.Contains(t, reply, "Usage")
	require.Empty(t, scouter.scouted)
}

func TestHandleScoutFailure(t *testing.T) {
	scouter := &fakeScouter{err: fmt.Errorf("squad page unreachable")}
	bot := newTestBot(t, scouter)

	reply := bot.handle(context.Background(), "/scout 35126")
	require.Contains(t, reply, "Scout failed")
}

func TestHandleIgnoresChatter(t *testing.T) {
	bot := newTestBot(t, &fakeScouter{})

	require.Equal(t, "", bot.handle(context.Background(), "good morning"))
	require.Equal(t, "", bot.handle(context.Background(), ""))
	require.Contains(t, bot.handle(context.Background(), "/status"), "No scout runs yet")
	require.Contains(t, bot.handle(context.Background(), "/help"), "/scout")
}

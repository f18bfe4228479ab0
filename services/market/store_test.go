package market

import (
	"context"
	"testing"
	"time"

	"tmscout-backend/lib/scrapers/pmanager"
	"tmscout-backend/lib/testutil"
	"tmscout-backend/services/market/db"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	service, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/market",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)
	return NewStore(service.DB)
}

func storeEntry(id, name string, forecast int64) Entry {
	return Entry{
		Id:   id,
		Name: name,
		Age:  24,
		Skills: map[string]pmanager.SkillValue{
			"Speed": pmanager.NumberSkill(14),
		},
		Snapshot:    Snapshot{ForecastSell: forecast},
		LastUpdated: time.Unix(1700000000, 0),
	}
}

func TestUpsertPlayersMerges(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := store.UpsertPlayers(ctx, []Entry{
		storeEntry("a", "Anan", 0),
		storeEntry("b", "Boon", 0),
	})
	require.NoError(t, err)

	// second run re-sees b with new data and discovers c
	updated := storeEntry("b", "Boonmee", 0)
	updated.Age = 25
	err = store.UpsertPlayers(ctx, []Entry{updated, storeEntry("c", "Chai", 0)})
	require.NoError(t, err)

	players, err := store.Players(ctx)
	require.NoError(t, err)
	require.Len(t, players, 3)
	require.Equal(t, "a", players[0].Id)
	require.Equal(t, "Anan", players[0].Name)
	require.Equal(t, "Boonmee", players[1].Name)
	require.Equal(t, 25, players[1].Age)
	require.Equal(t, "Chai", players[2].Name)
	require.Equal(t, pmanager.NumberSkill(14), players[0].Skills["Speed"])
}

func TestReplaceMarketDropsPreviousRun(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := store.ReplaceMarket(ctx, []Entry{
		storeEntry("a", "Anan", 100),
		storeEntry("b", "Boon", 200),
	})
	require.NoError(t, err)

	err = store.ReplaceMarket(ctx, []Entry{storeEntry("c", "Chai", 300)})
	require.NoError(t, err)

	entries, err := store.Market(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "c", entries[0].Id)
}

func TestMarketOrderedByForecast(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := store.ReplaceMarket(ctx, []Entry{
		storeEntry("low", "Low", 100),
		storeEntry("high", "High", 900),
		storeEntry("mid", "Mid", 500),
	})
	require.NoError(t, err)

	entries, err := store.Market(ctx)
	require.NoError(t, err)
	require.Equal(t, "high", entries[0].Id)
	require.Equal(t, "mid", entries[1].Id)
	require.Equal(t, "low", entries[2].Id)
}

func TestMarketRoundTripsEntry(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	entry := Entry{
		Id:          "42",
		Name:        "Somsak",
		Position:    "Forward",
		Age:         24,
		Nationality: "Thailand",
		Quality:     "Formidable",
		Potential:   "Good",
		Skills: map[string]pmanager.SkillValue{
			"Speed":   pmanager.NumberSkill(14),
			"Fitness": pmanager.TextSkill("Completely Fit"),
		},
		Url: "http://site/ver_jogador.asp?jog_id=42",
		Snapshot: ComputeMetrics(RawSnapshot{
			EstimatedValue: 1000000,
			AskingPrice:    300000,
			BidsCount:      4,
			BidsAverage:    250000,
			DeadlineText:   "Today at 14:00",
		}),
		LastUpdated: time.Unix(1700000000, 0),
	}

	require.NoError(t, store.ReplaceMarket(ctx, []Entry{entry}))
	entries, err := store.Market(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	if diff := cmp.Diff(entry, entries[0]); diff != "" {
		t.Fatalf("entry changed across the store round trip:\n%s", diff)
	}
}

func TestStoreNormalizesIds(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := store.UpsertPlayers(ctx, []Entry{storeEntry(" 42 ", "Anan", 0)})
	require.NoError(t, err)
	err = store.UpsertPlayers(ctx, []Entry{storeEntry("42", "Anan", 0)})
	require.NoError(t, err)

	players, err := store.Players(ctx)
	require.NoError(t, err)
	require.Len(t, players, 1)
	require.Equal(t, "42", players[0].Id)
}

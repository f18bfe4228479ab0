package market

import (
	"strings"
	"time"

	"tmscout-backend/lib/scrapers/pmanager"
)

// RawSnapshot is the financial facet of a listing exactly as extracted,
// before any economics are derived.
type RawSnapshot struct {
	EstimatedValue int64  `json:"estimated_value"`
	AskingPrice    int64  `json:"asking_price"`
	BidsCount      int64  `json:"bids_count"`
	BidsAverage    int64  `json:"bids_average"`
	DeadlineText   string `json:"deadline"`
}

// Snapshot is a RawSnapshot plus the derived trade economics. The four
// derived fields are always recomputed together from the same raw
// snapshot, a snapshot is never patched field by field.
type Snapshot struct {
	RawSnapshot

	BuyPrice     int64   `json:"buy_price"`
	ValueDiff    int64   `json:"value_diff"`
	RoiPercent   float64 `json:"roi"`
	ForecastSell int64   `json:"forecast_sell"`
}

// Entry is one market listing: identity, descriptive attributes, the
// open-ended skill map and the latest snapshot. Re-created wholesale on
// every scrape of the same id.
type Entry struct {
	Id          string
	Name        string
	Position    string
	Age         int
	Nationality string
	Quality     string
	Potential   string
	Skills      map[string]pmanager.SkillValue
	Url         string

	Snapshot    Snapshot
	LastUpdated time.Time
}

// Candidate is an entry that survived ranking, paired with its resolved
// deadline. It only lives for one ranking pass.
type Candidate struct {
	Entry
	Deadline time.Time
}

// NormalizeId canonicalizes an identifier to its string form so that
// rows keyed "42" and rows keyed 42 by an earlier tool never coexist.
func NormalizeId(id string) string {
	return strings.TrimSpace(id)
}

// EntryFromPlayer flattens a scraped player into an entry with its
// economics computed.
func EntryFromPlayer(p pmanager.Player, now time.Time) Entry {
	raw := RawSnapshot{
		EstimatedValue: p.Negotiation.EstimatedValue,
		AskingPrice:    p.Negotiation.AskingPrice,
		BidsCount:      p.Negotiation.BidsCount,
		BidsAverage:    p.Negotiation.BidsAverage,
		DeadlineText:   p.Negotiation.Deadline,
	}
	return Entry{
		Id:          NormalizeId(p.Profile.Id),
		Name:        p.Profile.Name,
		Position:    p.Profile.Position,
		Age:         p.Profile.Age,
		Nationality: p.Profile.Nationality,
		Quality:     p.Profile.Quality,
		Potential:   p.Profile.Potential,
		Skills:      p.Profile.Skills,
		Url:         p.Profile.Url,
		Snapshot:    ComputeMetrics(raw),
		LastUpdated: now,
	}
}

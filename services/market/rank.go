package market

import (
	"sort"
	"time"
)

// DefaultTopN caps the ranked shortlist. Anything longer stops being a
// shortlist.
const DefaultTopN = 15

type RankOptions struct {
	// Funds is the budget ceiling. Entries whose buy price exceeds it
	// are dropped.
	Funds int64
	// Window drops entries whose resolved deadline is further out than
	// now+Window. Zero disables the window filter, unresolved deadlines
	// are always dropped.
	Window time.Duration
	// Now anchors deadline resolution. Zero means the pipeline clock.
	Now time.Time
	// TopN caps the result, zero means DefaultTopN.
	TopN int
	// Location overrides the deadline resolution zone when set.
	Location *time.Location
}

// Rank filters entries down to actionable trades and orders them by
// forecast profit, best first. The sort is stable so equal-profit
// entries keep their snapshot order. The input slice is not modified.
func Rank(entries []Entry, opts RankOptions) []Candidate {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		if entry.Snapshot.BuyPrice > opts.Funds {
			continue
		}
		if entry.Snapshot.ForecastSell <= 0 {
			continue
		}

		var deadline time.Time
		var ok bool
		if opts.Location != nil {
			deadline, ok = ResolveDeadlineIn(entry.Snapshot.DeadlineText, now, opts.Location)
		} else {
			deadline, ok = ResolveDeadline(entry.Snapshot.DeadlineText, now)
		}
		if !ok {
			continue
		}
		// an expired deadline is never actionable, window or not
		if !deadline.After(now) {
			continue
		}
		if opts.Window > 0 && deadline.After(now.Add(opts.Window)) {
			continue
		}

		candidates = append(candidates, Candidate{Entry: entry, Deadline: deadline})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Snapshot.ForecastSell > candidates[j].Snapshot.ForecastSell
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates
}

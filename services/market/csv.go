package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// csvColumns is the fixed prefix of the export, ordered the way a
// reader triages: identity, economics, deadline, raw figures.
var csvColumns = []string{
	"id", "name", "position", "age", "nationality", "quality", "potential",
	"forecast_sell", "roi", "value_diff", "buy_price", "deadline",
	"estimated_value", "asking_price", "bids_count", "bids_average",
	"url",
}

// WriteCsv exports entries with the fixed columns first and the union
// of observed skill names, sorted, after them. An entry missing a skill
// gets an empty cell.
func WriteCsv(w io.Writer, entries []Entry) error {
	skillSet := map[string]struct{}{}
	for _, entry := range entries {
		for name := range entry.Skills {
			skillSet[name] = struct{}{}
		}
	}
	skillNames := make([]string, 0, len(skillSet))
	for name := range skillSet {
		skillNames = append(skillNames, name)
	}
	sort.Strings(skillNames)

	out := csv.NewWriter(w)
	if err := out.Write(append(append([]string{}, csvColumns...), skillNames...)); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, entry := range entries {
		row := []string{
			entry.Id,
			entry.Name,
			entry.Position,
			strconv.Itoa(entry.Age),
			entry.Nationality,
			entry.Quality,
			entry.Potential,
			strconv.FormatInt(entry.Snapshot.ForecastSell, 10),
			strconv.FormatFloat(entry.Snapshot.RoiPercent, 'f', 2, 64),
			strconv.FormatInt(entry.Snapshot.ValueDiff, 10),
			strconv.FormatInt(entry.Snapshot.BuyPrice, 10),
			entry.Snapshot.DeadlineText,
			strconv.FormatInt(entry.Snapshot.EstimatedValue, 10),
			strconv.FormatInt(entry.Snapshot.AskingPrice, 10),
			strconv.FormatInt(entry.Snapshot.BidsCount, 10),
			strconv.FormatInt(entry.Snapshot.BidsAverage, 10),
			entry.Url,
		}
		for _, name := range skillNames {
			if v, ok := entry.Skills[name]; ok {
				row = append(row, v.String())
			} else {
				row = append(row, "")
			}
		}
		if err := out.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	out.Flush()
	return out.Error()
}

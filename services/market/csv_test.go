package market

import (
	"bytes"
	"encoding/csv"
	"testing"

	"tmscout-backend/lib/scrapers/pmanager"

	"github.com/stretchr/testify/require"
)

func TestWriteCsv(t *testing.T) {
	entries := []Entry{
		{
			Id:       "42",
			Name:     "Somsak",
			Position: "Forward",
			Age:      24,
			Skills: map[string]pmanager.SkillValue{
				"Speed":   pmanager.NumberSkill(14),
				"Fitness": pmanager.TextSkill("Completely Fit"),
			},
			Snapshot: ComputeMetrics(RawSnapshot{
				EstimatedValue: 1000000,
				AskingPrice:    300000,
				BidsAverage:    250000,
				DeadlineText:   "Today at 14:00",
			}),
		},
		{
			Id:   "43",
			Name: "Anan",
			Skills: map[string]pmanager.SkillValue{
				"Speed":    pmanager.NumberSkill(9),
				"Strength": pmanager.NumberSkill(12),
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCsv(&buf, entries))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	require.Equal(t, "id", header[0])
	require.Equal(t, "forecast_sell", header[7])
	// skill columns are the sorted union of both entries
	require.Equal(t, []string{"Fitness", "Speed", "Strength"}, header[len(csvColumns):])

	require.Equal(t, "42", rows[1][0])
	require.Equal(t, "100000", rows[1][7])
	require.Equal(t, "233.33", rows[1][8])
	require.Equal(t, "Completely Fit", rows[1][len(csvColumns)])
	require.Equal(t, "14", rows[1][len(csvColumns)+1])
	// 42 has no Strength, the cell stays empty
	require.Equal(t, "", rows[1][len(csvColumns)+2])

	require.Equal(t, "", rows[2][len(csvColumns)])
	require.Equal(t, "12", rows[2][len(csvColumns)+2])
}

func TestWriteCsvEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCsv(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, csvColumns, rows[0])
}

package market

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeMetrics(t *testing.T) {
	// asking price wins over a lower bid average
	s := ComputeMetrics(RawSnapshot{
		EstimatedValue: 1000000,
		AskingPrice:    300000,
		BidsAverage:    250000,
	})
	require.Equal(t, int64(300000), s.BuyPrice)
	require.Equal(t, int64(700000), s.ValueDiff)
	require.Equal(t, 233.33, s.RoiPercent)
	require.Equal(t, int64(100000), s.ForecastSell)

	// bid average above asking raises the realistic cost
	s = ComputeMetrics(RawSnapshot{
		EstimatedValue: 1000000,
		AskingPrice:    300000,
		BidsAverage:    450000,
	})
	require.Equal(t, int64(450000), s.BuyPrice)
	require.Equal(t, int64(550000), s.ValueDiff)

	// both zero: roi defined as zero, no division
	s = ComputeMetrics(RawSnapshot{EstimatedValue: 500000})
	require.Equal(t, int64(0), s.BuyPrice)
	require.Equal(t, 0.0, s.RoiPercent)
	require.Equal(t, int64(200000), s.ForecastSell)

	// overpriced listing forecasts a loss
	s = ComputeMetrics(RawSnapshot{
		EstimatedValue: 100000,
		AskingPrice:    90000,
	})
	require.Equal(t, int64(-50000), s.ForecastSell)
	require.Equal(t, 11.11, s.RoiPercent)
}

func TestComputeMetricsForecastFloors(t *testing.T) {
	// est/2*0.8 with an odd estimate floors, never rounds up
	s := ComputeMetrics(RawSnapshot{EstimatedValue: 7, AskingPrice: 1})
	// 7/2*0.8 = 2.8 -> 2
	require.Equal(t, int64(1), s.ForecastSell)
}

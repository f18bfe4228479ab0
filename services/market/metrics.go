package market

import "math"

// ComputeMetrics derives the trade economics for one raw snapshot.
//
// buy_price is max(asking_price, bids_average): a listing with a bid
// average above the asking price will not close at asking.
//
// forecast_sell discounts the site's estimated value by 60% before
// subtracting cost. Site estimates are optimistic, this is the
// risk-averse net profit figure ranking runs on. It can go negative.
func ComputeMetrics(raw RawSnapshot) Snapshot {
	buyPrice := raw.AskingPrice
	if raw.BidsAverage > buyPrice {
		buyPrice = raw.BidsAverage
	}

	valueDiff := raw.EstimatedValue - buyPrice

	roi := 0.0
	if buyPrice > 0 {
		roi = float64(valueDiff) / float64(buyPrice) * 100
		roi = math.Round(roi*100) / 100
	}

	forecastSell := int64(math.Floor(float64(raw.EstimatedValue)/2*0.8)) - buyPrice

	return Snapshot{
		RawSnapshot:  raw,
		BuyPrice:     buyPrice,
		ValueDiff:    valueDiff,
		RoiPercent:   roi,
		ForecastSell: forecastSell,
	}
}

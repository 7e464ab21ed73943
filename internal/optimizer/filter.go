package optimizer

import "PortOpt/internal/domain/models"

// FilterStocks classifies each asset against the supplied market-cap and
// volume bounds. An omitted bound never excludes. Input order is preserved
// and no asset is dropped; exclusion is a flag on the verdict.
func FilterStocks(assets []models.AssetMetrics, bounds models.FilterBounds) []models.StockInfo {
	out := make([]models.StockInfo, 0, len(assets))
	for _, a := range assets {
		included := true
		if bounds.MinMarketCap != nil && a.MarketCap < *bounds.MinMarketCap {
			included = false
		}
		if bounds.MaxMarketCap != nil && a.MarketCap > *bounds.MaxMarketCap {
			included = false
		}
		if bounds.MinVolume != nil && a.AvgVolume < *bounds.MinVolume {
			included = false
		}
		if bounds.MaxVolume != nil && a.AvgVolume > *bounds.MaxVolume {
			included = false
		}
		out = append(out, models.StockInfo{
			Ticker:    a.Ticker,
			MarketCap: a.MarketCap,
			Volume:    a.AvgVolume,
			Included:  included,
		})
	}
	return out
}

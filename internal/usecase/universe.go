package usecase

import (
	"sort"
	"time"

	"PortOpt/internal/domain/models"
	"PortOpt/pkg/util"
)

// BuildTable aligns per-ticker histories onto the intersection of their
// trading days. Tickers keep the order given; tickers missing from the
// series map are skipped. Returns nil when no common dates exist.
func BuildTable(series map[string]*models.PriceSeries, order []string) *models.PriceTable {
	tickers := make([]string, 0, len(order))
	for _, t := range order {
		if s, ok := series[t]; ok && len(s.Bars) > 0 {
			tickers = append(tickers, t)
		}
	}
	if len(tickers) == 0 {
		return nil
	}

	// A day survives only when every asset traded on it.
	counts := make(map[string]int)
	byDay := make(map[string]map[string]models.Bar, len(tickers))
	for _, t := range tickers {
		days := make(map[string]models.Bar, len(series[t].Bars))
		for _, bar := range series[t].Bars {
			key := util.DayKey(bar.Date)
			if _, dup := days[key]; dup {
				continue
			}
			days[key] = bar
			counts[key]++
		}
		byDay[t] = days
	}

	common := make([]string, 0, len(counts))
	for day, n := range counts {
		if n == len(tickers) {
			common = append(common, day)
		}
	}
	if len(common) == 0 {
		return nil
	}
	sort.Strings(common)

	dates := make([]time.Time, 0, len(common))
	prices := make([]float64, 0, len(common)*len(tickers))
	for _, day := range common {
		dates = append(dates, byDay[tickers[0]][day].Date)
		for _, t := range tickers {
			prices = append(prices, byDay[t][day].Close)
		}
	}

	return &models.PriceTable{Tickers: tickers, Dates: dates, Prices: prices}
}

// AvgVolumeMillions derives average daily volume in millions from the
// bars themselves, as a fallback when the quote endpoint has no figure
// for a ticker.
func AvgVolumeMillions(s *models.PriceSeries) float64 {
	if s == nil || len(s.Bars) == 0 {
		return 0
	}
	var sum float64
	for _, b := range s.Bars {
		sum += b.Volume
	}
	return sum / float64(len(s.Bars)) / 1e6
}

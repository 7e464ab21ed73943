package optimizer

import (
	"testing"

	"PortOpt/internal/domain/models"
)

func fptr(v float64) *float64 { return &v }

func TestFilterStocks(t *testing.T) {
	assets := []models.AssetMetrics{
		{Ticker: "BIG", MarketCap: 2500, AvgVolume: 80},
		{Ticker: "MID", MarketCap: 40, AvgVolume: 12},
		{Ticker: "TINY", MarketCap: 0.8, AvgVolume: 0.3},
	}

	tests := []struct {
		name   string
		bounds models.FilterBounds
		want   []bool
	}{
		{"no bounds includes all", models.FilterBounds{}, []bool{true, true, true}},
		{"min market cap", models.FilterBounds{MinMarketCap: fptr(10)}, []bool{true, true, false}},
		{"max market cap", models.FilterBounds{MaxMarketCap: fptr(100)}, []bool{false, true, true}},
		{"volume band", models.FilterBounds{MinVolume: fptr(1), MaxVolume: fptr(50)}, []bool{false, true, false}},
		{
			"all bounds",
			models.FilterBounds{MinMarketCap: fptr(1), MaxMarketCap: fptr(1000), MinVolume: fptr(5), MaxVolume: fptr(100)},
			[]bool{false, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterStocks(assets, tt.bounds)
			if len(got) != len(assets) {
				t.Fatalf("filter dropped assets: got %d, want %d", len(got), len(assets))
			}
			for i, info := range got {
				if info.Ticker != assets[i].Ticker {
					t.Errorf("order not preserved at %d: got %s, want %s", i, info.Ticker, assets[i].Ticker)
				}
				if info.Included != tt.want[i] {
					t.Errorf("%s included = %v, want %v", info.Ticker, info.Included, tt.want[i])
				}
			}
		})
	}
}

func TestFilterStocksEmpty(t *testing.T) {
	got := FilterStocks(nil, models.FilterBounds{MinMarketCap: fptr(1)})
	if len(got) != 0 {
		t.Fatalf("expected empty verdicts, got %d", len(got))
	}
}

package models

import "time"

// Bar is a single daily observation for one asset.
type Bar struct {
	Date   time.Time
	Close  float64
	Volume float64
}

// PriceSeries is the raw, time-ordered history for one ticker as delivered
// by the market-data provider. Strictly increasing dates, no duplicates.
type PriceSeries struct {
	Ticker    string
	MarketCap float64 // billions
	Bars      []Bar
}

// PriceTable holds closing prices aligned to a common date index.
// Tickers defines the asset-universe order; every vector and matrix derived
// from the table (returns, covariance, weights) is indexed in that order.
// Prices is row-major: Prices[i*len(Tickers)+j] is the close of Tickers[j]
// on Dates[i].
type PriceTable struct {
	Tickers []string
	Dates   []time.Time
	Prices  []float64
}

// NumAssets returns the number of columns in the table.
func (t *PriceTable) NumAssets() int { return len(t.Tickers) }

// NumObservations returns the number of aligned dates.
func (t *PriceTable) NumObservations() int { return len(t.Dates) }

// At returns the close for observation row i and asset column j.
func (t *PriceTable) At(i, j int) float64 { return t.Prices[i*len(t.Tickers)+j] }

// AssetMetrics are the per-asset figures the stock filter is judged against.
// MarketCap is in billions, AvgVolume in millions; the filter bounds use the
// same units.
type AssetMetrics struct {
	Ticker    string
	MarketCap float64
	AvgVolume float64
}

// FilterBounds are optional market-cap/volume limits. A nil bound is
// unconstrained on that side.
type FilterBounds struct {
	MinMarketCap *float64 `json:"min_market_cap,omitempty"`
	MaxMarketCap *float64 `json:"max_market_cap,omitempty"`
	MinVolume    *float64 `json:"min_volume,omitempty"`
	MaxVolume    *float64 `json:"max_volume,omitempty"`
}

// StockInfo is the per-asset filter verdict. Exclusion is a flag, never a
// removal: every asset handed to the filter appears in the output.
type StockInfo struct {
	Ticker    string  `json:"ticker"`
	MarketCap float64 `json:"market_cap"`
	Volume    float64 `json:"volume"`
	Included  bool    `json:"included"`
}

// FrontierPoint is one traced point of the efficient frontier: the minimum
// achievable risk for its target return, with the weights that achieve it.
type FrontierPoint struct {
	TargetReturn float64   `json:"target_return"`
	Return       float64   `json:"return"`
	Risk         float64   `json:"risk"`
	Weights      []float64 `json:"weights"`
}

// OptimalPortfolio is a fully derived portfolio: risk, return and Sharpe
// ratio recomputed from its weights, keyed by ticker for the response.
type OptimalPortfolio struct {
	Risk        float64            `json:"risk"`
	Return      float64            `json:"return"`
	SharpeRatio float64            `json:"sharpe_ratio"`
	Weights     map[string]float64 `json:"weights"`
}

// OptimalPortfolios bundles the two distinguished portfolios.
type OptimalPortfolios struct {
	MinVariance *OptimalPortfolio `json:"min_variance"`
	MaxSharpe   *OptimalPortfolio `json:"max_sharpe"`
}

// FrontierPointDTO is the compact frontier representation returned to
// clients and consumed by the report renderer.
type FrontierPointDTO struct {
	Risk   float64 `json:"risk"`
	Return float64 `json:"return"`
}

// FetchFailure records one asset whose history could not be retrieved, so
// callers can distinguish "excluded by filter" from "data unavailable".
type FetchFailure struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// OptimizationResult is the full engine output for one request.
type OptimizationResult struct {
	FilteredTickers   []StockInfo        `json:"filtered_tickers"`
	EfficientFrontier []FrontierPointDTO `json:"efficient_frontier"`
	OptimalPortfolios *OptimalPortfolios `json:"optimal_portfolios"`
	Skipped           []FetchFailure     `json:"skipped,omitempty"`
	Message           string             `json:"message"`
}

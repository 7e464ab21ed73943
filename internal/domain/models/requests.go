package models

// Requests for the optimization HTTP endpoints. Defined in domain for consistency and reuse.

type OptimizeRequest struct {
	Tickers     []string `json:"tickers"`
	FileContent string   `json:"file_content,omitempty"` // base64 CSV of tickers

	MinMarketCap *float64 `json:"min_market_cap,omitempty" validate:"omitempty,gte=0"`
	MaxMarketCap *float64 `json:"max_market_cap,omitempty" validate:"omitempty,gte=0"`
	MinVolume    *float64 `json:"min_volume,omitempty" validate:"omitempty,gte=0"`
	MaxVolume    *float64 `json:"max_volume,omitempty" validate:"omitempty,gte=0"`

	RiskFreeRate *float64 `json:"risk_free_rate,omitempty" validate:"omitempty,gte=-0.1,lte=0.5"`
	NumPoints    int      `json:"num_frontier_points" default:"100" validate:"gte=1,lte=500"`
}

// Bounds assembles the filter bounds from the request.
func (r *OptimizeRequest) Bounds() FilterBounds {
	return FilterBounds{
		MinMarketCap: r.MinMarketCap,
		MaxMarketCap: r.MaxMarketCap,
		MinVolume:    r.MinVolume,
		MaxVolume:    r.MaxVolume,
	}
}

// FrontierChartRequest carries a previously computed result back for rendering.
type FrontierChartRequest struct {
	Title             string             `json:"title" default:"Efficient Frontier"`
	EfficientFrontier []FrontierPointDTO `json:"efficient_frontier" validate:"required,min=1"`
	OptimalPortfolios *OptimalPortfolios `json:"optimal_portfolios,omitempty"`
}

package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"PortOpt/internal/domain/models"
	"PortOpt/internal/optimizer"
	"PortOpt/pkg/logger"
)

type fakeMarket struct {
	series   map[string]*models.PriceSeries
	failures []models.FetchFailure
	quotes   map[string]models.AssetMetrics
	quoteErr error
}

func (f *fakeMarket) History(_ context.Context, tickers []string) (map[string]*models.PriceSeries, []models.FetchFailure, error) {
	out := make(map[string]*models.PriceSeries)
	for _, t := range tickers {
		if s, ok := f.series[t]; ok {
			out[t] = s
		}
	}
	return out, f.failures, nil
}

func (f *fakeMarket) Metrics(_ context.Context, tickers []string) (map[string]models.AssetMetrics, error) {
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	return f.quotes, nil
}

func ucLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// synthSeries builds a deterministic daily history whose returns follow
// base + amp*sin(i), giving each asset a distinct mean and variance.
func synthSeries(ticker string, base, amp float64, n int) *models.PriceSeries {
	start := time.Date(2023, 1, 2, 21, 0, 0, 0, time.UTC)
	s := &models.PriceSeries{Ticker: ticker}
	price := 100.0
	for i := 0; i < n; i++ {
		s.Bars = append(s.Bars, models.Bar{
			Date:   start.AddDate(0, 0, i),
			Close:  price,
			Volume: 3e6,
		})
		r := base + amp*math.Sin(float64(i)*0.7)
		price *= 1 + r
	}
	return s
}

func newUC(market MarketData, t *testing.T) *OptimizeUseCase {
	return NewOptimizeUseCase(
		market,
		optimizer.NewSolver(),
		OptimizeConfig{RiskFreeRate: 0.02, NumPoints: 100},
		ucLogger(t),
		nil,
	)
}

func TestRunEndToEnd(t *testing.T) {
	market := &fakeMarket{
		series: map[string]*models.PriceSeries{
			"AAA": synthSeries("AAA", 0.0010, 0.010, 504),
			"BBB": synthSeries("BBB", 0.0006, 0.006, 504),
			"CCC": synthSeries("CCC", 0.0003, 0.014, 504),
		},
		quotes: map[string]models.AssetMetrics{
			"AAA": {Ticker: "AAA", MarketCap: 2500, AvgVolume: 55},
			"BBB": {Ticker: "BBB", MarketCap: 300, AvgVolume: 20},
			"CCC": {Ticker: "CCC", MarketCap: 80, AvgVolume: 5},
		},
	}
	uc := newUC(market, t)

	result, err := uc.Run(context.Background(), &models.OptimizeRequest{
		Tickers:   []string{"AAA", "BBB", "CCC"},
		NumPoints: 15,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.FilteredTickers) != 3 {
		t.Fatalf("expected 3 filter verdicts, got %d", len(result.FilteredTickers))
	}
	for _, s := range result.FilteredTickers {
		if !s.Included {
			t.Fatalf("expected %s included", s.Ticker)
		}
	}

	if len(result.EfficientFrontier) == 0 || len(result.EfficientFrontier) > 15 {
		t.Fatalf("unexpected frontier size %d", len(result.EfficientFrontier))
	}

	op := result.OptimalPortfolios
	if op == nil || op.MinVariance == nil || op.MaxSharpe == nil {
		t.Fatal("expected both optimal portfolios")
	}
	for _, p := range result.EfficientFrontier {
		if op.MinVariance.Risk > p.Risk+1e-9 {
			t.Fatalf("min variance risk %v above frontier risk %v", op.MinVariance.Risk, p.Risk)
		}
	}
	for _, p := range []*models.OptimalPortfolio{op.MinVariance, op.MaxSharpe} {
		var sum float64
		for _, w := range p.Weights {
			sum += w
			if w < -1e-9 || w > 1+1e-9 {
				t.Fatalf("weight %v out of bounds", w)
			}
		}
		if math.Abs(sum-1) > 1e-6 {
			t.Fatalf("weights sum %v", sum)
		}
	}
	if result.Message == "" {
		t.Fatal("expected message")
	}
}

func TestRunSingleAsset(t *testing.T) {
	market := &fakeMarket{
		series: map[string]*models.PriceSeries{
			"AAA": synthSeries("AAA", 0.0008, 0.01, 120),
		},
		quotes: map[string]models.AssetMetrics{
			"AAA": {Ticker: "AAA", MarketCap: 100, AvgVolume: 10},
		},
	}
	uc := newUC(market, t)

	result, err := uc.Run(context.Background(), &models.OptimizeRequest{
		Tickers:   []string{"AAA"},
		NumPoints: 50,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.EfficientFrontier) != 1 {
		t.Fatalf("expected single frontier point, got %d", len(result.EfficientFrontier))
	}
	if w := result.OptimalPortfolios.MaxSharpe.Weights["AAA"]; math.Abs(w-1) > 1e-6 {
		t.Fatalf("expected full weight on AAA, got %v", w)
	}
}

func TestRunPartialFetchFailure(t *testing.T) {
	market := &fakeMarket{
		series: map[string]*models.PriceSeries{
			"AAA": synthSeries("AAA", 0.0010, 0.010, 504),
			"BBB": synthSeries("BBB", 0.0005, 0.008, 260),
		},
		failures: []models.FetchFailure{{Ticker: "XXX", Reason: "no data"}},
		quotes: map[string]models.AssetMetrics{
			"AAA": {Ticker: "AAA", MarketCap: 100, AvgVolume: 10},
			"BBB": {Ticker: "BBB", MarketCap: 200, AvgVolume: 20},
		},
	}
	uc := newUC(market, t)

	result, err := uc.Run(context.Background(), &models.OptimizeRequest{
		Tickers:   []string{"AAA", "BBB", "XXX"},
		NumPoints: 10,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Ticker != "XXX" {
		t.Fatalf("expected XXX skipped, got %+v", result.Skipped)
	}
	if len(result.FilteredTickers) != 2 {
		t.Fatalf("expected 2 filter verdicts, got %d", len(result.FilteredTickers))
	}
}

func TestRunAllFetchesFailed(t *testing.T) {
	market := &fakeMarket{
		failures: []models.FetchFailure{
			{Ticker: "AAA", Reason: "no data"},
			{Ticker: "BBB", Reason: "no data"},
		},
	}
	uc := newUC(market, t)

	_, err := uc.Run(context.Background(), &models.OptimizeRequest{Tickers: []string{"AAA", "BBB"}})
	var mdErr *MarketDataError
	if !errors.As(err, &mdErr) {
		t.Fatalf("expected MarketDataError, got %v", err)
	}
	if mdErr.Failed != 2 {
		t.Fatalf("unexpected failure count %d", mdErr.Failed)
	}
}

func TestRunFilterExcludesEverything(t *testing.T) {
	market := &fakeMarket{
		series: map[string]*models.PriceSeries{
			"AAA": synthSeries("AAA", 0.0008, 0.01, 120),
		},
		quotes: map[string]models.AssetMetrics{
			"AAA": {Ticker: "AAA", MarketCap: 5, AvgVolume: 1},
		},
	}
	uc := newUC(market, t)

	minCap := 1000.0
	_, err := uc.Run(context.Background(), &models.OptimizeRequest{
		Tickers:      []string{"AAA"},
		MinMarketCap: &minCap,
	})
	var emptyErr *EmptyUniverseError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected EmptyUniverseError, got %v", err)
	}
}

func TestRunQuoteFallback(t *testing.T) {
	market := &fakeMarket{
		series: map[string]*models.PriceSeries{
			"AAA": synthSeries("AAA", 0.0010, 0.010, 504),
			"BBB": synthSeries("BBB", 0.0005, 0.008, 260),
		},
		quoteErr: errors.New("quote endpoint down"),
	}
	uc := newUC(market, t)

	minVol := 1.0 // bar volumes average 3 million
	result, err := uc.Run(context.Background(), &models.OptimizeRequest{
		Tickers:   []string{"AAA", "BBB"},
		MinVolume: &minVol,
		NumPoints: 10,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, s := range result.FilteredTickers {
		if !s.Included {
			t.Fatalf("expected %s included via bar volume fallback", s.Ticker)
		}
	}
}

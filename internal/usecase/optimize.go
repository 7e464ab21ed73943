package usecase

import (
	"context"
	"fmt"
	"time"

	"PortOpt/internal/domain/models"
	"PortOpt/internal/optimizer"
	"PortOpt/pkg/logger"
	"PortOpt/pkg/metrics"
)

// MarketData is the slice of the market-data provider the optimization
// pipeline needs.
type MarketData interface {
	History(ctx context.Context, tickers []string) (map[string]*models.PriceSeries, []models.FetchFailure, error)
	Metrics(ctx context.Context, tickers []string) (map[string]models.AssetMetrics, error)
}

// OptimizeConfig carries the pipeline defaults applied when a request
// leaves a knob unset.
type OptimizeConfig struct {
	RiskFreeRate float64
	NumPoints    int
}

// OptimizeUseCase runs the full pipeline: fetch, filter, align,
// estimate, trace the frontier, select portfolios.
type OptimizeUseCase struct {
	market   MarketData
	solver   *optimizer.Solver
	cfg      OptimizeConfig
	log      *logger.Logger
	recorder *metrics.Recorder
}

func NewOptimizeUseCase(market MarketData, solver *optimizer.Solver, cfg OptimizeConfig, log *logger.Logger, rec *metrics.Recorder) *OptimizeUseCase {
	if cfg.NumPoints <= 0 {
		cfg.NumPoints = 100
	}
	return &OptimizeUseCase{market: market, solver: solver, cfg: cfg, log: log, recorder: rec}
}

func (uc *OptimizeUseCase) Run(ctx context.Context, req *models.OptimizeRequest) (*models.OptimizationResult, error) {
	started := time.Now()

	tickers, err := ParseTickers(req)
	if err != nil {
		uc.record("rejected")
		return nil, err
	}
	uc.log.Info("optimization started",
		logger.Int("tickers", len(tickers)),
		logger.Strings("universe", tickers))

	fetchStart := time.Now()
	series, failures, err := uc.market.History(ctx, tickers)
	if err != nil {
		uc.record("error")
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	uc.observe("fetch", fetchStart)
	for range failures {
		if uc.recorder != nil {
			uc.recorder.RecordFetchFailure("chart")
		}
	}
	if len(series) == 0 {
		uc.record("error")
		return nil, &MarketDataError{Requested: len(tickers), Failed: len(failures)}
	}

	assets := uc.assetMetrics(ctx, tickers, series)
	filtered := optimizer.FilterStocks(assets, req.Bounds())

	included := make([]string, 0, len(filtered))
	for _, s := range filtered {
		if s.Included {
			included = append(included, s.Ticker)
		}
	}
	if len(included) == 0 {
		uc.record("empty_universe")
		return nil, &EmptyUniverseError{Fetched: len(series), Excluded: len(filtered)}
	}
	if uc.recorder != nil {
		uc.recorder.RecordUniverseSize(len(included))
	}

	table := BuildTable(series, included)
	if table == nil {
		uc.record("error")
		return nil, &MarketDataError{Requested: len(tickers), Failed: len(failures)}
	}

	est, err := optimizer.Estimate(table)
	if err != nil {
		uc.record("infeasible")
		return nil, err
	}

	numPoints := req.NumPoints
	if numPoints <= 0 {
		numPoints = uc.cfg.NumPoints
	}
	if len(included) == 1 {
		// One asset admits exactly one portfolio.
		numPoints = 1
	}

	solveStart := time.Now()
	frontier, err := uc.solver.Trace(est, numPoints)
	if err != nil {
		uc.record("infeasible")
		return nil, err
	}
	for _, inf := range frontier.Infeasible {
		uc.log.Debug("frontier point infeasible",
			logger.Float64("target", inf.TargetReturn), logger.String("reason", inf.Reason))
		if uc.recorder != nil {
			uc.recorder.RecordSolverFailure("infeasible_point")
		}
	}

	riskFree := uc.cfg.RiskFreeRate
	if req.RiskFreeRate != nil {
		riskFree = *req.RiskFreeRate
	}
	portfolios, err := uc.solver.Select(frontier, est, riskFree)
	if err != nil {
		uc.record("infeasible")
		return nil, err
	}
	uc.observe("solve", solveStart)

	points := make([]models.FrontierPointDTO, 0, len(frontier.Points))
	for _, p := range frontier.Points {
		points = append(points, models.FrontierPointDTO{Risk: p.Risk, Return: p.Return})
	}

	result := &models.OptimizationResult{
		FilteredTickers:   filtered,
		EfficientFrontier: points,
		OptimalPortfolios: portfolios,
		Skipped:           failures,
		Message: fmt.Sprintf("optimized %d of %d requested assets, %d frontier points",
			len(included), len(tickers), len(points)),
	}

	uc.record("success")
	uc.observe("total", started)
	uc.log.Info("optimization finished",
		logger.Int("included", len(included)),
		logger.Int("frontier_points", len(points)),
		logger.Duration("elapsed", time.Since(started)))
	return result, nil
}

// assetMetrics merges quote-endpoint figures with bar-derived fallbacks
// so the filter always has a volume figure even when the quote call
// fails or omits a ticker.
func (uc *OptimizeUseCase) assetMetrics(ctx context.Context, tickers []string, series map[string]*models.PriceSeries) []models.AssetMetrics {
	fetched := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if _, ok := series[t]; ok {
			fetched = append(fetched, t)
		}
	}

	quotes, err := uc.market.Metrics(ctx, fetched)
	if err != nil {
		uc.log.Warn("quote fetch failed, falling back to bar volumes", logger.Error(err))
		if uc.recorder != nil {
			uc.recorder.RecordFetchFailure("quote")
		}
		quotes = map[string]models.AssetMetrics{}
	}

	assets := make([]models.AssetMetrics, 0, len(fetched))
	for _, t := range fetched {
		if m, ok := quotes[t]; ok {
			assets = append(assets, m)
			continue
		}
		assets = append(assets, models.AssetMetrics{
			Ticker:    t,
			AvgVolume: AvgVolumeMillions(series[t]),
		})
	}
	return assets
}

func (uc *OptimizeUseCase) record(outcome string) {
	if uc.recorder != nil {
		uc.recorder.RecordOptimization(outcome)
	}
}

func (uc *OptimizeUseCase) observe(op string, since time.Time) {
	if uc.recorder != nil {
		uc.recorder.RecordLatency(op, time.Since(since))
	}
}

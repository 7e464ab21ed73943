package marketdata

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"PortOpt/internal/domain/models"
	"PortOpt/pkg/cache"
	phttp "PortOpt/pkg/http"
	"PortOpt/pkg/logger"
)

const (
	billion = 1e9
	million = 1e6
)

// Config holds Yahoo Finance client settings.
type Config struct {
	ChartURL string
	QuoteURL string
	Period   string
	Interval string
	Timeout  time.Duration
	Workers  int
	CacheTTL time.Duration
}

// YahooClient fetches daily price history and quote metrics from the
// Yahoo Finance chart and quote endpoints.
type YahooClient struct {
	cfg   Config
	http  *phttp.Client
	cache cache.Service
	log   *logger.Logger
}

// NewYahoo creates a Yahoo Finance client. Cache may be nil to disable
// caching entirely.
func NewYahoo(cfg Config, c cache.Service, log *logger.Logger) *YahooClient {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &YahooClient{
		cfg:   cfg,
		http:  phttp.NewClient(phttp.WithTimeout(cfg.Timeout)),
		cache: c,
		log:   log,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                   string  `json:"symbol"`
			MarketCap                float64 `json:"marketCap"`
			AverageDailyVolume3Month float64 `json:"averageDailyVolume3Month"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

// History fetches daily close history for every ticker concurrently.
// Individual ticker failures are collected, not fatal: the returned map
// holds what succeeded, and failures name what did not and why.
func (c *YahooClient) History(ctx context.Context, tickers []string) (map[string]*models.PriceSeries, []models.FetchFailure, error) {
	series := make(map[string]*models.PriceSeries, len(tickers))
	var failures []models.FetchFailure
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)

	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			s, err := c.fetchSeries(gctx, ticker)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.log.Warn("price history fetch failed",
					logger.String("ticker", ticker), logger.Error(err))
				failures = append(failures, models.FetchFailure{Ticker: ticker, Reason: err.Error()})
				return nil
			}
			series[ticker] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sort.Slice(failures, func(i, j int) bool { return failures[i].Ticker < failures[j].Ticker })
	return series, failures, nil
}

func (c *YahooClient) fetchSeries(ctx context.Context, ticker string) (*models.PriceSeries, error) {
	key := cache.GenerateKeyWithParams("prices", ticker, c.cfg.Period, c.cfg.Interval)
	if c.cache != nil {
		var cached models.PriceSeries
		if err := c.cache.Get(ctx, key, &cached); err == nil && len(cached.Bars) > 0 {
			return &cached, nil
		}
	}

	var resp chartResponse
	err := c.http.SendAndParse(ctx, &phttp.RequestOptions{
		Method:  phttp.MethodGet,
		URL:     fmt.Sprintf("%s/%s", strings.TrimRight(c.cfg.ChartURL, "/"), ticker),
		Headers: map[string]string{"User-Agent": "Mozilla/5.0"},
		QueryParams: map[string][]string{
			"range":    {c.cfg.Period},
			"interval": {c.cfg.Interval},
			"events":   {"div,splits"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("chart request: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart api: %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart api: no result for %s", ticker)
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart api: no quote data for %s", ticker)
	}
	quote := result.Indicators.Quote[0]

	bars := make([]models.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil || *quote.Close[i] <= 0 {
			continue // null bars on holidays and halts
		}
		var vol float64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			vol = *quote.Volume[i]
		}
		bars = append(bars, models.Bar{
			Date:   time.Unix(ts, 0).UTC(),
			Close:  *quote.Close[i],
			Volume: vol,
		})
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("chart api: empty history for %s", ticker)
	}

	s := &models.PriceSeries{Ticker: ticker, Bars: bars}
	if c.cache != nil {
		if err := c.cache.Set(ctx, key, s, c.cfg.CacheTTL); err != nil {
			c.log.Warn("price cache write failed",
				logger.String("ticker", ticker), logger.Error(err))
		}
	}
	return s, nil
}

// Metrics fetches market cap and average daily volume for a batch of
// tickers in one quote call. Market cap is reported in billions and
// volume in millions, matching the filter bound units. Tickers missing
// from the response are simply absent from the map.
func (c *YahooClient) Metrics(ctx context.Context, tickers []string) (map[string]models.AssetMetrics, error) {
	if len(tickers) == 0 {
		return map[string]models.AssetMetrics{}, nil
	}

	var resp quoteResponse
	err := c.http.SendAndParse(ctx, &phttp.RequestOptions{
		Method:  phttp.MethodGet,
		URL:     c.cfg.QuoteURL,
		Headers: map[string]string{"User-Agent": "Mozilla/5.0"},
		QueryParams: map[string][]string{
			"symbols": {strings.Join(tickers, ",")},
			"fields":  {"marketCap,averageDailyVolume3Month"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("quote request: %w", err)
	}

	if resp.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("quote api: %s: %s",
			resp.QuoteResponse.Error.Code, resp.QuoteResponse.Error.Description)
	}

	out := make(map[string]models.AssetMetrics, len(resp.QuoteResponse.Result))
	for _, r := range resp.QuoteResponse.Result {
		out[r.Symbol] = models.AssetMetrics{
			Ticker:    r.Symbol,
			MarketCap: r.MarketCap / billion,
			AvgVolume: r.AverageDailyVolume3Month / million,
		}
	}
	return out, nil
}

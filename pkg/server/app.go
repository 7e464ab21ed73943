package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"PortOpt/internal/handler/api"
	"PortOpt/internal/marketdata"
	"PortOpt/internal/optimizer"
	"PortOpt/internal/usecase"
	"PortOpt/pkg/cache"
	"PortOpt/pkg/config"
	xhttp "PortOpt/pkg/http"
	applogger "PortOpt/pkg/logger"
	"PortOpt/pkg/metrics"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	redis      *cache.RedisCache
	memory     *cache.MemoryCache
}

// New creates an App and wires all dependencies.
func New(cfg *config.Config) (*App, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: l}

	priceCache, err := a.buildCache()
	if err != nil {
		return nil, err
	}

	market := marketdata.NewYahoo(marketdata.Config{
		ChartURL: cfg.MarketData.ChartURL,
		QuoteURL: cfg.MarketData.QuoteURL,
		Period:   cfg.MarketData.Period,
		Interval: cfg.MarketData.Interval,
		Timeout:  cfg.MarketData.Timeout,
		Workers:  cfg.MarketData.Workers,
		CacheTTL: cfg.MarketData.CacheTTL,
	}, priceCache, l)

	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.New()
	}

	solver := optimizer.NewSolver(optimizer.WithMaxIterations(cfg.Optimizer.MaxIterations))
	uc := usecase.NewOptimizeUseCase(market, solver, usecase.OptimizeConfig{
		RiskFreeRate: cfg.Optimizer.RiskFreeRate,
		NumPoints:    cfg.Optimizer.NumPoints,
	}, l, recorder)

	handler := api.NewOptimizeHandler(l, uc, api.RateLimitConfig{
		Capacity:     cfg.Optimizer.RateLimit.Capacity,
		RefillPerSec: cfg.Optimizer.RateLimit.RefillPerSec,
	})

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(handler,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)
	return a, nil
}

// buildCache picks the price cache backend: layered memory+redis when
// redis is configured, plain memory otherwise.
func (a *App) buildCache() (cache.Service, error) {
	rc := a.cfg.MarketData.Redis
	if !rc.Enabled {
		a.memory = cache.NewMemoryCache()
		return a.memory, nil
	}

	redisCache, err := cache.NewRedisCache(
		cache.WithRedisHost(rc.Host),
		cache.WithRedisPort(rc.Port),
		cache.WithRedisPassword(rc.Password),
		cache.WithRedisDB(rc.DB),
	)
	if err != nil {
		return nil, err
	}
	a.redis = redisCache
	a.log.Info("redis cache connected", applogger.String("host", rc.Host))
	return cache.NewLayeredCache(redisCache), nil
}

// Run starts the HTTP server and blocks until interrupted.
func (a *App) Run() error {
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("environment", a.cfg.Environment))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("redis close error", applogger.Error(err))
		}
	}
	if a.memory != nil {
		_ = a.memory.Close()
	}

	a.log.Info("shutdown complete")
	return nil
}

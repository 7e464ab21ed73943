package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	MarketData struct {
		ChartURL string        `yaml:"chart_url"`
		QuoteURL string        `yaml:"quote_url"`
		Period   string        `yaml:"period"`   // history window, e.g. "2y"
		Interval string        `yaml:"interval"` // bar interval, e.g. "1d"
		Timeout  time.Duration `yaml:"timeout"`
		Workers  int           `yaml:"workers"` // concurrent ticker fetches
		CacheTTL time.Duration `yaml:"cache_ttl"`
		Redis    struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"market_data"`
	Optimizer struct {
		RiskFreeRate  float64 `yaml:"risk_free_rate"`
		NumPoints     int     `yaml:"num_frontier_points"`
		MaxIterations int     `yaml:"max_iterations"`
		RateLimit     struct {
			Capacity     float64 `yaml:"capacity"`
			RefillPerSec float64 `yaml:"refill_per_sec"`
		} `yaml:"rate_limit"`
	} `yaml:"optimizer"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("MARKET_DATA_CHART_URL"); v != "" {
		c.MarketData.ChartURL = v
	}
	if v := os.Getenv("MARKET_DATA_QUOTE_URL"); v != "" {
		c.MarketData.QuoteURL = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.MarketData.Redis.Enabled = true
		c.MarketData.Redis.Host = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.MarketData.ChartURL == "" {
		c.MarketData.ChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	}
	if c.MarketData.QuoteURL == "" {
		c.MarketData.QuoteURL = "https://query1.finance.yahoo.com/v7/finance/quote"
	}
	if c.MarketData.Period == "" {
		c.MarketData.Period = "2y"
	}
	if c.MarketData.Interval == "" {
		c.MarketData.Interval = "1d"
	}
	if c.MarketData.Timeout == 0 {
		c.MarketData.Timeout = 15 * time.Second
	}
	if c.MarketData.Workers == 0 {
		c.MarketData.Workers = 4
	}
	if c.MarketData.CacheTTL == 0 {
		c.MarketData.CacheTTL = 15 * time.Minute
	}
	if c.Optimizer.RiskFreeRate == 0 {
		c.Optimizer.RiskFreeRate = 0.02
	}
	if c.Optimizer.NumPoints == 0 {
		c.Optimizer.NumPoints = 100
	}
	if c.Optimizer.MaxIterations == 0 {
		c.Optimizer.MaxIterations = 500
	}
	if c.Optimizer.RateLimit.Capacity == 0 {
		c.Optimizer.RateLimit.Capacity = 5
	}
	if c.Optimizer.RateLimit.RefillPerSec == 0 {
		c.Optimizer.RateLimit.RefillPerSec = 0.5
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", c.Server.Port)
	}
	if c.Optimizer.NumPoints < 1 {
		return fmt.Errorf("optimizer.num_frontier_points must be >= 1")
	}
	if c.Optimizer.RiskFreeRate < -0.1 || c.Optimizer.RiskFreeRate > 0.5 {
		return fmt.Errorf("optimizer.risk_free_rate %.3f out of range", c.Optimizer.RiskFreeRate)
	}
	if c.MarketData.Workers < 1 {
		return fmt.Errorf("market_data.workers must be >= 1")
	}
	return nil
}

package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTickers is the tracked universe when config.yaml names none.
var DefaultTickers = []string{"NVDA", "MSFT", "AMZN", "UNH", "AMD", "GOOGL", "MU", "TSM", "NVO", "MRK", "V"}

type Config struct {
	Tickers []string `yaml:"tickers"`
	Server  struct {
		Addr                string   `yaml:"addr"`
		CORSOrigins         []string `yaml:"cors_origins"`
		ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
	} `yaml:"server"`
	Cache struct {
		TTLMinutes     int `yaml:"ttl_minutes"`
		RefreshMinutes int `yaml:"refresh_minutes"`
	} `yaml:"cache"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Journal struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"journal"`
	Risk struct {
		DaysBack int `yaml:"days_back"`
	} `yaml:"risk"`
	Recommend struct {
		WindowDays      int    `yaml:"window_days"`
		HistoryRange    string `yaml:"history_range"`
		HistoryInterval string `yaml:"history_interval"`
	} `yaml:"recommend"`
	Market struct {
		YahooURL       string `yaml:"yahoo_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"market"`
	News struct {
		ProviderTimeoutSeconds int     `yaml:"provider_timeout_seconds"`
		LiveLimit              int     `yaml:"live_limit"`
		RateLimitRPS           float64 `yaml:"rate_limit_rps"`
		NewsAPIURL             string  `yaml:"newsapi_url"`
		MarketAuxURL           string  `yaml:"marketaux_url"`
		AlphaVantageURL        string  `yaml:"alphavantage_url"`
		YahooRSSURL            string  `yaml:"yahoo_rss_url"`
		FinBERTURL             string  `yaml:"finbert_url"`
	} `yaml:"news"`
	Ingest struct {
		Concurrency   int    `yaml:"concurrency"`
		NewsLimit     int    `yaml:"news_limit"`
		Enrich        bool   `yaml:"enrich"`
		EnrichTimeout int    `yaml:"enrich_timeout_seconds"`
		Schedule      string `yaml:"schedule"`
	} `yaml:"ingest"`

	Keys Keys `yaml:"-"`
}

// Keys holds provider credentials. They are read from the environment only.
type Keys struct {
	NewsAPI      string
	MarketAux    string
	AlphaVantage string
	HuggingFace  string
}

func LoadKeys() Keys {
	return Keys{
		NewsAPI:      os.Getenv("NEWSAPI_KEY"),
		MarketAux:    os.Getenv("MARKETAUX_API_KEY"),
		AlphaVantage: os.Getenv("ALPHA_VANTAGE_API_KEY"),
		HuggingFace:  os.Getenv("HF_API_TOKEN"),
	}
}

func (c *Config) Validate() error {
	if len(c.Tickers) == 0 {
		return errors.New("tickers cannot be empty")
	}
	for _, t := range c.Tickers {
		if t == "" || strings.ContainsAny(t, " ,") {
			return fmt.Errorf("invalid ticker %q", t)
		}
	}
	if c.Recommend.WindowDays < 1 || c.Recommend.WindowDays > 60 {
		return fmt.Errorf("recommend.window_days must be between 1-60, got %d", c.Recommend.WindowDays)
	}
	if c.Risk.DaysBack < 1 {
		return fmt.Errorf("risk.days_back must be positive, got %d", c.Risk.DaysBack)
	}
	if c.Cache.TTLMinutes < 1 {
		return fmt.Errorf("cache.ttl_minutes must be positive, got %d", c.Cache.TTLMinutes)
	}
	if c.Cache.RefreshMinutes < 0 {
		return fmt.Errorf("cache.refresh_minutes cannot be negative, got %d", c.Cache.RefreshMinutes)
	}
	if c.Database.Path == "" {
		return errors.New("database.path cannot be empty")
	}
	if c.News.RateLimitRPS < 0 {
		return fmt.Errorf("news.rate_limit_rps cannot be negative, got %.2f", c.News.RateLimitRPS)
	}
	return nil
}

// Defaults returns the configuration used when no file is given.
func Defaults() *Config {
	var c Config
	c.applyDefaults()
	c.Keys = LoadKeys()
	return &c
}

func (c *Config) applyDefaults() {
	if len(c.Tickers) == 0 {
		c.Tickers = append([]string(nil), DefaultTickers...)
	}
	for i, t := range c.Tickers {
		c.Tickers[i] = strings.ToUpper(strings.TrimSpace(t))
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 60
	}
	if c.Cache.TTLMinutes == 0 {
		c.Cache.TTLMinutes = 10
	}
	if c.Cache.RefreshMinutes == 0 {
		c.Cache.RefreshMinutes = 10
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/advisor.db"
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = "logs/recommendations"
	}
	if c.Journal.RetentionDays == 0 {
		c.Journal.RetentionDays = 7
	}
	if c.Risk.DaysBack == 0 {
		c.Risk.DaysBack = 14
	}
	if c.Recommend.WindowDays == 0 {
		c.Recommend.WindowDays = 7
	}
	if c.Recommend.HistoryRange == "" {
		c.Recommend.HistoryRange = "3mo"
	}
	if c.Recommend.HistoryInterval == "" {
		c.Recommend.HistoryInterval = "1d"
	}
	if c.Market.TimeoutSeconds == 0 {
		c.Market.TimeoutSeconds = 10
	}
	if c.News.ProviderTimeoutSeconds == 0 {
		c.News.ProviderTimeoutSeconds = 8
	}
	if c.News.LiveLimit == 0 {
		c.News.LiveLimit = 10
	}
	if c.Ingest.Concurrency == 0 {
		c.Ingest.Concurrency = 4
	}
	if c.Ingest.NewsLimit == 0 {
		c.Ingest.NewsLimit = 20
	}
	if c.Ingest.EnrichTimeout == 0 {
		c.Ingest.EnrichTimeout = 10
	}
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()
	c.Keys = LoadKeys()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// LoadOrDefault loads path when it exists and falls back to Defaults otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Defaults(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	return LoadConfig(path)
}

func Seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func Minutes(n int) time.Duration { return time.Duration(n) * time.Minute }

package app

import (
	"context"
	"fmt"
	"time"

	"stock-advisor/internal/cache"
	"stock-advisor/internal/database"
	"stock-advisor/internal/engine"
	"stock-advisor/internal/engine/engineobs"
	"stock-advisor/internal/ingest"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/market"
	"stock-advisor/internal/news"
	"stock-advisor/internal/news/providers"
	"stock-advisor/internal/recolog"
	"stock-advisor/internal/refresher"
	"stock-advisor/internal/risk"
	"stock-advisor/internal/sentiment"
	"stock-advisor/internal/sentiment/sentimentobs"
	"stock-advisor/internal/stock"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

// App holds the wired services shared by the server and the pipeline CLI.
type App struct {
	Config      *store.Config
	DB          *database.DB
	Prices      *market.Yahoo
	RSS         *providers.YahooRSS
	Scorer      interfaces.SentimentScorer
	Chain       *news.Chain
	Recommender interfaces.Recommender
	Risk        *risk.Service
	Stocks      *stock.Service
	Journal     *recolog.Journal
	Pipeline    *ingest.Pipeline
}

// Build opens the database and wires every component from cfg.
func Build(ctx context.Context, cfg *store.Config) (*App, error) {
	db, err := database.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &App{Config: cfg, DB: db}
	a.Prices = market.NewYahoo(cfg.Market.YahooURL, store.Seconds(cfg.Market.TimeoutSeconds))
	a.Scorer = initializeScorer(ctx, cfg)
	a.RSS = providers.NewYahooRSS(cfg.News.YahooRSSURL, store.Seconds(cfg.News.ProviderTimeoutSeconds))
	a.Chain = initializeChain(ctx, cfg, a.Scorer, a.RSS)
	a.Journal = recolog.New(cfg.Journal.Dir)
	a.Risk = risk.NewService(db, cfg.Risk.DaysBack)

	agg := news.NewAggregator(db, a.Chain, news.WithLiveLimit(cfg.News.LiveLimit))
	a.Recommender = engineobs.Wrap(engine.New(a.Prices, agg,
		engine.WithPriceStore(db),
		engine.WithJournal(a.Journal),
		engine.WithHistory(cfg.Recommend.HistoryRange, cfg.Recommend.HistoryInterval),
	))

	a.Stocks = stock.NewService(a.Prices, a.Chain,
		cache.NewTTL[types.StockSnapshot](store.Minutes(cfg.Cache.TTLMinutes)), cfg.Tickers)

	opts := []ingest.Option{
		ingest.WithConcurrency(cfg.Ingest.Concurrency),
		ingest.WithNewsLimit(cfg.Ingest.NewsLimit),
	}
	if cfg.Ingest.Enrich {
		opts = append(opts, ingest.WithEnricher(ingest.NewEnricher(store.Seconds(cfg.Ingest.EnrichTimeout))))
	}
	a.Pipeline = ingest.New(a.Prices, a.RSS, a.Scorer, db, opts...)

	return a, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

// Schedule registers the background jobs on r: snapshot refresh, the daily
// journal summary and rotation, and periodic ingestion when configured.
func (a *App) Schedule(r *refresher.Refresher) error {
	cfg := a.Config
	if cfg.Cache.RefreshMinutes > 0 {
		err := r.Every(store.Minutes(cfg.Cache.RefreshMinutes), refresher.JobFunc{
			JobName: "snapshots",
			Fn: func(ctx context.Context) error {
				a.Stocks.RefreshAll(ctx)
				return nil
			},
		})
		if err != nil {
			return err
		}
	}

	err := r.Add("@daily", refresher.JobFunc{
		JobName: "journal-rotate",
		Fn: func(ctx context.Context) error {
			yesterday := time.Now().UTC().AddDate(0, 0, -1)
			if path, err := a.Journal.Summarize(yesterday); err != nil {
				logger.Warn(ctx, "Journal summary failed", "error", err)
			} else if path != "" {
				logger.Info(ctx, "Journal summary written", "path", path)
			}
			n, err := a.Journal.CompressOlder(cfg.Journal.RetentionDays)
			if n > 0 {
				logger.Info(ctx, "Compressed journal files", "files", n)
			}
			return err
		},
	})
	if err != nil {
		return err
	}

	if cfg.Ingest.Schedule != "" {
		return r.Add(cfg.Ingest.Schedule, refresher.JobFunc{
			JobName: "ingest",
			Fn: func(ctx context.Context) error {
				_, err := a.Pipeline.Run(ctx, cfg.Tickers)
				return err
			},
		})
	}
	return nil
}

func initializeScorer(ctx context.Context, cfg *store.Config) interfaces.SentimentScorer {
	endpoint := cfg.News.FinBERTURL
	if endpoint == "" {
		endpoint = sentiment.DefaultFinBERTURL
	}
	if cfg.Keys.HuggingFace == "" {
		logger.Info(ctx, "HF_API_TOKEN not set, using lexicon sentiment scorer")
	}
	return sentimentobs.Wrap(sentiment.New(endpoint, cfg.Keys.HuggingFace))
}

// initializeChain builds the live fallback order NewsAPI, MarketAux,
// AlphaVantage, Yahoo RSS. Providers without a key are left out.
func initializeChain(ctx context.Context, cfg *store.Config, scorer interfaces.SentimentScorer, rss *providers.YahooRSS) *news.Chain {
	timeout := store.Seconds(cfg.News.ProviderTimeoutSeconds)
	pcfg := func(base, key string) providers.Config {
		return providers.Config{BaseURL: base, APIKey: key, Timeout: timeout, RateLimit: cfg.News.RateLimitRPS}
	}

	var chain []interfaces.NewsProvider
	if k := cfg.Keys.NewsAPI; k != "" {
		chain = append(chain, providers.NewNewsAPI(pcfg(cfg.News.NewsAPIURL, k), scorer))
	}
	if k := cfg.Keys.MarketAux; k != "" {
		chain = append(chain, providers.NewMarketAux(pcfg(cfg.News.MarketAuxURL, k), scorer))
	}
	if k := cfg.Keys.AlphaVantage; k != "" {
		chain = append(chain, providers.NewAlphaVantage(pcfg(cfg.News.AlphaVantageURL, k), scorer))
	}
	chain = append(chain, rss)

	c := news.NewChain(timeout, chain...)
	logger.Info(ctx, "News provider chain", "providers", c.Providers())
	return c
}

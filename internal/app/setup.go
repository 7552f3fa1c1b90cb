package app

import (
	"context"
	"fmt"

	"github.com/mselser95/bet-recommender/internal/bankroll"
	"github.com/mselser95/bet-recommender/internal/engine"
	"github.com/mselser95/bet-recommender/internal/feed"
	"github.com/mselser95/bet-recommender/internal/models"
	"github.com/mselser95/bet-recommender/internal/quotes"
	"github.com/mselser95/bet-recommender/internal/storage"
	"github.com/mselser95/bet-recommender/pkg/cache"
	"github.com/mselser95/bet-recommender/pkg/config"
	"github.com/mselser95/bet-recommender/pkg/healthprobe"
	"github.com/mselser95/bet-recommender/pkg/httpserver"
	"github.com/mselser95/bet-recommender/pkg/oddstream"
	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := setupHealthChecker()

	// Setup cache
	outputCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	// Load model registry (the authority on league authorization)
	registry, err := models.LoadRegistry(cfg.ModelRegistryPath, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("load model registry: %w", err)
	}

	fetcher := setupModelFetcher(cfg, logger, registry, outputCache)
	feedService := setupFeedService(cfg, logger)

	quoteMerge := make(chan *types.OddsQuote, cfg.WSQuoteBufferSize)
	quoteBook := setupQuoteBook(logger, quoteMerge)
	oddsStream := setupOddsStream(cfg, logger)

	builder := setupBuilder(cfg, logger, registry)

	// Setup storage
	recStorage, err := setupStorage(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	// Setup bankroll monitor
	monitor, err := setupBankrollMonitor(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup bankroll monitor: %w", err)
	}

	latest := newRecommendationStore()

	// Setup HTTP server (needs recommendation store and builder)
	httpServer := setupHTTPServer(cfg, logger, healthChecker, latest, builder)

	return &App{
		cfg:           cfg,
		opts:          opts,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		feedService:   feedService,
		quoteBook:     quoteBook,
		oddsStream:    oddsStream,
		fetcher:       fetcher,
		builder:       builder,
		monitor:       monitor,
		storage:       recStorage,
		latest:        latest,
		quoteMerge:    quoteMerge,
		subscribed:    make(map[string]struct{}),
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupHealthChecker() *healthprobe.HealthChecker {
	h := healthprobe.New()
	h.RegisterComponent("feed")
	h.RegisterComponent("quote-book")
	return h
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000, // 10x expected max items (model x fixture pairs)
		MaxCost:     1000,  // Maximum 1000 cached output sets
		BufferItems: 64,    // Buffer size for Get operations
		Logger:      logger,
	})
}

func setupModelFetcher(cfg *config.Config, logger *zap.Logger, registry *models.Registry, c cache.Cache) *models.Fetcher {
	client := models.NewOutputClient(cfg.ModelAPIURL, cfg.ModelRequestTimeout)
	return models.NewFetcher(client, registry, c, cfg.ModelOutputCacheTTL, logger)
}

func setupFeedService(cfg *config.Config, logger *zap.Logger) *feed.Service {
	feedClient := feed.NewClient(cfg.FeedBaseURL, logger)
	return feed.New(&feed.Config{
		Client:        feedClient,
		PollInterval:  cfg.FeedPollInterval,
		FixtureWindow: cfg.FeedFixtureWindow,
		FixtureLimit:  cfg.FeedFixtureLimit,
		Logger:        logger,
	})
}

func setupQuoteBook(logger *zap.Logger, quoteChan <-chan *types.OddsQuote) *quotes.Book {
	return quotes.New(&quotes.Config{
		Logger:       logger,
		QuoteChannel: quoteChan,
	})
}

func setupOddsStream(cfg *config.Config, logger *zap.Logger) *oddstream.Manager {
	if cfg.OddsWSURL == "" {
		logger.Info("odds-stream-disabled",
			zap.String("note", "ODDS_WS_URL not set, quotes come from polling only"))
		return nil
	}

	return oddstream.New(oddstream.Config{
		URL:                   cfg.OddsWSURL,
		DialTimeout:           cfg.WSDialTimeout,
		PongTimeout:           cfg.WSPongTimeout,
		PingInterval:          cfg.WSPingInterval,
		ReconnectInitialDelay: cfg.WSReconnectInitialDelay,
		ReconnectMaxDelay:     cfg.WSReconnectMaxDelay,
		ReconnectBackoffMult:  cfg.WSReconnectBackoffMult,
		QuoteBufferSize:       cfg.WSQuoteBufferSize,
		Logger:                logger,
	})
}

func setupBuilder(cfg *config.Config, logger *zap.Logger, registry *models.Registry) *engine.Builder {
	return engine.NewBuilder(engine.BuilderConfig{
		Guard: engine.NewGuard(logger),
		Evaluator: engine.NewEvaluator(engine.EvaluatorConfig{
			EVWeight:  cfg.EngineEVWeight,
			GapWeight: cfg.EngineGapWeight,
			Logger:    logger,
		}),
		Aggregator: engine.NewAggregator(engine.AggregatorConfig{
			HighVariance:   cfg.EngineHighVariance,
			MediumVariance: cfg.EngineMediumVariance,
			Logger:         logger,
		}),
		Selector: engine.NewSelector(engine.SelectorConfig{
			MinGap:      cfg.EngineMinGap,
			SafeGap:     cfg.EngineSafeGap,
			SafeEVFloor: cfg.EngineSafeEVFloor,
			ValueEV:     cfg.EngineValueEV,
			Logger:      logger,
		}),
		Sizer: engine.NewSizer(engine.SizerConfig{
			PerBetCapPct: cfg.StakePerBetCapPct,
			Multipliers: map[types.RiskProfile]float64{
				types.RiskConservative: cfg.StakeConservativeMult,
				types.RiskBalanced:     cfg.StakeBalancedMult,
				types.RiskAggressive:   cfg.StakeAggressiveMult,
			},
			Logger: logger,
		}),
		Weights: registry.Weights(),
		Logger:  logger,
	})
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	if cfg.StorageMode == "postgres" {
		pgStorage, err := storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStorage, nil
	}

	return storage.NewConsoleStorage(logger), nil
}

func setupBankrollMonitor(cfg *config.Config, logger *zap.Logger) (*bankroll.Monitor, error) {
	if cfg.BankrollAPIURL == "" {
		logger.Info("bankroll-monitor-disabled",
			zap.String("note", "BANKROLL_API_URL not set, recommendations carry no stake"))
		return nil, nil
	}

	client := bankroll.NewClient(cfg.BankrollAPIURL, cfg.ModelRequestTimeout)
	monitor, err := bankroll.New(&bankroll.Config{
		CheckInterval:   cfg.BankrollCheckInterval,
		HysteresisRatio: cfg.BankrollHysteresis,
		Fetcher:         client,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create bankroll monitor: %w", err)
	}

	logger.Info("bankroll-monitor-enabled",
		zap.Duration("check_interval", cfg.BankrollCheckInterval),
		zap.Float64("hysteresis_ratio", cfg.BankrollHysteresis))

	return monitor, nil
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	latest *recommendationStore,
	builder *engine.Builder,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:            cfg.HTTPPort,
		Logger:          logger,
		HealthChecker:   healthChecker,
		Recommendations: latest,
		Scorer:          builder,
	})
}

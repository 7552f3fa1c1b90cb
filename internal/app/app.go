package app

import (
	"context"
	"sync"

	"github.com/mselser95/bet-recommender/internal/bankroll"
	"github.com/mselser95/bet-recommender/internal/engine"
	"github.com/mselser95/bet-recommender/internal/feed"
	"github.com/mselser95/bet-recommender/internal/models"
	"github.com/mselser95/bet-recommender/internal/quotes"
	"github.com/mselser95/bet-recommender/internal/storage"
	"github.com/mselser95/bet-recommender/pkg/config"
	"github.com/mselser95/bet-recommender/pkg/healthprobe"
	"github.com/mselser95/bet-recommender/pkg/httpserver"
	"github.com/mselser95/bet-recommender/pkg/oddstream"
	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	opts          *Options
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	feedService   *feed.Service
	quoteBook     *quotes.Book
	oddsStream    *oddstream.Manager // nil when no stream URL is configured
	fetcher       *models.Fetcher
	builder       *engine.Builder
	monitor       *bankroll.Monitor // nil when no bankroll source is configured
	storage       storage.Storage
	latest        *recommendationStore

	// quoteMerge is the quote book's single input, fed by the polling
	// feed and (when configured) the live odds stream.
	quoteMerge chan *types.OddsQuote

	subMu      sync.Mutex
	subscribed map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Options holds application options.
type Options struct {
	SingleFixture string // For debugging: ID of single fixture to score
}

package quotes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mselser95/bet-recommender/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Book keeps the freshest odds quote per (fixture, market). Quotes arrive
// on a channel from the feed poller and the live odds stream; a quote only
// replaces the stored one when its capture timestamp is newer, so a late
// poll result never shadows a live update.
type Book struct {
	quotes     map[string]*types.OddsQuote // key: fixture_id|market
	mu         sync.RWMutex
	logger     *zap.Logger
	quoteChan  <-chan *types.OddsQuote
	updateChan chan *types.OddsQuote
	ctx        context.Context
	wg         sync.WaitGroup
}

// Config holds quote book configuration.
type Config struct {
	Logger       *zap.Logger
	QuoteChannel <-chan *types.OddsQuote
	// UpdateBuffer sizes the outbound update channel.
	UpdateBuffer int
}

// New creates a new quote book.
func New(cfg *Config) *Book {
	buffer := cfg.UpdateBuffer
	if buffer <= 0 {
		buffer = 10000
	}

	return &Book{
		quotes:     make(map[string]*types.OddsQuote),
		logger:     cfg.Logger,
		quoteChan:  cfg.QuoteChannel,
		updateChan: make(chan *types.OddsQuote, buffer),
	}
}

// Start starts the quote book.
func (b *Book) Start(ctx context.Context) error {
	b.ctx = ctx
	b.logger.Info("quote-book-starting")

	b.wg.Add(1)
	go b.processQuotes()

	return nil
}

// processQuotes consumes incoming quotes.
func (b *Book) processQuotes() {
	defer b.wg.Done()

	for {
		select {
		case <-b.ctx.Done():
			b.logger.Info("quote-book-stopping")
			return
		case quote, ok := <-b.quoteChan:
			if !ok {
				b.logger.Info("quote-channel-closed")
				return
			}

			b.handleQuote(quote)
		}
	}
}

// handleQuote stores a single quote if it is fresher than the current one.
func (b *Book) handleQuote(quote *types.OddsQuote) {
	timer := prometheus.NewTimer(QuoteProcessingDuration)
	defer timer.ObserveDuration()

	QuotesReceivedTotal.WithLabelValues(string(quote.Market)).Inc()

	key := quoteKey(quote.FixtureID, quote.Market)

	b.mu.Lock()
	existing, exists := b.quotes[key]
	if exists && !quote.Newer(existing) {
		b.mu.Unlock()
		QuotesStaleTotal.WithLabelValues(string(quote.Market)).Inc()
		b.logger.Debug("quote-stale-discarded",
			zap.String("fixture-id", quote.FixtureID),
			zap.String("market", string(quote.Market)),
			zap.Time("captured-at", quote.CapturedAt))
		return
	}
	b.quotes[key] = quote
	QuotesTracked.Set(float64(len(b.quotes)))
	b.mu.Unlock()

	b.logger.Debug("quote-updated",
		zap.String("fixture-id", quote.FixtureID),
		zap.String("market", string(quote.Market)),
		zap.String("bookmaker", quote.Bookmaker))

	// Notify subscribers of update (non-blocking)
	select {
	case b.updateChan <- quote.Clone():
	default:
		// Channel full, drop update
		b.logger.Error("quote-update-channel-full-dropping",
			zap.String("fixture-id", quote.FixtureID),
			zap.Int("buffer-size", cap(b.updateChan)))
		QuotesDroppedTotal.WithLabelValues("channel_full").Inc()
	}
}

// Get returns the freshest quote for a fixture and market.
func (b *Book) Get(fixtureID string, market types.MarketType) (*types.OddsQuote, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	quote, exists := b.quotes[quoteKey(fixtureID, market)]
	if !exists {
		return nil, false
	}

	return quote.Clone(), true
}

// Snapshot returns the freshest quote per market for a fixture, in the
// shape the recommendation builder consumes.
func (b *Book) Snapshot(fixtureID string) map[types.MarketType]*types.OddsQuote {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snapshot := make(map[types.MarketType]*types.OddsQuote)
	for _, market := range types.AllMarkets {
		if quote, exists := b.quotes[quoteKey(fixtureID, market)]; exists {
			snapshot[market] = quote.Clone()
		}
	}

	return snapshot
}

// Staleness returns the age of the oldest quote held for a fixture, and
// whether any quote exists at all.
func (b *Book) Staleness(fixtureID string, now time.Time) (time.Duration, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var oldest time.Time
	found := false
	for _, market := range types.AllMarkets {
		quote, exists := b.quotes[quoteKey(fixtureID, market)]
		if !exists {
			continue
		}
		if !found || quote.CapturedAt.Before(oldest) {
			oldest = quote.CapturedAt
		}
		found = true
	}

	if !found {
		return 0, false
	}

	return now.Sub(oldest), true
}

// Drop removes all quotes for a fixture. Called when a fixture leaves the
// active window.
func (b *Book) Drop(fixtureID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, market := range types.AllMarkets {
		delete(b.quotes, quoteKey(fixtureID, market))
	}
	QuotesTracked.Set(float64(len(b.quotes)))
}

// UpdateChan returns the channel for receiving quote updates.
func (b *Book) UpdateChan() <-chan *types.OddsQuote {
	return b.updateChan
}

// Close gracefully closes the quote book.
func (b *Book) Close() error {
	b.logger.Info("closing-quote-book")
	b.wg.Wait()
	close(b.updateChan)
	b.logger.Info("quote-book-closed")
	return nil
}

func quoteKey(fixtureID string, market types.MarketType) string {
	return fmt.Sprintf("%s|%s", fixtureID, market)
}

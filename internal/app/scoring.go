package app

import (
	"sync"
	"time"

	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// handleQuoteUpdates rescores a fixture whenever the book accepts a fresher
// quote for it. Model outputs are served from cache between registry polls,
// so the event-driven path stays cheap.
func (a *App) handleQuoteUpdates() {
	defer a.wg.Done()

	for {
		select {
		case <-a.ctx.Done():
			return
		case quote, ok := <-a.quoteBook.UpdateChan():
			if !ok {
				return
			}

			fixture, tracked := a.feedService.Get(quote.FixtureID)
			if !tracked {
				continue
			}

			a.scoreFixture(fixture)
		}
	}
}

// rescoreLoop periodically rescores every tracked fixture so stale model
// outputs and bankroll changes are picked up even without quote movement.
func (a *App) rescoreLoop() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.cfg.EngineRescoreInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.reconcileTracked()
			a.rescorePass()
		}
	}
}

func (a *App) rescorePass() {
	fixtures := a.feedService.Tracked()
	if len(fixtures) == 0 {
		return
	}

	start := time.Now()

	sem := make(chan struct{}, a.cfg.EngineWorkers)
	var wg sync.WaitGroup

	for _, fixture := range fixtures {
		select {
		case <-a.ctx.Done():
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(f *types.Fixture) {
			defer wg.Done()
			defer func() { <-sem }()
			a.scoreFixture(f)
		}(fixture)
	}

	wg.Wait()

	a.logger.Debug("rescore-pass-complete",
		zap.Int("fixtures", len(fixtures)),
		zap.Duration("took", time.Since(start)))
}

// scoreFixture runs one fixture through the full pipeline and persists the
// outcome. A fixture with no usable outputs or quotes is skipped silently;
// that is the normal state right after discovery.
func (a *App) scoreFixture(fixture *types.Fixture) {
	if a.opts.SingleFixture != "" && fixture.ID != a.opts.SingleFixture {
		return
	}

	outputs := a.fetcher.FetchAll(a.ctx, fixture.ID)
	if len(outputs) == 0 {
		a.logger.Debug("no-model-outputs",
			zap.String("fixture-id", fixture.ID))
		return
	}

	fixtureQuotes := a.quoteBook.Snapshot(fixture.ID)
	if len(fixtureQuotes) == 0 {
		a.logger.Debug("no-quotes",
			zap.String("fixture-id", fixture.ID))
		return
	}

	var bankrollState *types.BankrollState
	if a.monitor != nil && a.monitor.IsEnabled() {
		bankrollState = a.monitor.State()
	}

	rec, rejections, err := a.builder.Build(fixture, outputs, fixtureQuotes, bankrollState)
	if err != nil {
		a.logger.Error("score-failed",
			zap.String("fixture-id", fixture.ID),
			zap.Error(err))
		return
	}

	for _, rejection := range rejections {
		storeErr := a.storage.StoreRejection(a.ctx, rejection)
		if storeErr != nil {
			a.logger.Error("store-rejection-failed",
				zap.String("fixture-id", fixture.ID),
				zap.String("model-id", rejection.ModelID),
				zap.Error(storeErr))
		}
	}

	if rec == nil {
		return
	}

	a.latest.Put(rec)

	err = a.storage.StoreRecommendation(a.ctx, rec)
	if err != nil {
		a.logger.Error("store-recommendation-failed",
			zap.String("fixture-id", fixture.ID),
			zap.Error(err))
	}
}

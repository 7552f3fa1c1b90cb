package app

import (
	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// handleNewFixtures subscribes to fixtures as the feed discovers them and
// scores each one once its first quotes arrive.
func (a *App) handleNewFixtures() {
	defer a.wg.Done()

	for {
		select {
		case <-a.ctx.Done():
			return
		case fixture, ok := <-a.feedService.NewFixturesChan():
			if !ok {
				return
			}

			a.trackFixture(fixture)
		}
	}
}

func (a *App) trackFixture(fixture *types.Fixture) {
	if a.opts.SingleFixture != "" && fixture.ID != a.opts.SingleFixture {
		return
	}

	a.subMu.Lock()
	a.subscribed[fixture.ID] = struct{}{}
	a.subMu.Unlock()

	if a.oddsStream != nil {
		err := a.oddsStream.Subscribe(a.ctx, []string{fixture.ID})
		if err != nil {
			a.logger.Error("subscribe-failed",
				zap.String("fixture-id", fixture.ID),
				zap.String("league", fixture.League),
				zap.Error(err))
		}
	}

	a.logger.Info("tracking-fixture",
		zap.String("fixture-id", fixture.ID),
		zap.String("fixture", fixture.Name()),
		zap.String("league", fixture.League),
		zap.Time("kickoff", fixture.KickoffAt))
}

// reconcileTracked drops quotes, subscriptions and served recommendations
// for fixtures the feed no longer tracks (kicked off or out of window).
func (a *App) reconcileTracked() {
	tracked := make(map[string]struct{})
	for _, fixture := range a.feedService.Tracked() {
		tracked[fixture.ID] = struct{}{}
	}

	a.subMu.Lock()
	var gone []string
	for id := range a.subscribed {
		if _, ok := tracked[id]; !ok {
			gone = append(gone, id)
			delete(a.subscribed, id)
		}
	}
	a.subMu.Unlock()

	for _, id := range gone {
		if a.oddsStream != nil {
			err := a.oddsStream.Unsubscribe(a.ctx, []string{id})
			if err != nil {
				a.logger.Warn("unsubscribe-failed",
					zap.String("fixture-id", id),
					zap.Error(err))
			}
		}

		a.quoteBook.Drop(id)
		a.latest.Drop(id)

		a.logger.Info("fixture-untracked", zap.String("fixture-id", id))
	}
}

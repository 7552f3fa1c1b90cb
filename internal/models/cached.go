package models

import (
	"context"
	"fmt"
	"time"

	"github.com/mselser95/bet-recommender/pkg/cache"
	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// Fetcher gathers the outputs of every registered model for a fixture,
// with per-model caching in front of the serving API. Authorization data
// (the league alias set) is stamped from the registry, never trusted from
// the serving API.
type Fetcher struct {
	client   *OutputClient
	registry *Registry
	cache    cache.Cache
	ttl      time.Duration
	logger   *zap.Logger
}

// NewFetcher creates a new model output fetcher
func NewFetcher(client *OutputClient, registry *Registry, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client:   client,
		registry: registry,
		cache:    c,
		ttl:      ttl,
		logger:   logger,
	}
}

// FetchAll returns the outputs of all registered models for a fixture.
// A model whose fetch fails is skipped, not fatal: scoring proceeds with
// whatever the rest of the ensemble produced.
func (f *Fetcher) FetchAll(ctx context.Context, fixtureID string) []*types.ModelOutput {
	var all []*types.ModelOutput

	for _, model := range f.registry.All() {
		outputs, err := f.fetchModel(ctx, model, fixtureID)
		if err != nil {
			ModelFetchErrorsTotal.WithLabelValues(model.ID).Inc()
			f.logger.Warn("model-fetch-failed",
				zap.String("model-id", model.ID),
				zap.String("fixture-id", fixtureID),
				zap.Error(err))
			continue
		}
		all = append(all, outputs...)
	}

	return all
}

func (f *Fetcher) fetchModel(ctx context.Context, model Model, fixtureID string) ([]*types.ModelOutput, error) {
	cacheKey := fmt.Sprintf("outputs:%s:%s", model.ID, fixtureID)

	if f.cache != nil {
		if cached, ok := f.cache.Get(cacheKey); ok {
			if outputs, ok := cached.([]*types.ModelOutput); ok {
				OutputCacheHitsTotal.Inc()
				return outputs, nil
			}
		}
		OutputCacheMissesTotal.Inc()
	}

	outputs, err := f.client.FetchOutputs(ctx, model.ID, fixtureID)
	if err != nil {
		return nil, err
	}

	for _, output := range outputs {
		output.Leagues = model.Leagues
	}

	if f.cache != nil {
		f.cache.Set(cacheKey, outputs, f.ttl)
	}

	return outputs, nil
}

// Invalidate drops the cached outputs of every model for a fixture. Called
// when a fixture is rescored on demand and fresh outputs are wanted.
func (f *Fetcher) Invalidate(fixtureID string) {
	if f.cache == nil {
		return
	}
	for _, model := range f.registry.All() {
		f.cache.Delete(fmt.Sprintf("outputs:%s:%s", model.ID, fixtureID))
	}
}

package app

import (
	"sort"
	"sync"

	"github.com/mselser95/bet-recommender/internal/engine"
)

// recommendationStore keeps the latest recommendation per fixture for the
// HTTP API. Older recommendations for the same fixture are replaced.
type recommendationStore struct {
	mu   sync.RWMutex
	recs map[string]*engine.Recommendation
}

func newRecommendationStore() *recommendationStore {
	return &recommendationStore{
		recs: make(map[string]*engine.Recommendation),
	}
}

// Put stores the latest recommendation for its fixture.
func (s *recommendationStore) Put(rec *engine.Recommendation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.FixtureID] = rec
}

// Latest returns the most recent recommendation for a fixture.
func (s *recommendationStore) Latest(fixtureID string) (*engine.Recommendation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[fixtureID]
	return rec, ok
}

// All returns all current recommendations sorted by fixture ID.
func (s *recommendationStore) All() []*engine.Recommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*engine.Recommendation, 0, len(s.recs))
	for _, rec := range s.recs {
		all = append(all, rec)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].FixtureID < all[j].FixtureID
	})

	return all
}

// Drop removes the recommendation for a fixture, if any.
func (s *recommendationStore) Drop(fixtureID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, fixtureID)
}

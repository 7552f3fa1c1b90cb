package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// Service polls the feed API for upcoming fixtures and their odds quotes.
// New fixtures go out on a channel for the engine to start tracking; quotes
// go out on a channel consumed by the quote book. Live odds from the
// websocket stream land in the same book, so polling here is the slow,
// reliable baseline rather than the primary quote source.
type Service struct {
	client        *Client
	pollInterval  time.Duration
	fixtureWindow time.Duration
	fixtureLimit  int
	logger        *zap.Logger
	tracked       map[string]*types.Fixture
	mu            sync.RWMutex
	newFixturesCh chan *types.Fixture
	quotesCh      chan *types.OddsQuote
}

// Config holds feed service configuration.
type Config struct {
	Client *Client
	// PollInterval is how often fixtures and quotes are refreshed.
	PollInterval time.Duration
	// FixtureWindow bounds how far ahead of kickoff fixtures are tracked.
	FixtureWindow time.Duration
	FixtureLimit  int
	Logger        *zap.Logger
}

// New creates a new feed service.
func New(cfg *Config) *Service {
	return &Service{
		client:        cfg.Client,
		pollInterval:  cfg.PollInterval,
		fixtureWindow: cfg.FixtureWindow,
		fixtureLimit:  cfg.FixtureLimit,
		logger:        cfg.Logger,
		tracked:       make(map[string]*types.Fixture),
		newFixturesCh: make(chan *types.Fixture, 100),
		quotesCh:      make(chan *types.OddsQuote, 1000),
	}
}

// Run starts the feed polling loop.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("feed-service-starting",
		zap.Duration("poll-interval", s.pollInterval),
		zap.Duration("fixture-window", s.fixtureWindow))

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	// Initial poll
	err := s.poll(ctx)
	if err != nil {
		s.logger.Error("initial-poll-failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("feed-service-stopping")
			close(s.newFixturesCh)
			close(s.quotesCh)
			return ctx.Err()
		case <-ticker.C:
			err := s.poll(ctx)
			if err != nil {
				s.logger.Error("poll-failed", zap.Error(err))
			}
		}
	}
}

// poll fetches upcoming fixtures and the current quotes for every tracked
// fixture.
func (s *Service) poll(ctx context.Context) error {
	start := time.Now()
	defer func() {
		PollDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	fixtures, err := s.client.FetchUpcomingFixtures(ctx, s.fixtureWindow, s.fixtureLimit)
	if err != nil {
		PollErrorsTotal.Inc()
		return fmt.Errorf("fetch upcoming fixtures: %w", err)
	}

	FixturesPolledTotal.Add(float64(len(fixtures)))

	newFixtures := s.identifyNewFixtures(fixtures)
	for _, fixture := range newFixtures {
		select {
		case s.newFixturesCh <- fixture:
			NewFixturesTotal.Inc()
			s.logger.Info("new-fixture-tracked",
				zap.String("fixture-id", fixture.ID),
				zap.String("fixture", fixture.Name()),
				zap.String("league", fixture.League),
				zap.Time("kickoff", fixture.KickoffAt))
		default:
			s.logger.Warn("new-fixtures-channel-full",
				zap.String("fixture-id", fixture.ID))
		}
	}

	s.pruneKickedOff(time.Now())
	s.pollQuotes(ctx)

	s.logger.Debug("poll-complete",
		zap.Int("total-fixtures", len(fixtures)),
		zap.Int("new-fixtures", len(newFixtures)),
		zap.Duration("duration", time.Since(start)))

	return nil
}

// pollQuotes fetches quotes for every tracked fixture and forwards them to
// the quote channel. A fixture whose fetch fails is skipped.
func (s *Service) pollQuotes(ctx context.Context) {
	for _, fixture := range s.Tracked() {
		quotes, err := s.client.FetchQuotes(ctx, fixture.ID)
		if err != nil {
			QuoteFetchErrorsTotal.Inc()
			s.logger.Warn("quote-fetch-failed",
				zap.String("fixture-id", fixture.ID),
				zap.Error(err))
			continue
		}

		for _, quote := range quotes {
			select {
			case s.quotesCh <- quote:
				QuotesForwardedTotal.Inc()
			default:
				s.logger.Warn("quotes-channel-full",
					zap.String("fixture-id", quote.FixtureID),
					zap.String("market", string(quote.Market)))
			}
		}
	}
}

// identifyNewFixtures returns fixtures not yet tracked.
func (s *Service) identifyNewFixtures(fixtures []*types.Fixture) []*types.Fixture {
	s.mu.Lock()
	defer s.mu.Unlock()

	var newFixtures []*types.Fixture
	for _, fixture := range fixtures {
		if _, exists := s.tracked[fixture.ID]; exists {
			continue
		}
		s.tracked[fixture.ID] = fixture
		newFixtures = append(newFixtures, fixture)
	}

	FixturesTracked.Set(float64(len(s.tracked)))

	return newFixtures
}

// pruneKickedOff drops fixtures whose kickoff has passed. Recommendations
// are pre-match only.
func (s *Service) pruneKickedOff(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, fixture := range s.tracked {
		if fixture.KickoffAt.Before(now) {
			delete(s.tracked, id)
			s.logger.Info("fixture-kicked-off",
				zap.String("fixture-id", id),
				zap.String("fixture", fixture.Name()))
		}
	}

	FixturesTracked.Set(float64(len(s.tracked)))
}

// Tracked returns all currently tracked fixtures.
func (s *Service) Tracked() []*types.Fixture {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fixtures := make([]*types.Fixture, 0, len(s.tracked))
	for _, fixture := range s.tracked {
		fixtures = append(fixtures, fixture)
	}

	return fixtures
}

// Get returns a tracked fixture by ID.
func (s *Service) Get(fixtureID string) (*types.Fixture, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fixture, exists := s.tracked[fixtureID]
	return fixture, exists
}

// NewFixturesChan returns the channel for receiving newly tracked fixtures.
func (s *Service) NewFixturesChan() <-chan *types.Fixture {
	return s.newFixturesCh
}

// QuotesChan returns the channel carrying polled odds quotes.
func (s *Service) QuotesChan() <-chan *types.OddsQuote {
	return s.quotesCh
}

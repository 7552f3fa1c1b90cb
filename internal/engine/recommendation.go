package engine

import (
	"fmt"
	"time"

	"github.com/mselser95/bet-recommender/pkg/types"
)

// Recommendation is the final record exposed to callers: the chosen market,
// its evaluation and ensemble view, the track, the optional stake, and a
// human-readable explanation. Recommendations are immutable once built.
type Recommendation struct {
	ID          string               `json:"id"`
	FixtureID   string               `json:"fixture_id"`
	Fixture     string               `json:"fixture"`
	League      string               `json:"league"`
	Market      types.MarketType     `json:"market"`
	Track       Track                `json:"track"`
	Outcome     string               `json:"outcome"`
	Evaluation  *Evaluation          `json:"evaluation"`
	Ensemble    *EnsembleResult      `json:"ensemble"`
	Confidence  float64              `json:"confidence"`
	Stake       *StakeRecommendation `json:"stake,omitempty"`
	Explanation string               `json:"explanation"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// RejectionEvent is the structured audit record for a (model, fixture) pair
// rejected by the league guard.
type RejectionEvent struct {
	ID            string    `json:"id"`
	ModelID       string    `json:"model_id"`
	FixtureID     string    `json:"fixture_id"`
	FixtureLeague string    `json:"fixture_league"`
	Authorized    []string  `json:"authorized_leagues"`
	RejectedAt    time.Time `json:"rejected_at"`
}

// String returns a one-line summary of the recommendation.
func (r *Recommendation) String() string {
	ev := 0.0
	if r.Evaluation != nil && r.Evaluation.ExpectedValue != nil {
		ev = *r.Evaluation.ExpectedValue
	}

	return fmt.Sprintf("Recommendation[%s] %s %s=%s track=%s p=%.3f ev=%+.3f conf=%.3f",
		shortID(r.ID), r.Fixture, r.Market, r.Outcome, r.Track,
		r.Evaluation.Probability, ev, r.Confidence)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

package types

import (
	"fmt"
	"strings"
)

// CrossLeagueError is returned when a model is invoked for a fixture outside
// its authorized league set. It is fatal for that (model, fixture) pair only;
// callers skip the model and continue.
type CrossLeagueError struct {
	ModelID       string
	FixtureID     string
	FixtureLeague string
	Authorized    []string
}

func (e *CrossLeagueError) Error() string {
	return fmt.Sprintf("model %s not authorized for league %q (fixture %s, authorized: %s)",
		e.ModelID, e.FixtureLeague, e.FixtureID, strings.Join(e.Authorized, ", "))
}

// ProbabilityError is returned when a model output carries an invalid
// probability distribution. The output is excluded from the ensemble;
// distributions outside tolerance are never silently coerced.
type ProbabilityError struct {
	ModelID string
	Market  MarketType
	Reason  string
	Sum     float64
}

func (e *ProbabilityError) Error() string {
	if e.Sum != 0 {
		return fmt.Sprintf("invalid probability distribution from model %s for %s: %s (sum=%.4f)",
			e.ModelID, e.Market, e.Reason, e.Sum)
	}

	return fmt.Sprintf("invalid probability distribution from model %s for %s: %s",
		e.ModelID, e.Market, e.Reason)
}

// OddsError is returned when a quoted decimal price is invalid (<= 1.0).
// It is fatal for that market evaluation only.
type OddsError struct {
	Market  MarketType
	Outcome string
	Odds    float64
}

func (e *OddsError) Error() string {
	return fmt.Sprintf("invalid odds %.4f for %s outcome %q", e.Odds, e.Market, e.Outcome)
}

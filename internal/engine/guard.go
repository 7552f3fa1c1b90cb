package engine

import (
	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// Guard enforces league isolation: a model output is only usable for fixtures
// in a league the model was trained on. Authorization is data-driven via the
// alias set carried on each output, so adding a league is a configuration
// change, not a new type.
type Guard struct {
	logger *zap.Logger
}

// NewGuard creates a new league guard.
func NewGuard(logger *zap.Logger) *Guard {
	return &Guard{logger: logger}
}

// Authorize checks the fixture's league against the model's authorized alias
// set. Matching is case-insensitive exact membership. On mismatch it returns
// a *types.CrossLeagueError; the caller must not evaluate this fixture with
// this model. The check is a pure gate with no other side effects beyond the
// rejection audit log and counter.
func (g *Guard) Authorize(output *types.ModelOutput, fixture *types.Fixture) error {
	if output.AuthorizedFor(fixture.League) {
		return nil
	}

	CrossLeagueRejectionsTotal.WithLabelValues(output.ModelID).Inc()

	g.logger.Warn("cross-league-rejected",
		zap.String("model-id", output.ModelID),
		zap.String("fixture-id", fixture.ID),
		zap.String("fixture-league", fixture.League),
		zap.Strings("authorized-leagues", output.Leagues))

	return &types.CrossLeagueError{
		ModelID:       output.ModelID,
		FixtureID:     fixture.ID,
		FixtureLeague: fixture.League,
		Authorized:    output.Leagues,
	}
}

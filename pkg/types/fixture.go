package types

import "time"

// Fixture is a single scheduled match. Fixtures are immutable once handed to
// the engine for a scoring run.
type Fixture struct {
	ID        string    `json:"id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	League    string    `json:"league"`
	KickoffAt time.Time `json:"kickoff_at"`
}

// Name returns a human-readable fixture label.
func (f *Fixture) Name() string {
	return f.HomeTeam + " vs " + f.AwayTeam
}

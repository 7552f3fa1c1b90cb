package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mselser95/bet-recommender/internal/engine"
	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

func sampleRecommendation() *engine.Recommendation {
	ev := 0.10
	return &engine.Recommendation{
		ID:        "a1b2c3d4-0000-0000-0000-000000000000",
		FixtureID: "fx-1001",
		Fixture:   "Real Madrid vs Sevilla",
		League:    "La Liga",
		Market:    types.MarketMatchWinner,
		Track:     engine.TrackValue,
		Outcome:   types.OutcomeHome,
		Evaluation: &engine.Evaluation{
			Market:         types.MarketMatchWinner,
			Outcome:        types.OutcomeHome,
			Probability:    0.52,
			ProbabilityGap: 0.24,
			Odds:           2.12,
			ExpectedValue:  &ev,
			Score:          15.6,
		},
		Ensemble: &engine.EnsembleResult{
			Market:     types.MarketMatchWinner,
			TopOutcome: types.OutcomeHome,
			ModelCount: 3,
			Variance:   0.004,
			Agreement:  "high",
			Confidence: 0.517,
		},
		Confidence: 0.517,
		Stake: &engine.StakeRecommendation{
			Amount:      25.50,
			Percent:     0.0255,
			Currency:    "EUR",
			RiskProfile: types.RiskBalanced,
		},
		Explanation: "home on 1x2 carries positive expected value with strong model agreement",
		GeneratedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func sampleRejection() *engine.RejectionEvent {
	return &engine.RejectionEvent{
		ID:            "e1e2e3e4-0000-0000-0000-000000000000",
		ModelID:       "laliga-gbm-v3",
		FixtureID:     "fx-2001",
		FixtureLeague: "serie a",
		Authorized:    []string{"la liga", "primera division"},
		RejectedAt:    time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func TestConsoleStorage(t *testing.T) {
	store := NewConsoleStorage(zap.NewNop())
	defer store.Close()

	if err := store.StoreRecommendation(context.Background(), sampleRecommendation()); err != nil {
		t.Errorf("StoreRecommendation() error = %v", err)
	}
	if err := store.StoreRejection(context.Background(), sampleRejection()); err != nil {
		t.Errorf("StoreRejection() error = %v", err)
	}
}

func TestConsoleStorageWithoutStake(t *testing.T) {
	store := NewConsoleStorage(zap.NewNop())
	defer store.Close()

	rec := sampleRecommendation()
	rec.Stake = nil
	if err := store.StoreRecommendation(context.Background(), rec); err != nil {
		t.Errorf("StoreRecommendation() error = %v", err)
	}
}

func TestPostgresStoreRecommendation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}

	store := newPostgresStorageWithDB(db, zap.NewNop())
	defer store.Close()

	rec := sampleRecommendation()

	mock.ExpectExec("INSERT INTO recommendations").
		WithArgs(
			rec.ID, rec.FixtureID, rec.Fixture, rec.League,
			"1x2", "value", rec.Outcome,
			rec.Evaluation.Probability, rec.Evaluation.ProbabilityGap, rec.Evaluation.Odds,
			*rec.Evaluation.ExpectedValue, rec.Evaluation.Score,
			rec.Ensemble.ModelCount, rec.Ensemble.Agreement, rec.Confidence,
			rec.Stake.Amount, rec.Stake.Percent, rec.Stake.Currency,
			rec.Explanation, rec.GeneratedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.StoreRecommendation(context.Background(), rec); err != nil {
		t.Errorf("StoreRecommendation() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreRecommendationNulls(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}

	store := newPostgresStorageWithDB(db, zap.NewNop())
	defer store.Close()

	rec := sampleRecommendation()
	rec.Evaluation.ExpectedValue = nil
	rec.Stake = nil

	mock.ExpectExec("INSERT INTO recommendations").
		WithArgs(
			rec.ID, rec.FixtureID, rec.Fixture, rec.League,
			"1x2", "value", rec.Outcome,
			rec.Evaluation.Probability, rec.Evaluation.ProbabilityGap, rec.Evaluation.Odds,
			nil, rec.Evaluation.Score,
			rec.Ensemble.ModelCount, rec.Ensemble.Agreement, rec.Confidence,
			nil, nil, nil,
			rec.Explanation, rec.GeneratedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.StoreRecommendation(context.Background(), rec); err != nil {
		t.Errorf("StoreRecommendation() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreRejection(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}

	store := newPostgresStorageWithDB(db, zap.NewNop())
	defer store.Close()

	event := sampleRejection()

	mock.ExpectExec("INSERT INTO cross_league_rejections").
		WithArgs(
			event.ID, event.ModelID, event.FixtureID, event.FixtureLeague,
			"la liga,primera division", event.RejectedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.StoreRejection(context.Background(), event); err != nil {
		t.Errorf("StoreRejection() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}

	store := newPostgresStorageWithDB(db, zap.NewNop())
	defer store.Close()

	mock.ExpectExec("INSERT INTO recommendations").
		WillReturnError(context.DeadlineExceeded)

	if err := store.StoreRecommendation(context.Background(), sampleRecommendation()); err == nil {
		t.Error("expected error from failed insert")
	}
}

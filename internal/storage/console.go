package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/mselser95/bet-recommender/internal/engine"
	"go.uber.org/zap"
)

// ConsoleStorage implements Storage by pretty-printing to console.
type ConsoleStorage struct {
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		logger: logger,
	}
}

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// StoreRecommendation pretty-prints a recommendation to console.
func (c *ConsoleStorage) StoreRecommendation(ctx context.Context, rec *engine.Recommendation) error {
	fmt.Println("\n" + rule)
	fmt.Printf("🎯 BET RECOMMENDATION (%s)\n", strings.ToUpper(string(rec.Track)))
	fmt.Println(rule)
	fmt.Printf("ID:       %s\n", rec.ID[:8])
	fmt.Printf("Fixture:  %s (%s)\n", rec.Fixture, rec.League)
	fmt.Printf("Market:   %s\n", rec.Market)
	fmt.Printf("Pick:     %s\n", rec.Outcome)
	fmt.Printf("Time:     %s\n", rec.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Println(rule)
	fmt.Printf("📊 EVALUATION\n")
	fmt.Printf("  Probability: %.4f (gap %.4f)\n", rec.Evaluation.Probability, rec.Evaluation.ProbabilityGap)
	fmt.Printf("  Odds:        %.2f\n", rec.Evaluation.Odds)
	if rec.Evaluation.ExpectedValue != nil {
		fmt.Printf("  EV:          %+.4f\n", *rec.Evaluation.ExpectedValue)
	}
	fmt.Printf("  Score:       %.2f\n", rec.Evaluation.Score)
	fmt.Printf("  Models:      %d (agreement: %s, confidence: %.3f)\n",
		rec.Ensemble.ModelCount, rec.Ensemble.Agreement, rec.Confidence)
	if rec.Stake != nil {
		fmt.Println(rule)
		fmt.Printf("💰 STAKE\n")
		fmt.Printf("  Amount:   %.2f %s (%.2f%% of bankroll)\n",
			rec.Stake.Amount, rec.Stake.Currency, rec.Stake.Percent*100)
		fmt.Printf("  Profile:  %s\n", rec.Stake.RiskProfile)
		for _, warning := range rec.Stake.Warnings {
			fmt.Printf("  ⚠️  %s\n", warning)
		}
	}
	fmt.Println(rule)
	fmt.Printf("%s\n", rec.Explanation)
	fmt.Println(rule)

	return nil
}

// StoreRejection pretty-prints a cross-league rejection to console.
func (c *ConsoleStorage) StoreRejection(ctx context.Context, event *engine.RejectionEvent) error {
	fmt.Println("\n" + rule)
	fmt.Printf("🚫 CROSS-LEAGUE REJECTION\n")
	fmt.Println(rule)
	fmt.Printf("Model:      %s\n", event.ModelID)
	fmt.Printf("Fixture:    %s (league: %s)\n", event.FixtureID, event.FixtureLeague)
	fmt.Printf("Authorized: %s\n", strings.Join(event.Authorized, ", "))
	fmt.Printf("Time:       %s\n", event.RejectedAt.Format("2006-01-02 15:04:05"))
	fmt.Println(rule)

	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}

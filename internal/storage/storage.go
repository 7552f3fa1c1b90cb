package storage

import (
	"context"

	"github.com/mselser95/bet-recommender/internal/engine"
)

// Storage is the interface for persisting recommendations and guard
// rejection events.
type Storage interface {
	// StoreRecommendation stores a built recommendation.
	StoreRecommendation(ctx context.Context, rec *engine.Recommendation) error

	// StoreRejection stores a cross-league rejection audit event.
	StoreRejection(ctx context.Context, event *engine.RejectionEvent) error

	// Close closes the storage connection.
	Close() error
}

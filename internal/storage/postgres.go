package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"github.com/mselser95/bet-recommender/internal/engine"
	"go.uber.org/zap"
)

// PostgresStorage implements Storage using PostgreSQL.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage creates a new PostgreSQL storage.
func NewPostgresStorage(cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Test connection
	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStorage{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// newPostgresStorageWithDB wires an existing connection, used by tests.
func newPostgresStorageWithDB(db *sql.DB, logger *zap.Logger) *PostgresStorage {
	return &PostgresStorage{db: db, logger: logger}
}

// StoreRecommendation stores a recommendation in PostgreSQL.
func (p *PostgresStorage) StoreRecommendation(ctx context.Context, rec *engine.Recommendation) error {
	var ev sql.NullFloat64
	if rec.Evaluation.ExpectedValue != nil {
		ev = sql.NullFloat64{Float64: *rec.Evaluation.ExpectedValue, Valid: true}
	}

	var stakeAmount, stakePercent sql.NullFloat64
	var stakeCurrency sql.NullString
	if rec.Stake != nil {
		stakeAmount = sql.NullFloat64{Float64: rec.Stake.Amount, Valid: true}
		stakePercent = sql.NullFloat64{Float64: rec.Stake.Percent, Valid: true}
		stakeCurrency = sql.NullString{String: rec.Stake.Currency, Valid: true}
	}

	query := `
		INSERT INTO recommendations (
			id, fixture_id, fixture, league, market, track, outcome,
			probability, probability_gap, odds, expected_value, score,
			model_count, agreement, confidence,
			stake_amount, stake_percent, stake_currency,
			explanation, generated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)
	`

	_, err := p.db.ExecContext(ctx, query,
		rec.ID,
		rec.FixtureID,
		rec.Fixture,
		rec.League,
		string(rec.Market),
		string(rec.Track),
		rec.Outcome,
		rec.Evaluation.Probability,
		rec.Evaluation.ProbabilityGap,
		rec.Evaluation.Odds,
		ev,
		rec.Evaluation.Score,
		rec.Ensemble.ModelCount,
		rec.Ensemble.Agreement,
		rec.Confidence,
		stakeAmount,
		stakePercent,
		stakeCurrency,
		rec.Explanation,
		rec.GeneratedAt,
	)

	if err != nil {
		return fmt.Errorf("insert recommendation: %w", err)
	}

	p.logger.Debug("recommendation-stored",
		zap.String("recommendation-id", rec.ID),
		zap.String("fixture-id", rec.FixtureID),
		zap.String("track", string(rec.Track)))

	return nil
}

// StoreRejection stores a cross-league rejection event in PostgreSQL.
func (p *PostgresStorage) StoreRejection(ctx context.Context, event *engine.RejectionEvent) error {
	query := `
		INSERT INTO cross_league_rejections (
			id, model_id, fixture_id, fixture_league, authorized_leagues, rejected_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := p.db.ExecContext(ctx, query,
		event.ID,
		event.ModelID,
		event.FixtureID,
		event.FixtureLeague,
		strings.Join(event.Authorized, ","),
		event.RejectedAt,
	)

	if err != nil {
		return fmt.Errorf("insert rejection: %w", err)
	}

	p.logger.Debug("rejection-stored",
		zap.String("event-id", event.ID),
		zap.String("model-id", event.ModelID),
		zap.String("fixture-id", event.FixtureID))

	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}

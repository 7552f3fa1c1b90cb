package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Fixture/odds feed
	FeedBaseURL       string
	FeedPollInterval  time.Duration
	FeedFixtureWindow time.Duration
	FeedFixtureLimit  int

	// Model layer
	ModelAPIURL          string
	ModelRegistryPath    string
	ModelOutputCacheTTL  time.Duration
	ModelRequestTimeout  time.Duration

	// Live odds stream
	OddsWSURL               string
	WSDialTimeout           time.Duration
	WSPongTimeout           time.Duration
	WSPingInterval          time.Duration
	WSReconnectInitialDelay time.Duration
	WSReconnectMaxDelay     time.Duration
	WSReconnectBackoffMult  float64
	WSQuoteBufferSize       int

	// Engine policy
	EngineEVWeight        float64
	EngineGapWeight       float64
	EngineMinGap          float64
	EngineSafeGap         float64
	EngineSafeEVFloor     float64
	EngineValueEV         float64
	EngineHighVariance    float64
	EngineMediumVariance  float64
	EngineRescoreInterval time.Duration
	EngineWorkers         int

	// Staking
	StakePerBetCapPct     float64
	StakeConservativeMult float64
	StakeBalancedMult     float64
	StakeAggressiveMult   float64

	// Bankroll monitor
	BankrollAPIURL        string
	BankrollUserID        string
	BankrollCheckInterval time.Duration
	BankrollHysteresis    float64

	// Storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Feed defaults
		FeedBaseURL:      getEnvOrDefault("FEED_BASE_URL", "https://api.oddsfeed.example.com"),
		FeedPollInterval:  getDurationOrDefault("FEED_POLL_INTERVAL", 60*time.Second),
		FeedFixtureWindow: getDurationOrDefault("FEED_FIXTURE_WINDOW", 48*time.Hour),
		FeedFixtureLimit:  getIntOrDefault("FEED_FIXTURE_LIMIT", 100),

		// Model layer defaults
		ModelAPIURL:         getEnvOrDefault("MODEL_API_URL", "http://localhost:8090"),
		ModelRegistryPath:   getEnvOrDefault("MODEL_REGISTRY_PATH", "models.json"),
		ModelOutputCacheTTL: getDurationOrDefault("MODEL_OUTPUT_CACHE_TTL", 5*time.Minute),
		ModelRequestTimeout: getDurationOrDefault("MODEL_REQUEST_TIMEOUT", 10*time.Second),

		// Odds stream defaults
		OddsWSURL:               os.Getenv("ODDS_WS_URL"),
		WSDialTimeout:           getDurationOrDefault("WS_DIAL_TIMEOUT", 10*time.Second),
		WSPongTimeout:           getDurationOrDefault("WS_PONG_TIMEOUT", 30*time.Second),
		WSPingInterval:          getDurationOrDefault("WS_PING_INTERVAL", 10*time.Second),
		WSReconnectInitialDelay: getDurationOrDefault("WS_RECONNECT_INITIAL_DELAY", 1*time.Second),
		WSReconnectMaxDelay:     getDurationOrDefault("WS_RECONNECT_MAX_DELAY", 30*time.Second),
		WSReconnectBackoffMult:  getFloat64OrDefault("WS_RECONNECT_BACKOFF_MULTIPLIER", 2.0),
		WSQuoteBufferSize:       getIntOrDefault("WS_QUOTE_BUFFER_SIZE", 1000),

		// Engine defaults
		EngineEVWeight:        getFloat64OrDefault("ENGINE_EV_WEIGHT", 0.6),
		EngineGapWeight:       getFloat64OrDefault("ENGINE_GAP_WEIGHT", 0.4),
		EngineMinGap:          getFloat64OrDefault("ENGINE_MIN_GAP", 0.05),
		EngineSafeGap:         getFloat64OrDefault("ENGINE_SAFE_GAP", 0.25),
		EngineSafeEVFloor:     getFloat64OrDefault("ENGINE_SAFE_EV_FLOOR", -0.02),
		EngineValueEV:         getFloat64OrDefault("ENGINE_VALUE_EV", 0.05),
		EngineHighVariance:    getFloat64OrDefault("ENGINE_HIGH_VARIANCE", 0.01),
		EngineMediumVariance:  getFloat64OrDefault("ENGINE_MEDIUM_VARIANCE", 0.05),
		EngineRescoreInterval: getDurationOrDefault("ENGINE_RESCORE_INTERVAL", 5*time.Minute),
		EngineWorkers:         getIntOrDefault("ENGINE_WORKERS", 8),

		// Staking defaults
		StakePerBetCapPct:     getFloat64OrDefault("STAKE_PER_BET_CAP_PCT", 0.05),
		StakeConservativeMult: getFloat64OrDefault("STAKE_CONSERVATIVE_MULT", 0.25),
		StakeBalancedMult:     getFloat64OrDefault("STAKE_BALANCED_MULT", 0.50),
		StakeAggressiveMult:   getFloat64OrDefault("STAKE_AGGRESSIVE_MULT", 0.75),

		// Bankroll monitor defaults
		BankrollAPIURL:        os.Getenv("BANKROLL_API_URL"),
		BankrollUserID:        os.Getenv("BANKROLL_USER_ID"),
		BankrollCheckInterval: getDurationOrDefault("BANKROLL_CHECK_INTERVAL", 60*time.Second),
		BankrollHysteresis:    getFloat64OrDefault("BANKROLL_HYSTERESIS", 0.8),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "betrec"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "betrec123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "bet_recommender"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.FeedBaseURL == "" {
		return fmt.Errorf("FEED_BASE_URL cannot be empty")
	}

	if c.EngineEVWeight <= 0 || c.EngineGapWeight <= 0 {
		return fmt.Errorf("score weights must be positive, got EV=%f gap=%f",
			c.EngineEVWeight, c.EngineGapWeight)
	}

	if c.EngineMinGap < 0 || c.EngineMinGap >= 1 {
		return fmt.Errorf("ENGINE_MIN_GAP must be in [0, 1), got %f", c.EngineMinGap)
	}

	if c.EngineHighVariance >= c.EngineMediumVariance {
		return fmt.Errorf("ENGINE_HIGH_VARIANCE (%f) must be below ENGINE_MEDIUM_VARIANCE (%f)",
			c.EngineHighVariance, c.EngineMediumVariance)
	}

	if c.StakePerBetCapPct <= 0 || c.StakePerBetCapPct > 1 {
		return fmt.Errorf("STAKE_PER_BET_CAP_PCT must be in (0, 1], got %f", c.StakePerBetCapPct)
	}

	// Risk multipliers must be monotone: conservative <= balanced <= aggressive.
	if !(c.StakeConservativeMult <= c.StakeBalancedMult && c.StakeBalancedMult <= c.StakeAggressiveMult) {
		return fmt.Errorf("risk multipliers must be monotone, got %f/%f/%f",
			c.StakeConservativeMult, c.StakeBalancedMult, c.StakeAggressiveMult)
	}

	for _, m := range []float64{c.StakeConservativeMult, c.StakeBalancedMult, c.StakeAggressiveMult} {
		if m <= 0 || m > 1 {
			return fmt.Errorf("risk multipliers must be in (0, 1], got %f", m)
		}
	}

	if c.StorageMode != "postgres" && c.StorageMode != "console" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'console', got %q", c.StorageMode)
	}

	if c.BankrollHysteresis <= 0 || c.BankrollHysteresis > 1 {
		return fmt.Errorf("BANKROLL_HYSTERESIS must be in (0, 1], got %f", c.BankrollHysteresis)
	}

	if c.EngineWorkers <= 0 {
		return fmt.Errorf("ENGINE_WORKERS must be positive, got %d", c.EngineWorkers)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

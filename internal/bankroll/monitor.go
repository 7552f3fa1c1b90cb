package bankroll

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// Fetcher is an interface for fetching bankroll state.
// Both the HTTP bankroll client and test mocks can implement this interface.
type Fetcher interface {
	GetBankroll(ctx context.Context) (*types.BankrollState, error)
}

// Monitor watches the bankroll and gates stake sizing. When the daily loss
// limit is hit, sizing is disabled until the loss recedes below the
// re-enable threshold, so a balance hovering around the limit does not
// flap the gate on every check.
type Monitor struct {
	enabled atomic.Bool // Atomic for lock-free reads

	// Configuration
	checkInterval   time.Duration
	fetcher         Fetcher
	logger          *zap.Logger
	hysteresisRatio float64 // Re-enable when daily loss <= ratio * limit

	// Protected by mutex
	mu        sync.RWMutex
	lastState *types.BankrollState
	lastCheck time.Time
}

// Config holds bankroll monitor configuration.
type Config struct {
	CheckInterval   time.Duration
	HysteresisRatio float64
	Fetcher         Fetcher
	Logger          *zap.Logger
}

// Status holds current monitor status for debugging.
type Status struct {
	Enabled   bool
	LastCheck time.Time
	State     *types.BankrollState
}

// New creates a new bankroll monitor with the given configuration.
func New(cfg *Config) (*Monitor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfg.CheckInterval <= 0 {
		return nil, fmt.Errorf("check interval must be positive")
	}
	if cfg.HysteresisRatio <= 0 || cfg.HysteresisRatio > 1.0 {
		return nil, fmt.Errorf("hysteresis ratio must be in (0, 1]")
	}

	monitor := &Monitor{
		checkInterval:   cfg.CheckInterval,
		fetcher:         cfg.Fetcher,
		logger:          cfg.Logger,
		hysteresisRatio: cfg.HysteresisRatio,
	}

	// Start enabled by default
	monitor.enabled.Store(true)
	SizingEnabled.Set(1)

	return monitor, nil
}

// IsEnabled returns true if stakes should be sized.
// This is lock-free and safe to call from hot paths.
func (m *Monitor) IsEnabled() bool {
	return m.enabled.Load()
}

// State returns the last fetched bankroll state, or nil if no check has
// succeeded yet.
func (m *Monitor) State() *types.BankrollState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastState == nil {
		return nil
	}

	stateCopy := *m.lastState
	return &stateCopy
}

// Check fetches the bankroll and updates the enabled state.
func (m *Monitor) Check(ctx context.Context) error {
	start := time.Now()
	defer func() {
		CheckDuration.Observe(time.Since(start).Seconds())
	}()

	state, err := m.fetcher.GetBankroll(ctx)
	if err != nil {
		CheckErrorsTotal.Inc()
		m.logger.Error("failed-to-check-bankroll", zap.Error(err))
		return fmt.Errorf("get bankroll: %w", err)
	}

	m.mu.Lock()
	m.lastState = state
	m.lastCheck = time.Now()
	m.mu.Unlock()

	Balance.Set(state.Balance)
	DailyLoss.Set(state.DailyLossAmount)

	currentlyEnabled := m.enabled.Load()

	// State transition logic with hysteresis
	shouldDisable := currentlyEnabled && state.DailyLimitReached()
	shouldEnable := !currentlyEnabled && m.lossRecovered(state)

	if shouldDisable {
		m.enabled.Store(false)
		SizingEnabled.Set(0)
		StateChangesTotal.Inc()

		m.logger.Warn("stake-sizing-disabled",
			zap.Float64("daily-loss", state.DailyLossAmount),
			zap.Float64p("daily-loss-limit", state.DailyLossLimit))
	} else if shouldEnable {
		m.enabled.Store(true)
		SizingEnabled.Set(1)
		StateChangesTotal.Inc()

		m.logger.Info("stake-sizing-enabled",
			zap.Float64("daily-loss", state.DailyLossAmount),
			zap.Float64p("daily-loss-limit", state.DailyLossLimit))
	} else {
		m.logger.Debug("bankroll-checked",
			zap.Float64("balance", state.Balance),
			zap.Float64("daily-loss", state.DailyLossAmount),
			zap.Bool("enabled", currentlyEnabled))
	}

	return nil
}

// lossRecovered reports whether the daily loss has receded far enough below
// the limit to re-enable sizing. A state with no limit always recovers.
func (m *Monitor) lossRecovered(state *types.BankrollState) bool {
	if state.DailyLossLimit == nil {
		return true
	}

	return state.DailyLossAmount <= *state.DailyLossLimit*m.hysteresisRatio
}

// Start begins the background monitoring loop that periodically checks the
// bankroll. This runs until the context is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	m.logger.Info("bankroll-monitor-started",
		zap.Duration("check-interval", m.checkInterval),
		zap.Float64("hysteresis-ratio", m.hysteresisRatio))

	// Check immediately on startup
	if err := m.Check(ctx); err != nil {
		m.logger.Error("initial-bankroll-check-failed", zap.Error(err))
	}

	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("bankroll-monitor-stopping")
			return
		case <-ticker.C:
			if err := m.Check(ctx); err != nil {
				m.logger.Error("bankroll-check-failed", zap.Error(err))
			}
		}
	}
}

// GetStatus returns the current monitor status for debugging.
func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stateCopy *types.BankrollState
	if m.lastState != nil {
		s := *m.lastState
		stateCopy = &s
	}

	return Status{
		Enabled:   m.enabled.Load(),
		LastCheck: m.lastCheck,
		State:     stateCopy,
	}
}

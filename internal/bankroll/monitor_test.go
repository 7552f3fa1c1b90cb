package bankroll

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// mockFetcher returns a programmable bankroll state.
type mockFetcher struct {
	state *types.BankrollState
	err   error
}

func (f *mockFetcher) GetBankroll(_ context.Context) (*types.BankrollState, error) {
	if f.err != nil {
		return nil, f.err
	}
	stateCopy := *f.state
	return &stateCopy, nil
}

func limit(v float64) *float64 { return &v }

func newTestMonitor(t *testing.T, fetcher Fetcher) *Monitor {
	t.Helper()

	monitor, err := New(&Config{
		CheckInterval:   time.Second,
		HysteresisRatio: 0.8,
		Fetcher:         fetcher,
		Logger:          zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return monitor
}

func TestNewValidation(t *testing.T) {
	fetcher := &mockFetcher{state: &types.BankrollState{}}
	logger := zap.NewNop()

	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "nil config", cfg: nil},
		{name: "nil fetcher", cfg: &Config{CheckInterval: time.Second, HysteresisRatio: 0.8, Logger: logger}},
		{name: "nil logger", cfg: &Config{CheckInterval: time.Second, HysteresisRatio: 0.8, Fetcher: fetcher}},
		{name: "zero interval", cfg: &Config{HysteresisRatio: 0.8, Fetcher: fetcher, Logger: logger}},
		{name: "hysteresis above one", cfg: &Config{CheckInterval: time.Second, HysteresisRatio: 1.5, Fetcher: fetcher, Logger: logger}},
		{name: "zero hysteresis", cfg: &Config{CheckInterval: time.Second, Fetcher: fetcher, Logger: logger}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestMonitorStartsEnabled(t *testing.T) {
	monitor := newTestMonitor(t, &mockFetcher{state: &types.BankrollState{Balance: 1000}})

	if !monitor.IsEnabled() {
		t.Error("monitor should start enabled")
	}
	if monitor.State() != nil {
		t.Error("state should be nil before first check")
	}
}

func TestMonitorDisablesAtDailyLimit(t *testing.T) {
	fetcher := &mockFetcher{state: &types.BankrollState{
		Balance:         1000,
		Currency:        "EUR",
		DailyLossAmount: 120,
		DailyLossLimit:  limit(100),
		Profile:         types.RiskBalanced,
	}}
	monitor := newTestMonitor(t, fetcher)

	if err := monitor.Check(context.Background()); err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if monitor.IsEnabled() {
		t.Error("monitor should be disabled at daily limit")
	}
	if state := monitor.State(); state == nil || state.Balance != 1000 {
		t.Errorf("State() = %+v", monitor.State())
	}
}

func TestMonitorHysteresis(t *testing.T) {
	fetcher := &mockFetcher{state: &types.BankrollState{
		Balance:         1000,
		DailyLossAmount: 120,
		DailyLossLimit:  limit(100),
	}}
	monitor := newTestMonitor(t, fetcher)

	_ = monitor.Check(context.Background())
	if monitor.IsEnabled() {
		t.Fatal("should be disabled at limit")
	}

	// Loss just below the limit is not enough: 90 > 100*0.8
	fetcher.state.DailyLossAmount = 90
	_ = monitor.Check(context.Background())
	if monitor.IsEnabled() {
		t.Error("should stay disabled above the re-enable threshold")
	}

	// Loss at the re-enable threshold recovers
	fetcher.state.DailyLossAmount = 80
	_ = monitor.Check(context.Background())
	if !monitor.IsEnabled() {
		t.Error("should re-enable at the hysteresis threshold")
	}
}

func TestMonitorNoLimitNeverDisables(t *testing.T) {
	fetcher := &mockFetcher{state: &types.BankrollState{
		Balance:         1000,
		DailyLossAmount: 99999,
	}}
	monitor := newTestMonitor(t, fetcher)

	_ = monitor.Check(context.Background())
	if !monitor.IsEnabled() {
		t.Error("monitor without a daily limit should stay enabled")
	}
}

func TestMonitorCheckError(t *testing.T) {
	fetcher := &mockFetcher{err: fmt.Errorf("connection refused")}
	monitor := newTestMonitor(t, fetcher)

	if err := monitor.Check(context.Background()); err == nil {
		t.Error("expected error")
	}
	// Fetch failure keeps the last known gate state
	if !monitor.IsEnabled() {
		t.Error("gate should be unchanged on fetch failure")
	}
}

func TestClientGetBankroll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bankroll" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"balance": 2500.50,
			"currency": "EUR",
			"total_profit_loss": -120.25,
			"daily_loss_amount": 45.00,
			"daily_loss_limit": 100.00,
			"risk_profile": "balanced"
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	state, err := client.GetBankroll(context.Background())
	if err != nil {
		t.Fatalf("GetBankroll() error = %v", err)
	}

	if state.Balance != 2500.50 || state.Currency != "EUR" {
		t.Errorf("state = %+v", state)
	}
	if state.DailyLossLimit == nil || *state.DailyLossLimit != 100.00 {
		t.Errorf("daily loss limit = %v", state.DailyLossLimit)
	}
	if state.Profile != types.RiskBalanced {
		t.Errorf("profile = %s", state.Profile)
	}
}

func TestStaticFetcher(t *testing.T) {
	fetcher := NewStaticFetcher(&types.BankrollState{Balance: 500, Currency: "USD"})

	state, err := fetcher.GetBankroll(context.Background())
	if err != nil {
		t.Fatalf("GetBankroll() error = %v", err)
	}
	if state.Balance != 500 {
		t.Errorf("balance = %f", state.Balance)
	}

	// Returned state is a copy
	state.Balance = 0
	again, _ := fetcher.GetBankroll(context.Background())
	if again.Balance != 500 {
		t.Error("mutation leaked into the static fetcher")
	}

	empty := NewStaticFetcher(nil)
	if _, err := empty.GetBankroll(context.Background()); err == nil {
		t.Error("expected error for nil state")
	}
}

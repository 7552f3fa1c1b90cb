package oddstream

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testConfig() Config {
	logger, _ := zap.NewDevelopment()
	return Config{
		URL:                   "wss://odds-stream.example.com/ws",
		DialTimeout:           10 * time.Second,
		PongTimeout:           15 * time.Second,
		PingInterval:          10 * time.Second,
		ReconnectInitialDelay: 1 * time.Second,
		ReconnectMaxDelay:     30 * time.Second,
		ReconnectBackoffMult:  2.0,
		QuoteBufferSize:       1000,
		Logger:                logger,
	}
}

func TestNew(t *testing.T) {
	cfg := testConfig()
	mgr := New(cfg)

	if mgr == nil {
		t.Fatal("expected non-nil manager")
	}
	if mgr.url != cfg.URL {
		t.Errorf("expected URL %q, got %q", cfg.URL, mgr.url)
	}
	if mgr.reconnectMgr == nil {
		t.Error("expected non-nil reconnect manager")
	}
	if cap(mgr.quoteChan) != cfg.QuoteBufferSize {
		t.Errorf("expected quote channel capacity %d, got %d", cfg.QuoteBufferSize, cap(mgr.quoteChan))
	}
	if mgr.subscribed == nil {
		t.Error("expected non-nil subscribed map")
	}
}

func TestSubscribe_EmptyFixtures(t *testing.T) {
	mgr := New(testConfig())

	err := mgr.Subscribe(context.Background(), []string{})
	if err != nil {
		t.Errorf("expected no error for empty fixtures, got %v", err)
	}
}

func TestSubscribe_DuplicateFixtures(t *testing.T) {
	mgr := New(testConfig())

	// Manually mark fixtures as subscribed
	mgr.mu.Lock()
	mgr.subscribed["fx-1"] = true
	mgr.subscribed["fx-2"] = true
	mgr.mu.Unlock()

	err := mgr.Subscribe(context.Background(), []string{"fx-1", "fx-2"})
	if err != nil {
		t.Errorf("expected no error for duplicate fixtures, got %v", err)
	}

	mgr.mu.RLock()
	count := len(mgr.subscribed)
	mgr.mu.RUnlock()

	if count != 2 {
		t.Errorf("expected 2 subscribed fixtures, got %d", count)
	}
}

func TestUnsubscribe_NotSubscribed(t *testing.T) {
	mgr := New(testConfig())

	err := mgr.Unsubscribe(context.Background(), []string{"fx-unknown"})
	if err != nil {
		t.Errorf("expected no error for unknown fixtures, got %v", err)
	}
}

func TestQuoteChan(t *testing.T) {
	mgr := New(testConfig())

	if mgr.QuoteChan() == nil {
		t.Fatal("expected non-nil quote channel")
	}
}

func TestQuoteMessageToQuote(t *testing.T) {
	capturedAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		msg     quoteMessage
		wantErr bool
	}{
		{
			name: "valid message",
			msg: quoteMessage{
				EventType:  "odds_update",
				FixtureID:  "fx-1",
				Market:     "1x2",
				Bookmaker:  "pinnacle",
				Odds:       map[string]float64{"home": 2.1, "draw": 3.4, "away": 3.6},
				CapturedAt: capturedAt,
			},
			wantErr: false,
		},
		{
			name: "unknown market",
			msg: quoteMessage{
				FixtureID:  "fx-1",
				Market:     "correct_score",
				Odds:       map[string]float64{"1-0": 8.0},
				CapturedAt: capturedAt,
			},
			wantErr: true,
		},
		{
			name: "missing fixture id",
			msg: quoteMessage{
				Market:     "1x2",
				Odds:       map[string]float64{"home": 2.1},
				CapturedAt: capturedAt,
			},
			wantErr: true,
		},
		{
			name: "missing odds",
			msg: quoteMessage{
				FixtureID:  "fx-1",
				Market:     "1x2",
				CapturedAt: capturedAt,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := tt.msg.toQuote()
			if (err != nil) != tt.wantErr {
				t.Fatalf("toQuote() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if quote.FixtureID != tt.msg.FixtureID || string(quote.Market) != tt.msg.Market {
				t.Errorf("quote = %+v", quote)
			}
			if !quote.CapturedAt.Equal(capturedAt) {
				t.Errorf("captured at = %v", quote.CapturedAt)
			}
		})
	}
}

func TestQuoteMessageToQuoteDefaultsCapturedAt(t *testing.T) {
	msg := quoteMessage{
		FixtureID: "fx-1",
		Market:    "btts",
		Odds:      map[string]float64{"yes": 1.85, "no": 1.95},
	}

	quote, err := msg.toQuote()
	if err != nil {
		t.Fatalf("toQuote() error = %v", err)
	}
	if quote.CapturedAt.IsZero() {
		t.Error("expected captured-at to default to now")
	}
}

func TestReconnectBackoff(t *testing.T) {
	rm := NewReconnectManager(ReconnectConfig{
		InitialDelay:      time.Second,
		MaxDelay:          8 * time.Second,
		BackoffMultiplier: 2.0,
		JitterPercent:     0,
	}, zap.NewNop())

	if got := rm.nextBackoff(); got != time.Second {
		t.Errorf("initial backoff = %v, want 1s", got)
	}

	rm.incrementBackoff()
	if got := rm.nextBackoff(); got != 2*time.Second {
		t.Errorf("backoff after one failure = %v, want 2s", got)
	}

	// Capped at max delay
	for i := 0; i < 10; i++ {
		rm.incrementBackoff()
	}
	if got := rm.nextBackoff(); got != 8*time.Second {
		t.Errorf("capped backoff = %v, want 8s", got)
	}

	rm.Reset()
	if got := rm.nextBackoff(); got != time.Second {
		t.Errorf("backoff after reset = %v, want 1s", got)
	}
}

func TestReconnectContextCanceled(t *testing.T) {
	rm := NewReconnectManager(ReconnectConfig{
		InitialDelay:      10 * time.Millisecond,
		MaxDelay:          time.Second,
		BackoffMultiplier: 2.0,
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rm.Reconnect(ctx, func(context.Context) error { return nil })
	if err != context.Canceled {
		t.Errorf("Reconnect() error = %v, want context.Canceled", err)
	}
}

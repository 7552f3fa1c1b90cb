package quotes

import (
	"context"
	"testing"
	"time"

	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

func newTestBook(t *testing.T) (*Book, chan *types.OddsQuote, context.CancelFunc) {
	t.Helper()

	quoteChan := make(chan *types.OddsQuote, 10)
	book := New(&Config{
		Logger:       zap.NewNop(),
		QuoteChannel: quoteChan,
		UpdateBuffer: 10,
	})

	ctx, cancel := context.WithCancel(context.Background())
	if err := book.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	t.Cleanup(func() {
		cancel()
		close(quoteChan)
		_ = book.Close()
	})

	return book, quoteChan, cancel
}

func testQuote(fixtureID string, market types.MarketType, bookmaker string, capturedAt time.Time) *types.OddsQuote {
	return &types.OddsQuote{
		FixtureID:  fixtureID,
		Market:     market,
		Bookmaker:  bookmaker,
		Odds:       map[string]float64{"home": 2.10, "draw": 3.40, "away": 3.60},
		CapturedAt: capturedAt,
	}
}

func waitForQuote(t *testing.T, book *Book, fixtureID string, market types.MarketType, want func(*types.OddsQuote) bool) *types.OddsQuote {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for quote")
			return nil
		default:
			if quote, ok := book.Get(fixtureID, market); ok && want(quote) {
				return quote
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func TestBookStoresQuote(t *testing.T) {
	book, quoteChan, _ := newTestBook(t)

	now := time.Now()
	quoteChan <- testQuote("fx-1", types.MarketMatchWinner, "pinnacle", now)

	quote := waitForQuote(t, book, "fx-1", types.MarketMatchWinner, func(q *types.OddsQuote) bool {
		return q.Bookmaker == "pinnacle"
	})
	if quote.Odds["home"] != 2.10 {
		t.Errorf("odds = %v", quote.Odds)
	}
}

func TestBookKeepsFreshestQuote(t *testing.T) {
	book, quoteChan, _ := newTestBook(t)

	now := time.Now()
	quoteChan <- testQuote("fx-1", types.MarketMatchWinner, "first", now)
	waitForQuote(t, book, "fx-1", types.MarketMatchWinner, func(q *types.OddsQuote) bool {
		return q.Bookmaker == "first"
	})

	// Newer quote replaces
	quoteChan <- testQuote("fx-1", types.MarketMatchWinner, "newer", now.Add(time.Minute))
	waitForQuote(t, book, "fx-1", types.MarketMatchWinner, func(q *types.OddsQuote) bool {
		return q.Bookmaker == "newer"
	})

	// Older quote is discarded
	quoteChan <- testQuote("fx-1", types.MarketMatchWinner, "older", now.Add(-time.Minute))
	// Push a quote for a different market as a sync point
	quoteChan <- testQuote("fx-1", types.MarketBTTS, "sync", now)
	waitForQuote(t, book, "fx-1", types.MarketBTTS, func(q *types.OddsQuote) bool {
		return q.Bookmaker == "sync"
	})

	quote, ok := book.Get("fx-1", types.MarketMatchWinner)
	if !ok || quote.Bookmaker != "newer" {
		t.Errorf("bookmaker = %v, want newer", quote)
	}
}

func TestBookSnapshot(t *testing.T) {
	book, quoteChan, _ := newTestBook(t)

	now := time.Now()
	quoteChan <- testQuote("fx-1", types.MarketMatchWinner, "pinnacle", now)
	quoteChan <- testQuote("fx-1", types.MarketOverUnder25, "pinnacle", now)
	quoteChan <- testQuote("fx-2", types.MarketMatchWinner, "pinnacle", now)

	waitForQuote(t, book, "fx-2", types.MarketMatchWinner, func(q *types.OddsQuote) bool { return true })
	waitForQuote(t, book, "fx-1", types.MarketOverUnder25, func(q *types.OddsQuote) bool { return true })

	snapshot := book.Snapshot("fx-1")
	if len(snapshot) != 2 {
		t.Fatalf("snapshot has %d markets, want 2", len(snapshot))
	}
	if _, ok := snapshot[types.MarketMatchWinner]; !ok {
		t.Error("snapshot missing 1x2 quote")
	}
	if _, ok := snapshot[types.MarketBTTS]; ok {
		t.Error("snapshot has btts quote that was never stored")
	}

	// Snapshot returns clones
	snapshot[types.MarketMatchWinner].Odds["home"] = 99
	quote, _ := book.Get("fx-1", types.MarketMatchWinner)
	if quote.Odds["home"] == 99 {
		t.Error("snapshot mutation leaked into the book")
	}
}

func TestBookStaleness(t *testing.T) {
	book, quoteChan, _ := newTestBook(t)

	now := time.Now()
	quoteChan <- testQuote("fx-1", types.MarketMatchWinner, "pinnacle", now.Add(-time.Hour))
	quoteChan <- testQuote("fx-1", types.MarketBTTS, "pinnacle", now.Add(-time.Minute))

	waitForQuote(t, book, "fx-1", types.MarketBTTS, func(q *types.OddsQuote) bool { return true })
	waitForQuote(t, book, "fx-1", types.MarketMatchWinner, func(q *types.OddsQuote) bool { return true })

	age, ok := book.Staleness("fx-1", now)
	if !ok {
		t.Fatal("Staleness() found no quotes")
	}
	if age != time.Hour {
		t.Errorf("staleness = %v, want 1h", age)
	}

	if _, ok := book.Staleness("fx-unknown", now); ok {
		t.Error("Staleness() reported quotes for unknown fixture")
	}
}

func TestBookDrop(t *testing.T) {
	book, quoteChan, _ := newTestBook(t)

	now := time.Now()
	quoteChan <- testQuote("fx-1", types.MarketMatchWinner, "pinnacle", now)
	waitForQuote(t, book, "fx-1", types.MarketMatchWinner, func(q *types.OddsQuote) bool { return true })

	book.Drop("fx-1")
	if _, ok := book.Get("fx-1", types.MarketMatchWinner); ok {
		t.Error("quote still present after Drop")
	}
}

func TestBookUpdateChan(t *testing.T) {
	book, quoteChan, _ := newTestBook(t)

	now := time.Now()
	quoteChan <- testQuote("fx-1", types.MarketMatchWinner, "pinnacle", now)

	select {
	case update := <-book.UpdateChan():
		if update.FixtureID != "fx-1" || update.Market != types.MarketMatchWinner {
			t.Errorf("unexpected update: %+v", update)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
	}
}

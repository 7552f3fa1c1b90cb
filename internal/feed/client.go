package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// Client is an HTTP client for the fixtures and odds feed API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new feed API client.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// fixturePayload is the feed API wire shape for a fixture.
type fixturePayload struct {
	ID        string    `json:"id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	League    string    `json:"league"`
	KickoffAt time.Time `json:"kickoff_at"`
}

// quotePayload is the feed API wire shape for an odds quote.
type quotePayload struct {
	Market     string             `json:"market"`
	Bookmaker  string             `json:"bookmaker"`
	Odds       map[string]float64 `json:"odds"`
	CapturedAt time.Time          `json:"captured_at"`
}

// FetchUpcomingFixtures fetches fixtures kicking off within the window.
func (c *Client) FetchUpcomingFixtures(ctx context.Context, window time.Duration, limit int) ([]*types.Fixture, error) {
	endpoint := fmt.Sprintf("%s/fixtures", c.baseURL)

	params := url.Values{}
	params.Add("status", "upcoming")
	params.Add("within_hours", strconv.Itoa(int(window.Hours())))
	params.Add("limit", strconv.Itoa(limit))

	requestURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var payloads []fixturePayload
	err = json.Unmarshal(body, &payloads)
	if err != nil {
		return nil, fmt.Errorf("unmarshal fixtures: %w", err)
	}

	fixtures := make([]*types.Fixture, 0, len(payloads))
	for _, p := range payloads {
		if p.ID == "" || p.League == "" {
			c.logger.Debug("skipping-incomplete-fixture", zap.String("fixture-id", p.ID))
			continue
		}
		fixtures = append(fixtures, &types.Fixture{
			ID:        p.ID,
			HomeTeam:  p.HomeTeam,
			AwayTeam:  p.AwayTeam,
			League:    p.League,
			KickoffAt: p.KickoffAt,
		})
	}

	c.logger.Debug("fetched-fixtures", zap.Int("count", len(fixtures)))

	return fixtures, nil
}

// FetchQuotes fetches the current odds quotes for a fixture, one per market
// the feed covers.
func (c *Client) FetchQuotes(ctx context.Context, fixtureID string) ([]*types.OddsQuote, error) {
	requestURL := fmt.Sprintf("%s/fixtures/%s/odds", c.baseURL, fixtureID)

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var payloads []quotePayload
	err = json.Unmarshal(body, &payloads)
	if err != nil {
		return nil, fmt.Errorf("unmarshal quotes: %w", err)
	}

	quotes := make([]*types.OddsQuote, 0, len(payloads))
	for _, p := range payloads {
		market := types.MarketType(p.Market)
		if !market.Valid() {
			c.logger.Debug("skipping-unknown-market",
				zap.String("fixture-id", fixtureID),
				zap.String("market", p.Market))
			continue
		}
		quotes = append(quotes, &types.OddsQuote{
			FixtureID:  fixtureID,
			Market:     market,
			Bookmaker:  p.Bookmaker,
			Odds:       p.Odds,
			CapturedAt: p.CapturedAt,
		})
	}

	return quotes, nil
}

func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "bet-recommender/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return body, nil
}

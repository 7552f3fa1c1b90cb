package bankroll

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/bet-recommender/pkg/types"
)

// Client fetches bankroll state from the account API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new bankroll client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetBankroll fetches the current bankroll state.
func (c *Client) GetBankroll(ctx context.Context) (*types.BankrollState, error) {
	url := fmt.Sprintf("%s/bankroll", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	var state types.BankrollState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("decode bankroll: %w", err)
	}

	return &state, nil
}

// StaticFetcher serves a fixed bankroll state. Used when the bankroll comes
// from configuration instead of the account API, and in the one-shot CLI.
type StaticFetcher struct {
	state *types.BankrollState
}

// NewStaticFetcher creates a fetcher serving a fixed state.
func NewStaticFetcher(state *types.BankrollState) *StaticFetcher {
	return &StaticFetcher{state: state}
}

// GetBankroll returns the fixed state.
func (f *StaticFetcher) GetBankroll(_ context.Context) (*types.BankrollState, error) {
	if f.state == nil {
		return nil, fmt.Errorf("no bankroll configured")
	}

	stateCopy := *f.state
	return &stateCopy, nil
}

package models

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/mselser95/bet-recommender/pkg/types"
)

// OutputClient fetches model output distributions from the model-serving API
type OutputClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOutputClient creates a new model output client
func NewOutputClient(baseURL string, timeout time.Duration) *OutputClient {
	return &OutputClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchOutputs fetches the outputs of one model for a fixture. The serving
// API returns one distribution per market the model covers.
func (c *OutputClient) FetchOutputs(ctx context.Context, modelID, fixtureID string) ([]*types.ModelOutput, error) {
	url := fmt.Sprintf("%s/models/%s/outputs?fixture_id=%s", c.baseURL, modelID, fixtureID)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Model has no outputs for this fixture
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	var data struct {
		Outputs []struct {
			Market        string             `json:"market"`
			Probabilities map[string]float64 `json:"probabilities"`
		} `json:"outputs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	outputs := make([]*types.ModelOutput, 0, len(data.Outputs))
	for _, raw := range data.Outputs {
		market := types.MarketType(raw.Market)
		if !market.Valid() {
			ModelOutputsSkippedTotal.WithLabelValues("unknown_market").Inc()
			continue
		}
		outputs = append(outputs, &types.ModelOutput{
			ModelID:       modelID,
			FixtureID:     fixtureID,
			Market:        market,
			Probabilities: raw.Probabilities,
		})
	}

	return outputs, nil
}

package models

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// Model is one registered prediction model: its identifier, the league alias
// set it is authorized for, and its ensemble weight. Authorization is plain
// configuration; adding a league or model is a registry edit, not new code.
type Model struct {
	ID      string   `json:"id"`
	Leagues []string `json:"leagues"`
	Weight  float64  `json:"weight"`
}

// Registry holds the configured model catalogue. It is loaded once at
// startup and read-only afterwards.
type Registry struct {
	models map[string]Model
	logger *zap.Logger
}

// LoadRegistry reads the model registry from a JSON file.
func LoadRegistry(path string, logger *zap.Logger) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}

	var entries []Model
	err = json.Unmarshal(data, &entries)
	if err != nil {
		return nil, fmt.Errorf("parse registry file: %w", err)
	}

	return NewRegistry(entries, logger)
}

// NewRegistry builds a registry from model entries. Every model needs an ID,
// at least one authorized league, and a non-negative weight; a zero weight
// defaults to 1.
func NewRegistry(entries []Model, logger *zap.Logger) (*Registry, error) {
	models := make(map[string]Model, len(entries))

	for _, entry := range entries {
		if entry.ID == "" {
			return nil, fmt.Errorf("model entry missing id")
		}
		if len(entry.Leagues) == 0 {
			return nil, fmt.Errorf("model %s has no authorized leagues", entry.ID)
		}
		if entry.Weight < 0 {
			return nil, fmt.Errorf("model %s has negative weight %f", entry.ID, entry.Weight)
		}
		if _, exists := models[entry.ID]; exists {
			return nil, fmt.Errorf("duplicate model id %s", entry.ID)
		}

		if entry.Weight == 0 {
			entry.Weight = 1
		}

		normalized := make([]string, len(entry.Leagues))
		for i, league := range entry.Leagues {
			normalized[i] = types.NormalizeLeague(league)
		}
		entry.Leagues = normalized

		models[entry.ID] = entry
	}

	logger.Info("model-registry-loaded", zap.Int("model-count", len(models)))

	return &Registry{models: models, logger: logger}, nil
}

// All returns every registered model, sorted by ID for deterministic
// iteration.
func (r *Registry) All() []Model {
	out := make([]Model, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Get returns the model with the given ID.
func (r *Registry) Get(id string) (Model, bool) {
	m, ok := r.models[id]
	return m, ok
}

// ForLeague returns the models authorized for a league, sorted by ID.
func (r *Registry) ForLeague(league string) []Model {
	needle := types.NormalizeLeague(league)

	var out []Model
	for _, m := range r.models {
		for _, alias := range m.Leagues {
			if alias == needle {
				out = append(out, m)
				break
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Weights returns the ensemble weight per model ID.
func (r *Registry) Weights() map[string]float64 {
	weights := make(map[string]float64, len(r.models))
	for id, m := range r.models {
		weights[id] = m.Weight
	}
	return weights
}

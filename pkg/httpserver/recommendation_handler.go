package httpserver

import (
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/mselser95/bet-recommender/internal/engine"
	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// RecommendationSource serves the latest recommendation per fixture.
type RecommendationSource interface {
	// Latest returns the most recent recommendation for a fixture.
	Latest(fixtureID string) (*engine.Recommendation, bool)

	// All returns the latest recommendation of every scored fixture.
	All() []*engine.Recommendation
}

// Scorer runs a one-shot scoring pass over caller-supplied inputs.
type Scorer interface {
	Build(
		fixture *types.Fixture,
		outputs []*types.ModelOutput,
		quotes map[types.MarketType]*types.OddsQuote,
		bankroll *types.BankrollState,
	) (*engine.Recommendation, []*engine.RejectionEvent, error)
}

// RecommendationHandler handles HTTP requests for recommendations.
type RecommendationHandler struct {
	source RecommendationSource
	scorer Scorer
	logger *zap.Logger
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(source RecommendationSource, scorer Scorer, logger *zap.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		source: source,
		scorer: scorer,
		logger: logger,
	}
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListResponse wraps the recommendation list.
type ListResponse struct {
	Recommendations []*engine.Recommendation `json:"recommendations"`
}

// HandleList handles GET /api/recommendations[?fixture_id=<id>] requests.
func (h *RecommendationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	fixtureID := r.URL.Query().Get("fixture_id")

	if fixtureID != "" {
		rec, exists := h.source.Latest(fixtureID)
		if !exists {
			h.writeError(w, "no recommendation for fixture", http.StatusNotFound)
			return
		}

		h.writeJSON(w, http.StatusOK, rec)
		return
	}

	recs := h.source.All()
	if recs == nil {
		recs = []*engine.Recommendation{}
	}

	h.writeJSON(w, http.StatusOK, ListResponse{Recommendations: recs})
}

// ScoreRequest is the POST /api/score payload: a fixture with its model
// outputs and quotes, scored in one pass without touching tracked state.
type ScoreRequest struct {
	Fixture  *types.Fixture       `json:"fixture"`
	Outputs  []*types.ModelOutput `json:"model_outputs"`
	Quotes   []*types.OddsQuote   `json:"quotes"`
	Bankroll *types.BankrollState `json:"bankroll,omitempty"`
}

// ScoreResponse is the POST /api/score result.
type ScoreResponse struct {
	Recommendation *engine.Recommendation   `json:"recommendation,omitempty"`
	Rejections     []*engine.RejectionEvent `json:"rejections,omitempty"`
}

// HandleScore handles POST /api/score requests.
func (h *RecommendationHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Fixture == nil || req.Fixture.ID == "" {
		h.writeError(w, "missing fixture", http.StatusBadRequest)
		return
	}
	if req.Fixture.League == "" {
		h.writeError(w, "missing fixture league", http.StatusBadRequest)
		return
	}

	quotes := make(map[types.MarketType]*types.OddsQuote, len(req.Quotes))
	for _, quote := range req.Quotes {
		quote.FixtureID = req.Fixture.ID
		existing, ok := quotes[quote.Market]
		if ok && !quote.Newer(existing) {
			continue
		}
		quotes[quote.Market] = quote
	}

	h.logger.Debug("score-request-received",
		zap.String("fixture-id", req.Fixture.ID),
		zap.Int("output-count", len(req.Outputs)),
		zap.Int("quote-count", len(quotes)))

	rec, rejections, err := h.scorer.Build(req.Fixture, req.Outputs, quotes, req.Bankroll)
	if err != nil {
		h.logger.Error("score-request-failed",
			zap.String("fixture-id", req.Fixture.ID),
			zap.Error(err))
		h.writeError(w, "scoring failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, ScoreResponse{
		Recommendation: rec,
		Rejections:     rejections,
	})
}

func (h *RecommendationHandler) writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	err := json.NewEncoder(w).Encode(payload)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (h *RecommendationHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	h.writeJSON(w, statusCode, ErrorResponse{Error: message})
}

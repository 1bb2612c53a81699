package api

import (
	"net/http"

	"github.com/trogers1052/alert-relevance-service/internal/models"
	"github.com/trogers1052/alert-relevance-service/internal/relevance"
)

// predictRequest is the body of POST /relevance/predict. When user_id is set
// and no overrides are given, the user's stored preferences and holdings
// are used.
type predictRequest struct {
	UserID           string                   `json:"user_id"`
	AlertType        string                   `json:"alert_type"`
	Symbol           string                   `json:"symbol"`
	Message          string                   `json:"message"`
	Change           float64                  `json:"change"`
	Sentiment        string                   `json:"sentiment"`
	Preferences      *models.Preferences      `json:"preferences"`
	PortfolioContext *models.PortfolioContext `json:"portfolio_context"`
}

// Predict handles POST /relevance/predict
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := relevance.Input{
		Type:      req.AlertType,
		Symbol:    req.Symbol,
		Message:   req.Message,
		Change:    req.Change,
		Sentiment: req.Sentiment,
	}

	var score float64
	if req.UserID != "" && req.Preferences == nil && req.PortfolioContext == nil {
		s, err := h.alerts.Score(r.Context(), in, req.UserID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		score = s
	} else {
		prefs := models.DefaultPreferences()
		if req.Preferences != nil {
			if err := req.Preferences.Validate(); err != nil {
				h.fail(w, r, err)
				return
			}
			prefs = *req.Preferences
		}
		var pc models.PortfolioContext
		if req.PortfolioContext != nil {
			pc = *req.PortfolioContext
		}
		score = relevance.Predict(in, prefs, pc)
	}

	respondJSON(w, http.StatusOK, map[string]float64{"relevance_score": score})
}

// Train handles POST /relevance/train
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	result, err := h.trainer.Run(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetPerformance handles GET /relevance/performance
func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.model.Performance())
}

// GetInsights handles GET /relevance/insights
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	insights := h.model.Insights()
	if !insights.HasData() {
		h.log.Debug().Msg("Insights requested before any feedback was labeled")
	}
	respondJSON(w, http.StatusOK, insights)
}

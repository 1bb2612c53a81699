package relevance

import (
	"math"

	"github.com/trogers1052/alert-relevance-service/internal/models"
)

// Input is the alert as seen by the predictor.
type Input struct {
	Type      string  `json:"type"`
	Symbol    string  `json:"symbol,omitempty"`
	Message   string  `json:"message,omitempty"`
	Change    float64 `json:"change,omitempty"`
	Sentiment string  `json:"sentiment,omitempty"`
}

// InputFromAlert combines a stored alert with the signal that raised it.
func InputFromAlert(a *models.Alert, sig models.AlertSignal) Input {
	return Input{
		Type:      a.Category,
		Symbol:    a.Symbol,
		Message:   a.Message,
		Change:    sig.Change,
		Sentiment: sig.Sentiment,
	}
}

// Scoring constants. The retrainer grades this exact rule set, so changing
// any of them changes both predictions and reported accuracy.
const (
	baseScore = 0.5

	priceMoveWeight     = 0.2
	priceMoveFullScale  = 5.0
	priceMovePenalty    = 0.1
	sentimentBonus      = 0.15
	heldNewsBonus       = 0.1
	heldEarningsBonus   = 0.2
	riskProfileBonus    = 0.1
	largePositionBonus  = 0.05
	largePositionShares = 50
)

// Predict scores an alert for a user. It is a pure function: identical
// inputs always produce the same result, always within [0,1].
func Predict(in Input, prefs models.Preferences, pc models.PortfolioContext) float64 {
	prefs = prefs.WithDefaults()
	score := baseScore

	switch in.Type {
	case models.CategoryPriceGain, models.CategoryPriceDrop:
		change := math.Abs(in.Change)
		if change >= prefs.MinPriceChangeAlert {
			score += priceMoveWeight * (change / priceMoveFullScale)
		} else {
			score -= priceMovePenalty
		}
	case models.CategoryNewsSentiment:
		if in.Sentiment == models.SentimentPositive || in.Sentiment == models.SentimentNegative {
			score += sentimentBonus
		}
		if pc.Holds(in.Symbol) {
			score += heldNewsBonus
		}
	case models.CategoryEarningsReport:
		if pc.Holds(in.Symbol) {
			score += heldEarningsBonus
		}
	}

	switch {
	case prefs.RiskProfile == models.RiskConservative && in.Type == models.CategoryPriceDrop:
		score += riskProfileBonus
	case prefs.RiskProfile == models.RiskAggressive && in.Type == models.CategoryPriceGain:
		score += riskProfileBonus
	}

	if qty, ok := pc.HoldingQuantities[in.Symbol]; ok && qty > largePositionShares {
		score += largePositionBonus
	}

	return clamp(score, 0.0, 1.0)
}

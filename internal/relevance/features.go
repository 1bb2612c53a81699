package relevance

import (
	"strings"
	"unicode/utf8"

	"github.com/trogers1052/alert-relevance-service/internal/models"
)

const defaultPredictedRelevance = 0.5

// placeholderMessage stands in for the message text when a feature vector
// is turned back into an alert for evaluation.
const placeholderMessage = "placeholder"

// ExtractFeatures flattens a training record. Keyword flags are computed by
// case-insensitive substring search over the message.
func ExtractFeatures(rec models.TrainingRecord) models.FeatureVector {
	msg := strings.ToLower(rec.Message)

	predicted := defaultPredictedRelevance
	if rec.PredictedRelevance != nil {
		predicted = *rec.PredictedRelevance
	}

	return models.FeatureVector{
		AlertType:          rec.AlertType,
		Symbol:             rec.Symbol,
		HasSymbol:          flag(rec.Symbol != ""),
		MessageLength:      utf8.RuneCountInString(rec.Message),
		PredictedRelevance: predicted,
		ContainsPercent:    flag(strings.Contains(msg, "%")),
		MentionsPrice:      flag(containsAny(msg, "price", "stock", "share")),
		MentionsEarnings:   flag(strings.Contains(msg, "earnings")),
		MentionsNews:       flag(strings.Contains(msg, "news")),
		MentionsAlert:      flag(strings.Contains(msg, "alert")),
	}
}

// SyntheticAlert rebuilds the predictor input the retrainer grades. Only
// the category and symbol survive the round trip.
func SyntheticAlert(fv models.FeatureVector) Input {
	return Input{
		Type:    fv.AlertType,
		Symbol:  fv.Symbol,
		Message: placeholderMessage,
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

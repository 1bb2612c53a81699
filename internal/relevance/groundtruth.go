package relevance

import "github.com/trogers1052/alert-relevance-service/internal/models"

// GroundTruth computes the weighted-average relevance users assigned to an
// alert through their feedback. ok is false when the events carry no
// recognised signal.
func GroundTruth(feedback []models.TrainingFeedback) (label float64, ok bool) {
	var weighted, totalWeight float64

	for _, fb := range feedback {
		score, weight, known := groundTruthWeight(fb)
		if !known {
			continue
		}
		weighted += score * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0, false
	}
	return weighted / totalWeight, true
}

// groundTruthWeight returns the (score, weight) pair for one event.
func groundTruthWeight(fb models.TrainingFeedback) (float64, float64, bool) {
	switch fb.Kind {
	case models.FeedbackRating:
		if fb.Rating == nil {
			return 0, 0, false
		}
		return float64(*fb.Rating-1) / 4.0, 2.0, true
	case models.FeedbackMarkRelevant:
		return 1.0, 1.5, true
	case models.FeedbackMarkIrrelevant:
		return 0.0, 1.5, true
	case models.FeedbackClick:
		return 0.8, 1.0, true
	case models.FeedbackView:
		return 0.5, 0.5, true
	case models.FeedbackDismiss:
		return 0.2, 1.0, true
	default:
		return 0, 0, false
	}
}

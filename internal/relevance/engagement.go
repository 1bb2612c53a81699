// Package relevance scores alerts for a user and grades those scores
// against the feedback users leave on them.
package relevance

import "github.com/trogers1052/alert-relevance-service/internal/models"

// Per-kind contributions to the engagement score.
const (
	engagementView           = 0.1
	engagementClick          = 0.3
	engagementMarkRelevant   = 0.5
	engagementRatingScale    = 0.4
	engagementMarkIrrelevant = -0.2
	engagementDismiss        = -0.1
)

// EngagementScore reduces the feedback for one alert to a value in [0,1].
// Contributions are summed, divided by the number of events and only then
// clamped. No events yields 0.
func EngagementScore(events []*models.FeedbackEvent) float64 {
	if len(events) == 0 {
		return 0.0
	}

	score := 0.0
	for _, ev := range events {
		switch ev.Kind {
		case models.FeedbackView:
			score += engagementView
		case models.FeedbackClick:
			score += engagementClick
		case models.FeedbackMarkRelevant:
			score += engagementMarkRelevant
		case models.FeedbackRating:
			if ev.Rating != nil {
				score += (float64(*ev.Rating) / 5.0) * engagementRatingScale
			}
		case models.FeedbackMarkIrrelevant:
			score += engagementMarkIrrelevant
		case models.FeedbackDismiss:
			score += engagementDismiss
		}
	}

	return clamp(score/float64(len(events)), 0.0, 1.0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package relevance

import "github.com/trogers1052/alert-relevance-service/internal/models"

func buildInsights(examples []models.LabeledExample) models.FeedbackInsights {
	if len(examples) == 0 {
		return models.FeedbackInsights{Message: models.NoFeedbackDataMessage}
	}

	var total float64
	for _, ex := range examples {
		total += ex.Label
	}

	return models.FeedbackInsights{
		TotalSamples:        len(examples),
		AverageRelevance:    total / float64(len(examples)),
		AlertTypeStatistics: typeStats(examples),
	}
}

func typeStats(examples []models.LabeledExample) map[string]models.AlertTypeStats {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, ex := range examples {
		sums[ex.Features.AlertType] += ex.Label
		counts[ex.Features.AlertType]++
	}

	stats := make(map[string]models.AlertTypeStats, len(counts))
	for t, n := range counts {
		stats[t] = models.AlertTypeStats{
			Count:        n,
			AvgRelevance: sums[t] / float64(n),
		}
	}
	return stats
}

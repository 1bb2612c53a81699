package relevance

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/trogers1052/alert-relevance-service/internal/models"
)

// accuracyTolerance is the largest |prediction - label| counted as correct.
const accuracyTolerance = 0.2

// Retrainer grades the predictor against feedback-derived ground truth and
// keeps the labeled examples of the last successful run. The predictor's
// rules are never modified by training.
type Retrainer struct {
	log zerolog.Logger
	now func() time.Time

	mu          sync.RWMutex
	examples    []models.LabeledExample
	performance models.ModelPerformance
}

// NewRetrainer creates a Retrainer with no examples and zero performance.
func NewRetrainer(log zerolog.Logger) *Retrainer {
	return &Retrainer{
		log: log.With().Str("component", "retrainer").Logger(),
		now: time.Now,
	}
}

// Train labels the records, replaces the stored example set and recomputes
// performance. Empty input and input without any ground truth are reported
// through the status, leaving the previous state untouched.
func (r *Retrainer) Train(records []models.TrainingRecord) models.TrainResult {
	if len(records) == 0 {
		return models.TrainResult{Status: models.TrainStatusNoData}
	}

	examples := make([]models.LabeledExample, 0, len(records))
	for _, rec := range records {
		label, ok := GroundTruth(rec.Feedback)
		if !ok {
			continue
		}
		examples = append(examples, models.LabeledExample{
			Features: ExtractFeatures(rec),
			Label:    label,
		})
	}

	if len(examples) == 0 {
		return models.TrainResult{Status: models.TrainStatusNoValidData}
	}

	r.logTypeAverages(examples)
	accuracy := evaluate(examples)

	updated := r.now()

	r.mu.Lock()
	r.examples = examples
	r.performance = models.ModelPerformance{
		Accuracy:    accuracy,
		Precision:   accuracy,
		Recall:      accuracy,
		F1Score:     accuracy,
		LastUpdated: &updated,
	}
	perf := r.performance
	r.mu.Unlock()

	r.log.Info().
		Int("samples", len(examples)).
		Float64("accuracy", accuracy).
		Msg("Retrained relevance model")

	return models.TrainResult{
		Status:          models.TrainStatusSuccess,
		TrainingSamples: len(examples),
		Performance:     &perf,
	}
}

// Performance returns the last computed performance snapshot.
func (r *Retrainer) Performance() models.ModelPerformance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.performance
}

// Insights summarises the labeled examples from the last successful run.
func (r *Retrainer) Insights() models.FeedbackInsights {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return buildInsights(r.examples)
}

// evaluate runs every example through the predictor with default settings
// and returns the fraction within tolerance of its label.
func evaluate(examples []models.LabeledExample) float64 {
	prefs := models.DefaultPreferences()
	pc := models.PortfolioContext{}

	correct := 0
	for _, ex := range examples {
		predicted := Predict(SyntheticAlert(ex.Features), prefs, pc)
		if math.Abs(predicted-ex.Label) <= accuracyTolerance {
			correct++
		}
	}
	return float64(correct) / float64(len(examples))
}

func (r *Retrainer) logTypeAverages(examples []models.LabeledExample) {
	stats := typeStats(examples)
	types := make([]string, 0, len(stats))
	for t := range stats {
		types = append(types, t)
	}
	sort.Strings(types)

	for _, t := range types {
		r.log.Debug().
			Str("alert_type", t).
			Int("count", stats[t].Count).
			Float64("avg_relevance", stats[t].AvgRelevance).
			Msg("Feedback relevance by alert type")
	}
}

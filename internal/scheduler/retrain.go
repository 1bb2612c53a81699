package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/trogers1052/alert-relevance-service/internal/metrics"
	"github.com/trogers1052/alert-relevance-service/internal/models"
)

// TrainingSource loads labeled-feedback training records
type TrainingSource interface {
	TrainingData(daysBack int) ([]models.TrainingRecord, error)
}

// Trainer grades the predictor on training records
type Trainer interface {
	Train(records []models.TrainingRecord) models.TrainResult
}

// RetrainPublisher announces retraining outcomes
type RetrainPublisher interface {
	PublishModelRetrained(ctx context.Context, result models.TrainResult) error
}

// RetrainJob runs one retraining pass. Runs never overlap.
type RetrainJob struct {
	source     TrainingSource
	trainer    Trainer
	publisher  RetrainPublisher
	metrics    *metrics.Metrics
	windowDays int
	log        zerolog.Logger
	now        func() time.Time

	mu sync.Mutex
}

// NewRetrainJob creates a job over the last windowDays days. publisher and
// m may be nil.
func NewRetrainJob(source TrainingSource, trainer Trainer, publisher RetrainPublisher,
	m *metrics.Metrics, windowDays int, log zerolog.Logger) *RetrainJob {
	return &RetrainJob{
		source:     source,
		trainer:    trainer,
		publisher:  publisher,
		metrics:    m,
		windowDays: windowDays,
		log:        log.With().Str("component", "retrain_job").Logger(),
		now:        time.Now,
	}
}

// Run loads training data, retrains and reports the result.
func (j *RetrainJob) Run(ctx context.Context) (models.TrainResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	records, err := j.source.TrainingData(j.windowDays)
	if err != nil {
		return models.TrainResult{}, fmt.Errorf("failed to load training data: %w", err)
	}

	result := j.trainer.Train(records)

	var accuracy float64
	if result.Performance != nil {
		accuracy = result.Performance.Accuracy
	}
	j.metrics.RecordRetrain(result.Status, result.TrainingSamples, accuracy, j.now().Unix())

	j.log.Info().
		Str("status", result.Status).
		Int("records", len(records)).
		Int("samples", result.TrainingSamples).
		Float64("accuracy", accuracy).
		Msg("Retraining finished")

	if j.publisher != nil {
		if err := j.publisher.PublishModelRetrained(ctx, result); err != nil {
			j.log.Warn().Err(err).Msg("Failed to publish retraining event")
		}
	}
	return result, nil
}

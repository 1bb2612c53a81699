package models

import "time"

// TrainingFeedback is the slice of a feedback event carried in training data.
type TrainingFeedback struct {
	Kind                FeedbackKind `json:"type"`
	Rating              *int         `json:"rating,omitempty"`
	InteractionDuration *float64     `json:"interaction_duration,omitempty"`
	DismissReason       string       `json:"dismiss_reason,omitempty"`
	Timestamp           time.Time    `json:"timestamp"`
}

// TrainingRecord is one alert created inside the training window together
// with its feedback, ordered by timestamp. Feedback may be empty.
type TrainingRecord struct {
	AlertID            int64              `json:"alert_id"`
	AlertType          string             `json:"alert_type"`
	Symbol             string             `json:"symbol,omitempty"`
	Message            string             `json:"message"`
	PredictedRelevance *float64           `json:"predicted_relevance,omitempty"`
	Feedback           []TrainingFeedback `json:"feedback"`
}

// FeatureVector is the flattened representation of an alert used by the
// retrainer. It is derived on demand and never persisted.
type FeatureVector struct {
	AlertType          string  `json:"alert_type"`
	Symbol             string  `json:"symbol"`
	HasSymbol          int     `json:"has_symbol"`
	MessageLength      int     `json:"message_length"`
	PredictedRelevance float64 `json:"predicted_relevance"`
	ContainsPercent    int     `json:"contains_percent"`
	MentionsPrice      int     `json:"mentions_price"`
	MentionsEarnings   int     `json:"mentions_earnings"`
	MentionsNews       int     `json:"mentions_news"`
	MentionsAlert      int     `json:"mentions_alert"`
}

// LabeledExample pairs a feature vector with its ground-truth relevance.
type LabeledExample struct {
	Features FeatureVector `json:"features"`
	Label    float64       `json:"label"`
}

// ModelPerformance is the last computed self-evaluation of the predictor.
// Precision, recall and F1 mirror accuracy.
type ModelPerformance struct {
	Accuracy    float64    `json:"accuracy"`
	Precision   float64    `json:"precision"`
	Recall      float64    `json:"recall"`
	F1Score     float64    `json:"f1_score"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// Retraining outcomes
const (
	TrainStatusNoData      = "no_data"
	TrainStatusNoValidData = "no_valid_data"
	TrainStatusSuccess     = "success"
)

// TrainResult is returned by every retraining call.
type TrainResult struct {
	Status          string            `json:"status"`
	TrainingSamples int               `json:"training_samples,omitempty"`
	Performance     *ModelPerformance `json:"performance,omitempty"`
}

// AlertTypeStats holds per-category insight figures.
type AlertTypeStats struct {
	Count        int     `json:"count"`
	AvgRelevance float64 `json:"avg_relevance"`
}

// NoFeedbackDataMessage is reported when no labeled examples exist.
const NoFeedbackDataMessage = "No feedback data available"

// FeedbackInsights summarises the labeled examples of the last retraining.
type FeedbackInsights struct {
	Message             string                    `json:"message,omitempty"`
	TotalSamples        int                       `json:"total_samples"`
	AverageRelevance    float64                   `json:"average_relevance"`
	AlertTypeStatistics map[string]AlertTypeStats `json:"alert_type_statistics,omitempty"`
}

// HasData reports whether the insights were computed from feedback.
func (i FeedbackInsights) HasData() bool {
	return i.Message == "" && i.TotalSamples > 0
}

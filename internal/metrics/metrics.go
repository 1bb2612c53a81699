// Package metrics provides Prometheus metrics for the relevance pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "alert_relevance"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	registry *prometheus.Registry

	// Feedback metrics
	FeedbackRecorded *prometheus.CounterVec
	FeedbackFailed   *prometheus.CounterVec
	KafkaMessages    *prometheus.CounterVec

	// Alert metrics
	AlertsCreated      *prometheus.CounterVec
	PredictedRelevance prometheus.Histogram

	// Model metrics
	RetrainRuns      *prometheus.CounterVec
	ModelAccuracy    prometheus.Gauge
	TrainingSamples  prometheus.Gauge
	LastRetrainEpoch prometheus.Gauge
}

// New creates a Metrics instance registered on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		FeedbackRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feedback",
			Name:      "events_recorded_total",
			Help:      "Total number of feedback events stored by kind",
		}, []string{"kind"}),
		FeedbackFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feedback",
			Name:      "events_failed_total",
			Help:      "Total number of feedback events that could not be stored by kind",
		}, []string{"kind"}),
		KafkaMessages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "messages_total",
			Help:      "Total number of consumed Kafka messages by topic and result",
		}, []string{"topic", "result"}),

		AlertsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "created_total",
			Help:      "Total number of alerts created by category",
		}, []string{"category"}),
		PredictedRelevance: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "predicted_relevance",
			Help:      "Distribution of predicted relevance scores",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),

		RetrainRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "retrain_runs_total",
			Help:      "Total number of retraining runs by status",
		}, []string{"status"}),
		ModelAccuracy: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "accuracy",
			Help:      "Accuracy of the predictor at the last successful retraining",
		}),
		TrainingSamples: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "training_samples",
			Help:      "Number of labeled examples used by the last successful retraining",
		}),
		LastRetrainEpoch: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "last_retrain_timestamp_seconds",
			Help:      "Unix timestamp of the last successful retraining",
		}),
	}
}

// Handler returns the HTTP handler serving this instance's metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordFeedback counts a stored or failed feedback event.
func (m *Metrics) RecordFeedback(kind string, ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.FeedbackRecorded.WithLabelValues(kind).Inc()
		return
	}
	m.FeedbackFailed.WithLabelValues(kind).Inc()
}

// RecordAlert counts a created alert and observes its score.
func (m *Metrics) RecordAlert(category string, score float64) {
	if m == nil {
		return
	}
	m.AlertsCreated.WithLabelValues(category).Inc()
	m.PredictedRelevance.Observe(score)
}

// RecordKafkaMessage counts a consumed message.
func (m *Metrics) RecordKafkaMessage(topic, result string) {
	if m == nil {
		return
	}
	m.KafkaMessages.WithLabelValues(topic, result).Inc()
}

// RecordRetrain counts a retraining run. Gauges only move on success.
func (m *Metrics) RecordRetrain(status string, samples int, accuracy float64, unix int64) {
	if m == nil {
		return
	}
	m.RetrainRuns.WithLabelValues(status).Inc()
	if status != "success" {
		return
	}
	m.ModelAccuracy.Set(accuracy)
	m.TrainingSamples.Set(float64(samples))
	m.LastRetrainEpoch.Set(float64(unix))
}

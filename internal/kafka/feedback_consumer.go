package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/alert-relevance-service/internal/metrics"
	"github.com/trogers1052/alert-relevance-service/internal/models"
)

// Interaction event types on the feedback topic
const (
	EventAlertViewed    = "ALERT_VIEWED"
	EventAlertClicked   = "ALERT_CLICKED"
	EventAlertDismissed = "ALERT_DISMISSED"
	EventAlertRated     = "ALERT_RATED"
	EventAlertMarked    = "ALERT_MARKED"
)

// FeedbackRecorder defines the feedback operations the consumer drives
type FeedbackRecorder interface {
	TrackView(alertID int64, userID string, relevanceScore *float64) *models.FeedbackEvent
	TrackClick(alertID int64, userID string, duration *float64) *models.FeedbackEvent
	TrackDismiss(alertID int64, userID, reason string) *models.FeedbackEvent
	RecordRating(alertID int64, userID string, rating int, notes string) (*models.FeedbackEvent, error)
	RecordRelevanceMark(alertID int64, userID string, relevant bool) (*models.FeedbackEvent, error)
}

// InteractionEvent represents a user interaction published by a client
type InteractionEvent struct {
	EventType string          `json:"event_type"`
	Source    string          `json:"source"`
	Timestamp string          `json:"timestamp"`
	Data      InteractionData `json:"data"`
}

// InteractionData holds the payload for every interaction event type
type InteractionData struct {
	AlertID int64  `json:"alert_id"`
	UserID  string `json:"user_id"`

	// ALERT_VIEWED
	RelevanceScore *float64 `json:"relevance_score,omitempty"`
	// ALERT_CLICKED
	InteractionDuration *float64 `json:"interaction_duration,omitempty"`
	// ALERT_DISMISSED
	DismissReason string `json:"dismiss_reason,omitempty"`
	// ALERT_RATED
	Rating *int   `json:"rating,omitempty"`
	Notes  string `json:"notes,omitempty"`
	// ALERT_MARKED
	Relevant *bool `json:"relevant,omitempty"`
}

// FeedbackConsumer records interaction events from Kafka
type FeedbackConsumer struct {
	reader   messageReader
	recorder FeedbackRecorder
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewFeedbackConsumer creates a new Kafka consumer for interaction events
func NewFeedbackConsumer(brokers []string, topic, groupID string, recorder FeedbackRecorder,
	m *metrics.Metrics, log zerolog.Logger) *FeedbackConsumer {
	return &FeedbackConsumer{
		reader:   newReader(brokers, topic, groupID+"-feedback", kafka.FirstOffset),
		recorder: recorder,
		metrics:  m,
		log:      log.With().Str("component", "feedback_consumer").Logger(),
	}
}

// Start begins consuming messages from Kafka
func (c *FeedbackConsumer) Start(ctx context.Context) error {
	return consume(ctx, c.reader, c.metrics, c.log, func(_ context.Context, msg kafka.Message) error {
		return c.processMessage(msg)
	})
}

// processMessage handles a single Kafka message
func (c *FeedbackConsumer) processMessage(msg kafka.Message) error {
	var event InteractionEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal interaction event: %w", err)
	}

	d := event.Data
	switch event.EventType {
	case EventAlertViewed:
		return tracked(c.recorder.TrackView(d.AlertID, d.UserID, d.RelevanceScore), event)

	case EventAlertClicked:
		return tracked(c.recorder.TrackClick(d.AlertID, d.UserID, d.InteractionDuration), event)

	case EventAlertDismissed:
		return tracked(c.recorder.TrackDismiss(d.AlertID, d.UserID, d.DismissReason), event)

	case EventAlertRated:
		if d.Rating == nil {
			return fmt.Errorf("%s for alert %d has no rating", event.EventType, d.AlertID)
		}
		if _, err := c.recorder.RecordRating(d.AlertID, d.UserID, *d.Rating, d.Notes); err != nil {
			return fmt.Errorf("failed to record rating: %w", err)
		}
		return nil

	case EventAlertMarked:
		if d.Relevant == nil {
			return fmt.Errorf("%s for alert %d has no relevant flag", event.EventType, d.AlertID)
		}
		if _, err := c.recorder.RecordRelevanceMark(d.AlertID, d.UserID, *d.Relevant); err != nil {
			return fmt.Errorf("failed to record relevance mark: %w", err)
		}
		return nil

	default:
		c.log.Debug().Str("event_type", event.EventType).Msg("Ignoring unknown interaction event type")
		return nil
	}
}

// tracked turns a dropped implicit event into a per-message error.
func tracked(ev *models.FeedbackEvent, event InteractionEvent) error {
	if ev == nil {
		return fmt.Errorf("%s for alert %d was not recorded", event.EventType, event.Data.AlertID)
	}
	return nil
}

// Close closes the Kafka consumer
func (c *FeedbackConsumer) Close() error {
	return c.reader.Close()
}

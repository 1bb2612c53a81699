package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/alert-relevance-service/internal/models"
)

// Published event types
const (
	EventAlertCreated   = "ALERT_CREATED"
	EventModelRetrained = "MODEL_RETRAINED"
)

const (
	eventSource   = "alert-relevance-service"
	retrainingKey = "relevance"
)

// messageWriter is the subset of *kafka.Writer used by the producer
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Event is the envelope of every published message
type Event struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
}

// Producer publishes alert lifecycle events
type Producer struct {
	writer messageWriter
	now    func() time.Time
}

// NewProducer creates a producer for the given topic
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
		now: time.Now,
	}
}

// PublishAlertCreated announces a scored alert, keyed by user id
func (p *Producer) PublishAlertCreated(ctx context.Context, alert *models.Alert) error {
	return p.publish(ctx, alert.UserID, EventAlertCreated, alert)
}

// PublishModelRetrained announces the outcome of a retraining run
func (p *Producer) PublishModelRetrained(ctx context.Context, result models.TrainResult) error {
	return p.publish(ctx, retrainingKey, EventModelRetrained, result)
}

func (p *Producer) publish(ctx context.Context, key, eventType string, data any) error {
	event := Event{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Source:    eventSource,
		Timestamp: p.now().UTC().Format(time.RFC3339),
		Data:      data,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// Close flushes and closes the writer
func (p *Producer) Close() error {
	return p.writer.Close()
}

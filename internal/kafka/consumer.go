// Package kafka consumes alert feedback and holdings snapshots and
// publishes alert lifecycle events.
package kafka

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/alert-relevance-service/internal/metrics"
)

// messageReader is the subset of *kafka.Reader used by the consumers
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
	Config() kafka.ReaderConfig
}

func newReader(brokers []string, topic, groupID string, startOffset int64) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    startOffset,
		CommitInterval: time.Second,
	})
}

// consume reads until ctx is cancelled. A message that fails to process is
// logged and skipped.
func consume(ctx context.Context, reader messageReader, m *metrics.Metrics, log zerolog.Logger,
	handle func(ctx context.Context, msg kafka.Message) error) error {
	topic := reader.Config().Topic
	log.Info().Str("topic", topic).Msg("Starting Kafka consumer")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("topic", topic).Msg("Consumer shutting down")
			return reader.Close()
		default:
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Error().Err(err).Str("topic", topic).Msg("Error reading message")
				continue
			}

			if err := handle(ctx, msg); err != nil {
				m.RecordKafkaMessage(topic, "error")
				log.Error().Err(err).
					Str("topic", topic).
					Int("partition", msg.Partition).
					Int64("offset", msg.Offset).
					Msg("Error processing message")
				continue
			}
			m.RecordKafkaMessage(topic, "ok")
		}
	}
}

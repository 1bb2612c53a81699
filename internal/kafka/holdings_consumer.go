package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/alert-relevance-service/internal/metrics"
	"github.com/trogers1052/alert-relevance-service/internal/models"
)

// EventPositionsSnapshot is the only event type the holdings consumer handles
const EventPositionsSnapshot = "POSITIONS_SNAPSHOT"

// HoldingsUpdater replaces a user's holdings
type HoldingsUpdater interface {
	ReplaceHoldings(ctx context.Context, userID string, holdings []*models.Holding) error
}

// HoldingsConsumer handles consuming position snapshot events from Kafka
type HoldingsConsumer struct {
	reader  messageReader
	updater HoldingsUpdater
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewHoldingsConsumer creates a new Kafka consumer for position snapshots
func NewHoldingsConsumer(brokers []string, topic, groupID string, updater HoldingsUpdater,
	m *metrics.Metrics, log zerolog.Logger) *HoldingsConsumer {
	return &HoldingsConsumer{
		// Only the latest snapshot matters, so skip history.
		reader:  newReader(brokers, topic, groupID+"-holdings", kafka.LastOffset),
		updater: updater,
		metrics: m,
		log:     log.With().Str("component", "holdings_consumer").Logger(),
	}
}

// Start begins consuming messages from Kafka
func (c *HoldingsConsumer) Start(ctx context.Context) error {
	return consume(ctx, c.reader, c.metrics, c.log, c.processMessage)
}

// processMessage handles a single Kafka message. The user id comes from the
// payload, falling back to the message key.
func (c *HoldingsConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.PositionsEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal positions event: %w", err)
	}

	if event.EventType != EventPositionsSnapshot {
		c.log.Debug().Str("event_type", event.EventType).Msg("Ignoring event type")
		return nil
	}

	userID := event.Data.UserID
	if userID == "" {
		userID = string(msg.Key)
	}
	if userID == "" {
		return fmt.Errorf("positions snapshot has no user id")
	}

	holdings := make([]*models.Holding, 0, len(event.Data.Positions))
	for _, pd := range event.Data.Positions {
		h, err := convertPositionData(pd)
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", pd.Symbol).Msg("Skipping position")
			continue
		}
		holdings = append(holdings, h)
	}
	holdings = mergeHoldings(holdings)

	if err := c.updater.ReplaceHoldings(ctx, userID, holdings); err != nil {
		return fmt.Errorf("failed to replace holdings for %s: %w", userID, err)
	}

	c.log.Info().
		Str("user_id", userID).
		Int("positions", len(holdings)).
		Msg("Holdings updated from snapshot")
	return nil
}

// convertPositionData converts Kafka position data to a Holding. Without an
// explicit price the current price is equity divided by quantity.
func convertPositionData(pd models.PositionData) (*models.Holding, error) {
	if pd.Symbol == "" {
		return nil, fmt.Errorf("position has no symbol")
	}

	quantity, err := decimal.NewFromString(pd.Quantity)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity %s: %w", pd.Quantity, err)
	}

	var price decimal.Decimal
	if pd.Price != "" {
		price, err = decimal.NewFromString(pd.Price)
		if err != nil {
			return nil, fmt.Errorf("invalid price %s: %w", pd.Price, err)
		}
	} else {
		equity, err := decimal.NewFromString(pd.Equity)
		if err != nil {
			equity = decimal.Zero
		}
		if !quantity.IsZero() {
			price = equity.Div(quantity)
		}
	}

	return &models.Holding{
		Symbol:       pd.Symbol,
		Quantity:     quantity,
		CurrentPrice: price,
	}, nil
}

// mergeHoldings folds repeated symbols into one holding, since the store
// keeps a single row per symbol. Quantities are summed and the price is
// the value-weighted average, so the snapshot's total value is unchanged.
func mergeHoldings(holdings []*models.Holding) []*models.Holding {
	merged := make([]*models.Holding, 0, len(holdings))
	bySymbol := make(map[string]*models.Holding, len(holdings))
	for _, h := range holdings {
		existing, ok := bySymbol[h.Symbol]
		if !ok {
			bySymbol[h.Symbol] = h
			merged = append(merged, h)
			continue
		}
		value := existing.Quantity.Mul(existing.CurrentPrice).Add(h.Quantity.Mul(h.CurrentPrice))
		existing.Quantity = existing.Quantity.Add(h.Quantity)
		if !existing.Quantity.IsZero() {
			existing.CurrentPrice = value.Div(existing.Quantity)
		} else {
			existing.CurrentPrice = h.CurrentPrice
		}
	}
	return merged
}

// Close closes the Kafka consumer
func (c *HoldingsConsumer) Close() error {
	return c.reader.Close()
}

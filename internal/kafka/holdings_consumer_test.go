package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/alert-relevance-service/internal/models"
)

// ---------------------------------------------------------------------------
// Mock HoldingsUpdater
// ---------------------------------------------------------------------------

type mockUpdater struct {
	mu       sync.Mutex
	snapshot map[string][]*models.Holding
	calls    int
	err      error
}

func newMockUpdater() *mockUpdater {
	return &mockUpdater{snapshot: make(map[string][]*models.Holding)}
}

func (m *mockUpdater) ReplaceHoldings(_ context.Context, userID string, holdings []*models.Holding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.snapshot[userID] = holdings
	return nil
}

func (m *mockUpdater) Holdings(userID string) []*models.Holding {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot[userID]
}

func (m *mockUpdater) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func positionsMessage(t *testing.T, key string, event models.PositionsEvent) kafkago.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return kafkago.Message{Key: []byte(key), Value: payload}
}

func newTestHoldingsConsumer(updater HoldingsUpdater) *HoldingsConsumer {
	return &HoldingsConsumer{updater: updater, log: zerolog.Nop()}
}

// ---------------------------------------------------------------------------
// processMessage tests
// ---------------------------------------------------------------------------

func TestHoldingsConsumer_processMessage_Snapshot(t *testing.T) {
	updater := newMockUpdater()
	consumer := newTestHoldingsConsumer(updater)

	msg := positionsMessage(t, "", models.PositionsEvent{
		EventType: EventPositionsSnapshot,
		Source:    "robinhood",
		Data: models.PositionsEventData{
			UserID: "u1",
			Positions: []models.PositionData{
				{Symbol: "AAPL", Quantity: "10", Equity: "1905.00"},
				{Symbol: "MSFT", Quantity: "2.5", Equity: "1000", Price: "410.25"},
			},
		},
	})

	require.NoError(t, consumer.processMessage(context.Background(), msg))

	holdings := updater.Holdings("u1")
	require.Len(t, holdings, 2)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.True(t, holdings[0].CurrentPrice.Equal(decimal.RequireFromString("190.5")))
	assert.True(t, holdings[1].CurrentPrice.Equal(decimal.RequireFromString("410.25")))
	assert.True(t, holdings[1].Quantity.Equal(decimal.RequireFromString("2.5")))
}

func TestHoldingsConsumer_processMessage_MergesRepeatedSymbols(t *testing.T) {
	updater := newMockUpdater()
	consumer := newTestHoldingsConsumer(updater)

	msg := positionsMessage(t, "u1", models.PositionsEvent{
		EventType: EventPositionsSnapshot,
		Data: models.PositionsEventData{
			Positions: []models.PositionData{
				{Symbol: "AAPL", Quantity: "10", Price: "100"},
				{Symbol: "MSFT", Quantity: "1", Price: "400"},
				{Symbol: "AAPL", Quantity: "30", Price: "200"},
			},
		},
	})

	require.NoError(t, consumer.processMessage(context.Background(), msg))

	holdings := updater.Holdings("u1")
	require.Len(t, holdings, 2)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.Equal(t, "MSFT", holdings[1].Symbol)
	assert.True(t, holdings[0].Quantity.Equal(decimal.NewFromInt(40)))
	// (10*100 + 30*200) / 40
	assert.True(t, holdings[0].CurrentPrice.Equal(decimal.NewFromInt(175)))

	pc := models.NewPortfolioContext(holdings)
	assert.True(t, pc.PortfolioValue.Equal(decimal.NewFromInt(7400)))
}

func TestHoldingsConsumer_processMessage_UserFromKey(t *testing.T) {
	updater := newMockUpdater()
	consumer := newTestHoldingsConsumer(updater)

	msg := positionsMessage(t, "u9", models.PositionsEvent{
		EventType: EventPositionsSnapshot,
		Data: models.PositionsEventData{
			Positions: []models.PositionData{{Symbol: "TSLA", Quantity: "1", Equity: "250"}},
		},
	})

	require.NoError(t, consumer.processMessage(context.Background(), msg))
	require.Len(t, updater.Holdings("u9"), 1)
}

func TestHoldingsConsumer_processMessage_NoUser(t *testing.T) {
	updater := newMockUpdater()
	consumer := newTestHoldingsConsumer(updater)

	msg := positionsMessage(t, "", models.PositionsEvent{EventType: EventPositionsSnapshot})

	err := consumer.processMessage(context.Background(), msg)
	require.Error(t, err)
	assert.Equal(t, 0, updater.Calls())
}

func TestHoldingsConsumer_processMessage_SkipsBadPositions(t *testing.T) {
	updater := newMockUpdater()
	consumer := newTestHoldingsConsumer(updater)

	msg := positionsMessage(t, "u1", models.PositionsEvent{
		EventType: EventPositionsSnapshot,
		Data: models.PositionsEventData{
			Positions: []models.PositionData{
				{Symbol: "BAD", Quantity: "lots"},
				{Symbol: "", Quantity: "1"},
				{Symbol: "ZERO", Quantity: "0", Equity: "0"},
				{Symbol: "OK", Quantity: "3", Equity: "30"},
			},
		},
	})

	require.NoError(t, consumer.processMessage(context.Background(), msg))

	holdings := updater.Holdings("u1")
	require.Len(t, holdings, 2)
	assert.Equal(t, "ZERO", holdings[0].Symbol)
	assert.True(t, holdings[0].CurrentPrice.IsZero())
	assert.Equal(t, "OK", holdings[1].Symbol)
}

func TestHoldingsConsumer_processMessage_IgnoresOtherEvents(t *testing.T) {
	updater := newMockUpdater()
	consumer := newTestHoldingsConsumer(updater)

	msg := positionsMessage(t, "u1", models.PositionsEvent{EventType: "ORDER_FILLED"})
	require.NoError(t, consumer.processMessage(context.Background(), msg))
	assert.Equal(t, 0, updater.Calls())
}

func TestHoldingsConsumer_processMessage_UpdaterError(t *testing.T) {
	updater := newMockUpdater()
	updater.err = assert.AnError
	consumer := newTestHoldingsConsumer(updater)

	msg := positionsMessage(t, "u1", models.PositionsEvent{EventType: EventPositionsSnapshot})
	err := consumer.processMessage(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to replace holdings for u1")
}

func TestHoldingsConsumer_processMessage_InvalidJSON(t *testing.T) {
	consumer := newTestHoldingsConsumer(newMockUpdater())
	err := consumer.processMessage(context.Background(), kafkago.Message{Value: []byte("{")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

// ---------------------------------------------------------------------------
// Start lifecycle
// ---------------------------------------------------------------------------

func TestHoldingsConsumer_Start_ClosesReaderOnShutdown(t *testing.T) {
	updater := newMockUpdater()
	reader := newMockReader("trading.positions", 1)
	consumer := &HoldingsConsumer{reader: reader, updater: updater, log: zerolog.Nop()}

	reader.msgs <- positionsMessage(t, "u1", models.PositionsEvent{EventType: EventPositionsSnapshot})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Start(ctx) }()

	require.Eventually(t, func() bool { return updater.Calls() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}

	require.NoError(t, consumer.Close())
	assert.GreaterOrEqual(t, reader.CloseCalls(), 1)
}

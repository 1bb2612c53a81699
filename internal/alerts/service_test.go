package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/alert-relevance-service/internal/metrics"
	"github.com/trogers1052/alert-relevance-service/internal/models"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

var errNotFound = errors.New("alert not found")

type mockStore struct {
	mu     sync.Mutex
	alerts map[int64]*models.Alert
	nextID int64
	err    error
}

func newMockStore() *mockStore {
	return &mockStore{alerts: make(map[int64]*models.Alert)}
}

func (m *mockStore) CreateAlert(a *models.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.nextID++
	a.ID = m.nextID
	m.alerts[a.ID] = a
	return nil
}

func (m *mockStore) GetAlert(id int64) (*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[id]
	if !ok {
		return nil, errNotFound
	}
	return a, nil
}

func (m *mockStore) GetAlertsForUser(userID string, activeOnly bool) ([]*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Alert
	for id := int64(1); id <= m.nextID; id++ {
		a, ok := m.alerts[id]
		if !ok || a.UserID != userID || (activeOnly && !a.IsActive) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *mockStore) DeactivateAlert(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[id]
	if !ok {
		return errNotFound
	}
	a.IsActive = false
	return nil
}

type mockUsers struct {
	prefs models.Preferences
	pc    models.PortfolioContext
	err   error
}

func (m *mockUsers) Preferences(context.Context, string) (models.Preferences, error) {
	return m.prefs, m.err
}

func (m *mockUsers) Context(context.Context, string) (models.PortfolioContext, error) {
	return m.pc, m.err
}

type mockPublisher struct {
	mu        sync.Mutex
	published []*models.Alert
	err       error
}

func (p *mockPublisher) PublishAlertCreated(_ context.Context, a *models.Alert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, a)
	return nil
}

func heldAAPL() models.PortfolioContext {
	return models.PortfolioContext{
		SymbolsHeld:       []string{"AAPL"},
		HoldingQuantities: map[string]int64{"AAPL": 100},
	}
}

func earningsAlert() *models.Alert {
	return &models.Alert{
		UserID:      "user_abc",
		PortfolioID: "port_123",
		Category:    models.CategoryEarningsReport,
		Symbol:      "AAPL",
		Message:     "AAPL earnings report due soon.",
	}
}

// ---------------------------------------------------------------------------
// Raise
// ---------------------------------------------------------------------------

func TestRaise_ScoresPersistsAndPublishes(t *testing.T) {
	store := newMockStore()
	pub := &mockPublisher{}
	m := metrics.New()
	users := &mockUsers{prefs: models.DefaultPreferences(), pc: heldAAPL()}
	svc := NewService(store, users, pub, m, zerolog.Nop())

	a, err := svc.Raise(context.Background(), earningsAlert(), models.AlertSignal{})
	require.NoError(t, err)

	// 0.5 base + 0.2 held earnings + 0.05 large position
	require.NotNil(t, a.RelevanceScore)
	assert.InDelta(t, 0.75, *a.RelevanceScore, 1e-9)
	assert.True(t, a.IsActive)
	assert.Equal(t, int64(1), a.ID)
	require.Len(t, pub.published, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AlertsCreated.WithLabelValues(models.CategoryEarningsReport)))
}

func TestRaise_UsesSignal(t *testing.T) {
	store := newMockStore()
	users := &mockUsers{prefs: models.Preferences{MinPriceChangeAlert: 10, RiskProfile: models.RiskModerate}}
	svc := NewService(store, users, nil, nil, zerolog.Nop())

	a := earningsAlert()
	a.Category = models.CategoryPriceGain
	a.Symbol = "TSLA"

	raised, err := svc.Raise(context.Background(), a, models.AlertSignal{Change: 2})
	require.NoError(t, err)
	// Below the user's threshold: 0.5 - 0.1
	assert.InDelta(t, 0.4, *raised.RelevanceScore, 1e-9)
}

func TestRaise_InvalidAlert(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, &mockUsers{}, nil, nil, zerolog.Nop())

	a := earningsAlert()
	a.Message = ""
	_, err := svc.Raise(context.Background(), a, models.AlertSignal{})
	assert.ErrorIs(t, err, models.ErrMissingMessage)
	assert.Empty(t, store.alerts)
}

func TestRaise_IgnoresCallerSuppliedScore(t *testing.T) {
	svc := NewService(newMockStore(), &mockUsers{prefs: models.DefaultPreferences()}, nil, nil, zerolog.Nop())

	a := earningsAlert()
	bogus := 7.0
	a.RelevanceScore = &bogus

	raised, err := svc.Raise(context.Background(), a, models.AlertSignal{})
	require.NoError(t, err)
	assert.LessOrEqual(t, *raised.RelevanceScore, 1.0)
}

func TestRaise_UserContextError(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, &mockUsers{err: errors.New("db down")}, nil, nil, zerolog.Nop())

	_, err := svc.Raise(context.Background(), earningsAlert(), models.AlertSignal{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to score alert")
	assert.Empty(t, store.alerts)
}

func TestRaise_StoreError(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("insert failed")
	pub := &mockPublisher{}
	svc := NewService(store, &mockUsers{prefs: models.DefaultPreferences()}, pub, nil, zerolog.Nop())

	_, err := svc.Raise(context.Background(), earningsAlert(), models.AlertSignal{})
	require.Error(t, err)
	assert.Empty(t, pub.published)
}

func TestRaise_PublishFailureIsNotFatal(t *testing.T) {
	store := newMockStore()
	pub := &mockPublisher{err: errors.New("broker down")}
	svc := NewService(store, &mockUsers{prefs: models.DefaultPreferences()}, pub, nil, zerolog.Nop())

	a, err := svc.Raise(context.Background(), earningsAlert(), models.AlertSignal{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
}

// ---------------------------------------------------------------------------
// Listing and deactivation
// ---------------------------------------------------------------------------

func TestListAndDeactivate(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, &mockUsers{prefs: models.DefaultPreferences()}, nil, nil, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.Raise(ctx, earningsAlert(), models.AlertSignal{})
	require.NoError(t, err)
	_, err = svc.Raise(ctx, earningsAlert(), models.AlertSignal{})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(first.ID))

	all, err := svc.List("user_abc", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := svc.List("user_abc", true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, int64(2), active[0].ID)

	got, err := svc.Get(first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = svc.List("", false)
	assert.ErrorIs(t, err, models.ErrMissingUserID)
}

// Package alerts scores alerts at creation time and persists them.
package alerts

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/trogers1052/alert-relevance-service/internal/metrics"
	"github.com/trogers1052/alert-relevance-service/internal/models"
	"github.com/trogers1052/alert-relevance-service/internal/relevance"
)

// Store defines the alert persistence operations used by the service
type Store interface {
	CreateAlert(a *models.Alert) error
	GetAlert(id int64) (*models.Alert, error)
	GetAlertsForUser(userID string, activeOnly bool) ([]*models.Alert, error)
	DeactivateAlert(id int64) error
}

// UserContext resolves the per-user predictor inputs
type UserContext interface {
	Preferences(ctx context.Context, userID string) (models.Preferences, error)
	Context(ctx context.Context, userID string) (models.PortfolioContext, error)
}

// Publisher announces created alerts
type Publisher interface {
	PublishAlertCreated(ctx context.Context, alert *models.Alert) error
}

// Service raises and manages alerts
type Service struct {
	store     Store
	users     UserContext
	publisher Publisher
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// NewService creates an alert service. publisher and m may be nil.
func NewService(store Store, users UserContext, publisher Publisher, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		store:     store,
		users:     users,
		publisher: publisher,
		metrics:   m,
		log:       log.With().Str("component", "alerts").Logger(),
	}
}

// Score predicts the relevance of an alert for its user without storing it.
func (s *Service) Score(ctx context.Context, in relevance.Input, userID string) (float64, error) {
	prefs, err := s.users.Preferences(ctx, userID)
	if err != nil {
		return 0, err
	}
	pc, err := s.users.Context(ctx, userID)
	if err != nil {
		return 0, err
	}
	return relevance.Predict(in, prefs, pc), nil
}

// Raise scores, persists and announces a new alert. The alert is stored
// active with its predicted relevance attached.
func (s *Service) Raise(ctx context.Context, alert *models.Alert, signal models.AlertSignal) (*models.Alert, error) {
	alert.RelevanceScore = nil
	if err := alert.Validate(); err != nil {
		return nil, err
	}

	score, err := s.Score(ctx, relevance.InputFromAlert(alert, signal), alert.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to score alert: %w", err)
	}
	alert.RelevanceScore = &score
	alert.IsActive = true

	if err := s.store.CreateAlert(alert); err != nil {
		return nil, err
	}
	s.metrics.RecordAlert(alert.Category, score)

	s.log.Info().
		Int64("alert_id", alert.ID).
		Str("user_id", alert.UserID).
		Str("category", alert.Category).
		Float64("relevance", score).
		Msg("Alert raised")

	if s.publisher != nil {
		if err := s.publisher.PublishAlertCreated(ctx, alert); err != nil {
			s.log.Warn().Err(err).Int64("alert_id", alert.ID).Msg("Failed to publish alert event")
		}
	}
	return alert, nil
}

// Get returns one alert
func (s *Service) Get(id int64) (*models.Alert, error) {
	return s.store.GetAlert(id)
}

// List returns a user's alerts, newest first
func (s *Service) List(userID string, activeOnly bool) ([]*models.Alert, error) {
	if userID == "" {
		return nil, models.ErrMissingUserID
	}
	return s.store.GetAlertsForUser(userID, activeOnly)
}

// Deactivate clears an alert's active flag
func (s *Service) Deactivate(id int64) error {
	return s.store.DeactivateAlert(id)
}

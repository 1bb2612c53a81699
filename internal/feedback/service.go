// Package feedback records user interactions with alerts and answers
// engagement questions about them.
package feedback

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/trogers1052/alert-relevance-service/internal/metrics"
	"github.com/trogers1052/alert-relevance-service/internal/models"
	"github.com/trogers1052/alert-relevance-service/internal/relevance"
)

// Engagement trends reported in a user summary
const (
	TrendPositive = "positive"
	TrendNegative = "negative"
	TrendNeutral  = "neutral"
)

// Store defines the feedback persistence operations used by the service
type Store interface {
	RecordFeedback(fb *models.FeedbackEvent) error
	FeedbackForAlert(alertID int64) ([]*models.FeedbackEvent, error)
	FeedbackForUser(userID string, daysBack int) ([]*models.FeedbackEvent, error)
}

// Service records feedback events. Writes and engagement reads for the same
// alert are serialised.
type Service struct {
	store   Store
	metrics *metrics.Metrics
	log     zerolog.Logger
	locks   *alertLocks
}

// NewService creates a feedback service. m may be nil.
func NewService(store Store, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		metrics: m,
		log:     log.With().Str("component", "feedback").Logger(),
		locks:   newAlertLocks(),
	}
}

// Record validates and appends an event.
func (s *Service) Record(ev *models.FeedbackEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	unlock := s.locks.lock(ev.AlertID)
	err := s.store.RecordFeedback(ev)
	unlock()

	s.metrics.RecordFeedback(string(ev.Kind), err == nil)
	if err != nil {
		return fmt.Errorf("failed to record %s feedback for alert %d: %w", ev.Kind, ev.AlertID, err)
	}

	s.log.Debug().
		Int64("alert_id", ev.AlertID).
		Str("user_id", ev.UserID).
		Str("kind", string(ev.Kind)).
		Msg("Feedback recorded")
	return nil
}

// track records an implicit interaction. Failures are logged and yield a
// nil event.
func (s *Service) track(alertID int64, userID string, kind models.FeedbackKind,
	fill func(ev *models.FeedbackEvent)) *models.FeedbackEvent {
	ev, err := models.NewFeedbackEvent(alertID, userID, kind)
	if err == nil {
		fill(ev)
		err = s.Record(ev)
	}
	if err != nil {
		s.log.Warn().Err(err).
			Int64("alert_id", alertID).
			Str("kind", string(kind)).
			Msg("Dropping feedback event")
		return nil
	}
	return ev
}

// TrackView records that a user viewed an alert.
func (s *Service) TrackView(alertID int64, userID string, relevanceScore *float64) *models.FeedbackEvent {
	return s.track(alertID, userID, models.FeedbackView, func(ev *models.FeedbackEvent) {
		ev.RelevanceScore = relevanceScore
	})
}

// TrackClick records that a user opened an alert.
func (s *Service) TrackClick(alertID int64, userID string, duration *float64) *models.FeedbackEvent {
	return s.track(alertID, userID, models.FeedbackClick, func(ev *models.FeedbackEvent) {
		ev.InteractionDuration = duration
	})
}

// TrackDismiss records that a user dismissed an alert.
func (s *Service) TrackDismiss(alertID int64, userID, reason string) *models.FeedbackEvent {
	return s.track(alertID, userID, models.FeedbackDismiss, func(ev *models.FeedbackEvent) {
		ev.DismissReason = reason
	})
}

// RecordRating stores an explicit 1-5 rating.
func (s *Service) RecordRating(alertID int64, userID string, rating int, notes string) (*models.FeedbackEvent, error) {
	ev, err := models.NewFeedbackEvent(alertID, userID, models.FeedbackRating)
	if err != nil {
		return nil, err
	}
	ev.Rating = &rating
	ev.Notes = notes
	if err := s.Record(ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// RecordRelevanceMark stores an explicit relevant or irrelevant mark.
func (s *Service) RecordRelevanceMark(alertID int64, userID string, relevant bool) (*models.FeedbackEvent, error) {
	kind := models.FeedbackMarkIrrelevant
	if relevant {
		kind = models.FeedbackMarkRelevant
	}
	ev, err := models.NewFeedbackEvent(alertID, userID, kind)
	if err != nil {
		return nil, err
	}
	if err := s.Record(ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// ForAlert returns an alert's feedback, oldest first.
func (s *Service) ForAlert(alertID int64) ([]*models.FeedbackEvent, error) {
	return s.store.FeedbackForAlert(alertID)
}

// ForUser returns a user's feedback within the window, newest first.
func (s *Service) ForUser(userID string, daysBack int) ([]*models.FeedbackEvent, error) {
	return s.store.FeedbackForUser(userID, daysBack)
}

// EngagementScore scores an alert from its recorded feedback.
func (s *Service) EngagementScore(alertID int64) (float64, error) {
	unlock := s.locks.lock(alertID)
	events, err := s.store.FeedbackForAlert(alertID)
	unlock()
	if err != nil {
		return 0, fmt.Errorf("failed to load feedback for alert %d: %w", alertID, err)
	}
	return relevance.EngagementScore(events), nil
}

// UserSummary aggregates a user's interactions over the last daysBack days.
func (s *Service) UserSummary(userID string, daysBack int) (*models.UserFeedbackSummary, error) {
	if userID == "" {
		return nil, models.ErrMissingUserID
	}
	events, err := s.store.FeedbackForUser(userID, daysBack)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback for user %s: %w", userID, err)
	}
	return summarize(userID, daysBack, events), nil
}

func summarize(userID string, daysBack int, events []*models.FeedbackEvent) *models.UserFeedbackSummary {
	summary := &models.UserFeedbackSummary{
		UserID:            userID,
		DaysBack:          daysBack,
		TotalInteractions: len(events),
		FeedbackTypes:     make(map[models.FeedbackKind]int),
		EngagementTrend:   TrendNeutral,
	}

	var ratingSum, ratingCount, positive, negative int
	for _, ev := range events {
		summary.FeedbackTypes[ev.Kind]++
		if ev.Rating != nil {
			ratingSum += *ev.Rating
			ratingCount++
		}
		switch ev.Kind {
		case models.FeedbackClick, models.FeedbackMarkRelevant:
			positive++
		case models.FeedbackMarkIrrelevant, models.FeedbackDismiss:
			negative++
		}
	}

	if ratingCount > 0 {
		summary.AverageRating = float64(ratingSum) / float64(ratingCount)
	}
	if positive > negative {
		summary.EngagementTrend = TrendPositive
	} else if negative > positive {
		summary.EngagementTrend = TrendNegative
	}
	return summary
}

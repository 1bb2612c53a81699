package models

import "time"

// FeedbackKind identifies the interaction a user had with an alert.
type FeedbackKind string

const (
	FeedbackView           FeedbackKind = "view"
	FeedbackClick          FeedbackKind = "click"
	FeedbackDismiss        FeedbackKind = "dismiss"
	FeedbackMarkRelevant   FeedbackKind = "mark_relevant"
	FeedbackMarkIrrelevant FeedbackKind = "mark_irrelevant"
	FeedbackRating         FeedbackKind = "rating"
)

// Valid reports whether k is one of the recognised kinds.
func (k FeedbackKind) Valid() bool {
	switch k {
	case FeedbackView, FeedbackClick, FeedbackDismiss,
		FeedbackMarkRelevant, FeedbackMarkIrrelevant, FeedbackRating:
		return true
	}
	return false
}

// FeedbackEvent represents one recorded user interaction with an alert.
// Events are append-only.
type FeedbackEvent struct {
	ID                  int64        `json:"id"`
	AlertID             int64        `json:"alert_id"`
	UserID              string       `json:"user_id"`
	Kind                FeedbackKind `json:"feedback_type"`
	Timestamp           time.Time    `json:"timestamp"`
	Rating              *int         `json:"rating,omitempty"`
	RelevanceScore      *float64     `json:"relevance_score,omitempty"`
	InteractionDuration *float64     `json:"interaction_duration,omitempty"`
	DismissReason       string       `json:"dismiss_reason,omitempty"`
	Notes               string       `json:"notes,omitempty"`
}

// NewFeedbackEvent builds a validated event stamped with the current time.
func NewFeedbackEvent(alertID int64, userID string, kind FeedbackKind) (*FeedbackEvent, error) {
	ev := &FeedbackEvent{
		AlertID:   alertID,
		UserID:    userID,
		Kind:      kind,
		Timestamp: time.Now(),
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return ev, nil
}

// Validate enforces the mandatory fields and payload ranges.
func (f *FeedbackEvent) Validate() error {
	if f.AlertID == 0 {
		return ErrMissingAlertID
	}
	if f.UserID == "" {
		return ErrMissingUserID
	}
	if f.Kind == "" {
		return ErrMissingKind
	}
	if !f.Kind.Valid() {
		return ErrUnknownKind
	}
	if f.Rating != nil && (*f.Rating < 1 || *f.Rating > 5) {
		return ErrRatingOutOfRange
	}
	if f.RelevanceScore != nil && !inUnitRange(*f.RelevanceScore) {
		return ErrRelevanceOutOfRange
	}
	return nil
}

// UserFeedbackSummary aggregates one user's interactions over a window.
type UserFeedbackSummary struct {
	UserID            string               `json:"user_id"`
	DaysBack          int                  `json:"days_back"`
	TotalInteractions int                  `json:"total_interactions"`
	FeedbackTypes     map[FeedbackKind]int `json:"feedback_types"`
	AverageRating     float64              `json:"average_rating"`
	EngagementTrend   string               `json:"engagement_trend"`
}

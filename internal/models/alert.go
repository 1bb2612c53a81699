package models

import (
	"errors"
	"time"
)

// Alert categories raised by the monitoring pass
const (
	CategoryPriceGain      = "price_gain"
	CategoryPriceDrop      = "price_drop"
	CategoryPriceChange    = "price_change"
	CategoryEarningsReport = "earnings_report"
	CategoryNewsSentiment  = "news_sentiment"
)

// Sentiment labels carried by news_sentiment alerts
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

var (
	ErrMissingUserID          = errors.New("user_id is required")
	ErrMissingPortfolioID     = errors.New("portfolio_id is required")
	ErrMissingCategory        = errors.New("alert category is required")
	ErrMissingMessage         = errors.New("alert message is required")
	ErrMissingAlertID         = errors.New("alert_id is required")
	ErrMissingKind            = errors.New("feedback kind is required")
	ErrUnknownKind            = errors.New("unknown feedback kind")
	ErrRatingOutOfRange       = errors.New("rating must be between 1 and 5")
	ErrRelevanceOutOfRange    = errors.New("relevance score must be between 0.0 and 1.0")
	ErrInvalidRiskProfile     = errors.New("risk_profile must be conservative, moderate or aggressive")
	ErrNegativePriceThreshold = errors.New("min_price_change_alert must not be negative")
)

var validationErrors = []error{
	ErrMissingUserID, ErrMissingPortfolioID, ErrMissingCategory, ErrMissingMessage,
	ErrMissingAlertID, ErrMissingKind, ErrUnknownKind, ErrRatingOutOfRange,
	ErrRelevanceOutOfRange, ErrInvalidRiskProfile, ErrNegativePriceThreshold,
}

// IsValidation reports whether err stems from rejected input.
func IsValidation(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// Alert represents one raised notification about a portfolio-relevant event.
type Alert struct {
	ID             int64      `json:"id"`
	UserID         string     `json:"user_id"`
	PortfolioID    string     `json:"portfolio_id"`
	Category       string     `json:"alert_type"`
	Symbol         string     `json:"symbol,omitempty"`
	Threshold      *float64   `json:"threshold,omitempty"`
	Message        string     `json:"message"`
	CreatedAt      time.Time  `json:"created_at"`
	IsActive       bool       `json:"is_active"`
	TriggeredAt    *time.Time `json:"triggered_at,omitempty"`
	RelevanceScore *float64   `json:"relevance_score,omitempty"`
}

// AlertSignal carries the market data that triggered an alert. It is only
// used for scoring and is not persisted.
type AlertSignal struct {
	Change    float64 `json:"change"`
	Sentiment string  `json:"sentiment,omitempty"`
}

// Validate checks the mandatory fields and the relevance range.
func (a *Alert) Validate() error {
	if a.UserID == "" {
		return ErrMissingUserID
	}
	if a.PortfolioID == "" {
		return ErrMissingPortfolioID
	}
	if a.Category == "" {
		return ErrMissingCategory
	}
	if a.Message == "" {
		return ErrMissingMessage
	}
	if a.RelevanceScore != nil && !inUnitRange(*a.RelevanceScore) {
		return ErrRelevanceOutOfRange
	}
	return nil
}

func inUnitRange(v float64) bool {
	return v >= 0.0 && v <= 1.0
}

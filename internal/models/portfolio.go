package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Risk profiles recognised in user preferences
const (
	RiskConservative = "conservative"
	RiskModerate     = "moderate"
	RiskAggressive   = "aggressive"
)

// Holding represents a user's current position in one symbol
type Holding struct {
	ID           int             `json:"id"`
	UserID       string          `json:"user_id"`
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Preferences holds the user settings consulted by the relevance predictor.
type Preferences struct {
	MinPriceChangeAlert float64 `json:"min_price_change_alert"`
	RiskProfile         string  `json:"risk_profile"`
}

// DefaultPreferences returns the settings used when a user has none stored.
func DefaultPreferences() Preferences {
	return Preferences{MinPriceChangeAlert: 0.0, RiskProfile: RiskModerate}
}

// WithDefaults fills unset fields.
func (p Preferences) WithDefaults() Preferences {
	if p.RiskProfile == "" {
		p.RiskProfile = RiskModerate
	}
	return p
}

// Validate rejects unknown risk profiles and negative thresholds.
func (p Preferences) Validate() error {
	switch p.RiskProfile {
	case "", RiskConservative, RiskModerate, RiskAggressive:
	default:
		return ErrInvalidRiskProfile
	}
	if p.MinPriceChangeAlert < 0 {
		return ErrNegativePriceThreshold
	}
	return nil
}

// PortfolioContext describes what a user holds at scoring time.
type PortfolioContext struct {
	SymbolsHeld       []string         `json:"symbols_held"`
	HoldingQuantities map[string]int64 `json:"holding_quantities"`
	PortfolioValue    decimal.Decimal  `json:"portfolio_value"`
}

// Holds reports whether symbol is in the held set.
func (c PortfolioContext) Holds(symbol string) bool {
	if symbol == "" {
		return false
	}
	for _, s := range c.SymbolsHeld {
		if s == symbol {
			return true
		}
	}
	return false
}

// NewPortfolioContext derives a context from a holdings snapshot. Quantities
// are truncated to whole shares.
func NewPortfolioContext(holdings []*Holding) PortfolioContext {
	ctx := PortfolioContext{
		SymbolsHeld:       make([]string, 0, len(holdings)),
		HoldingQuantities: make(map[string]int64, len(holdings)),
		PortfolioValue:    decimal.Zero,
	}
	for _, h := range holdings {
		if _, seen := ctx.HoldingQuantities[h.Symbol]; !seen {
			ctx.SymbolsHeld = append(ctx.SymbolsHeld, h.Symbol)
		}
		ctx.HoldingQuantities[h.Symbol] += h.Quantity.IntPart()
		ctx.PortfolioValue = ctx.PortfolioValue.Add(h.Quantity.Mul(h.CurrentPrice))
	}
	return ctx
}

// PositionsEvent represents a Kafka message with a holdings snapshot
type PositionsEvent struct {
	EventType string             `json:"event_type"`
	Source    string             `json:"source"`
	Timestamp string             `json:"timestamp"`
	Data      PositionsEventData `json:"data"`
}

// PositionsEventData contains the positions of one user
type PositionsEventData struct {
	UserID      string         `json:"user_id"`
	Positions   []PositionData `json:"positions"`
	TotalEquity string         `json:"total_equity"`
}

// PositionData represents a single position in a snapshot
type PositionData struct {
	Symbol   string `json:"symbol"`
	Quantity string `json:"quantity"`
	Equity   string `json:"equity"`
	Price    string `json:"price,omitempty"`
}

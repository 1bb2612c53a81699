package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trogers1052/alert-relevance-service/internal/models"
)

func held(symbols map[string]int64) models.PortfolioContext {
	pc := models.PortfolioContext{HoldingQuantities: symbols}
	for s := range symbols {
		pc.SymbolsHeld = append(pc.SymbolsHeld, s)
	}
	return pc
}

func TestPredict_DefaultInputs(t *testing.T) {
	score := Predict(Input{Type: "system_notice"}, models.Preferences{}, models.PortfolioContext{})
	assert.Equal(t, 0.5, score)
}

func TestPredict_EarningsForHeldSymbol(t *testing.T) {
	pc := models.PortfolioContext{SymbolsHeld: []string{"AAPL"}}
	score := Predict(Input{Type: models.CategoryEarningsReport, Symbol: "AAPL"}, models.DefaultPreferences(), pc)
	assert.InDelta(t, 0.7, score, 1e-9)
}

func TestPredict_AggressivePriceGainHitsUpperBound(t *testing.T) {
	prefs := models.Preferences{MinPriceChangeAlert: 1.0, RiskProfile: models.RiskAggressive}
	score := Predict(Input{Type: models.CategoryPriceGain, Change: 10}, prefs, models.PortfolioContext{})
	assert.InDelta(t, 1.0, score, 1e-9)
	assert.LessOrEqual(t, score, 1.0)
}

func TestPredict_ClampBindsOnExtremeChange(t *testing.T) {
	score := Predict(Input{Type: models.CategoryPriceDrop, Change: -500}, models.DefaultPreferences(), models.PortfolioContext{})
	assert.Equal(t, 1.0, score)
}

func TestPredict_Rules(t *testing.T) {
	tests := []struct {
		name  string
		in    Input
		prefs models.Preferences
		pc    models.PortfolioContext
		want  float64
	}{
		{
			name:  "price move below threshold is penalised",
			in:    Input{Type: models.CategoryPriceGain, Change: 0.5},
			prefs: models.Preferences{MinPriceChangeAlert: 1.0},
			want:  0.4,
		},
		{
			name:  "price move scales linearly",
			in:    Input{Type: models.CategoryPriceGain, Change: 2.5},
			prefs: models.Preferences{MinPriceChangeAlert: 1.0},
			want:  0.6,
		},
		{
			name:  "negative change uses magnitude",
			in:    Input{Type: models.CategoryPriceDrop, Change: -5},
			prefs: models.Preferences{MinPriceChangeAlert: 1.0, RiskProfile: models.RiskConservative},
			want:  0.8,
		},
		{
			name:  "conservative bonus ignores price gains",
			in:    Input{Type: models.CategoryPriceGain, Change: 5},
			prefs: models.Preferences{RiskProfile: models.RiskConservative},
			want:  0.7,
		},
		{
			name: "positive news on held symbol",
			in:   Input{Type: models.CategoryNewsSentiment, Symbol: "MSFT", Sentiment: models.SentimentPositive},
			pc:   models.PortfolioContext{SymbolsHeld: []string{"MSFT"}},
			want: 0.75,
		},
		{
			name: "negative news on unheld symbol",
			in:   Input{Type: models.CategoryNewsSentiment, Symbol: "UNKNOWN", Sentiment: models.SentimentNegative},
			want: 0.65,
		},
		{
			name: "neutral news adds nothing",
			in:   Input{Type: models.CategoryNewsSentiment, Symbol: "X", Sentiment: models.SentimentNeutral},
			want: 0.5,
		},
		{
			name: "earnings for unheld symbol",
			in:   Input{Type: models.CategoryEarningsReport, Symbol: "GOOGL"},
			want: 0.5,
		},
		{
			name: "large position bonus",
			in:   Input{Type: models.CategoryEarningsReport, Symbol: "AAPL"},
			pc:   held(map[string]int64{"AAPL": 100}),
			want: 0.75,
		},
		{
			name: "exactly fifty shares gets no bonus",
			in:   Input{Type: models.CategoryEarningsReport, Symbol: "AAPL"},
			pc:   held(map[string]int64{"AAPL": 50}),
			want: 0.7,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Predict(tt.in, tt.prefs, tt.pc), 1e-9)
		})
	}
}

func TestPredict_IsDeterministicAndBounded(t *testing.T) {
	pc := held(map[string]int64{"AAPL": 100, "MSFT": 10})
	changes := []float64{-500, -10, -1, 0, 0.3, 4.9, 5, 500}
	types := []string{
		models.CategoryPriceGain, models.CategoryPriceDrop, models.CategoryNewsSentiment,
		models.CategoryEarningsReport, models.CategoryPriceChange, "",
	}
	profiles := []string{"", models.RiskConservative, models.RiskModerate, models.RiskAggressive}

	for _, typ := range types {
		for _, c := range changes {
			for _, p := range profiles {
				in := Input{Type: typ, Symbol: "AAPL", Change: c, Sentiment: models.SentimentPositive}
				prefs := models.Preferences{MinPriceChangeAlert: 1.0, RiskProfile: p}
				first := Predict(in, prefs, pc)
				assert.Equal(t, first, Predict(in, prefs, pc))
				assert.GreaterOrEqual(t, first, 0.0)
				assert.LessOrEqual(t, first, 1.0)
			}
		}
	}
}

func TestInputFromAlert(t *testing.T) {
	a := &models.Alert{Category: models.CategoryNewsSentiment, Symbol: "MSFT", Message: "m"}
	in := InputFromAlert(a, models.AlertSignal{Change: 1.5, Sentiment: models.SentimentPositive})
	assert.Equal(t, Input{
		Type:      models.CategoryNewsSentiment,
		Symbol:    "MSFT",
		Message:   "m",
		Change:    1.5,
		Sentiment: models.SentimentPositive,
	}, in)
}

package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/trogers1052/alert-relevance-service/internal/models"
)

func event(kind models.FeedbackKind) *models.FeedbackEvent {
	return &models.FeedbackEvent{AlertID: 1, UserID: "u1", Kind: kind}
}

func ratingEvent(rating int) *models.FeedbackEvent {
	ev := event(models.FeedbackRating)
	ev.Rating = &rating
	return ev
}

func TestEngagementScore_NoEvents(t *testing.T) {
	assert.Equal(t, 0.0, EngagementScore(nil))
	assert.Equal(t, 0.0, EngagementScore([]*models.FeedbackEvent{}))
}

func TestEngagementScore_SingleKinds(t *testing.T) {
	tests := []struct {
		name string
		ev   *models.FeedbackEvent
		want float64
	}{
		{"view", event(models.FeedbackView), 0.1},
		{"click", event(models.FeedbackClick), 0.3},
		{"mark relevant", event(models.FeedbackMarkRelevant), 0.5},
		{"rating 5", ratingEvent(5), 0.4},
		{"rating 1", ratingEvent(1), 0.08},
		{"rating without value", event(models.FeedbackRating), 0.0},
		{"mark irrelevant clamps", event(models.FeedbackMarkIrrelevant), 0.0},
		{"dismiss clamps", event(models.FeedbackDismiss), 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EngagementScore([]*models.FeedbackEvent{tt.ev}), 1e-9)
		})
	}
}

func TestEngagementScore_DividesByCountBeforeClamping(t *testing.T) {
	// Clamping each term first would give (0.5 + 0) / 2 = 0.25.
	events := []*models.FeedbackEvent{
		event(models.FeedbackMarkRelevant),
		event(models.FeedbackMarkIrrelevant),
	}
	assert.InDelta(t, 0.15, EngagementScore(events), 1e-9)
}

func TestEngagementScore_CountsEveryEvent(t *testing.T) {
	events := []*models.FeedbackEvent{
		event(models.FeedbackView),
		event(models.FeedbackClick),
		ratingEvent(5),
		event(models.FeedbackMarkRelevant),
	}
	// (0.1 + 0.3 + 0.4 + 0.5) / 4
	assert.InDelta(t, 0.325, EngagementScore(events), 1e-9)
}

func TestEngagementScore_AlwaysInUnitRange(t *testing.T) {
	kinds := []*models.FeedbackEvent{
		event(models.FeedbackView),
		event(models.FeedbackClick),
		event(models.FeedbackDismiss),
		event(models.FeedbackMarkRelevant),
		event(models.FeedbackMarkIrrelevant),
		ratingEvent(1),
		ratingEvent(5),
	}
	for i := range kinds {
		for j := range kinds {
			for k := range kinds {
				score := EngagementScore([]*models.FeedbackEvent{kinds[i], kinds[j], kinds[k]})
				assert.GreaterOrEqual(t, score, 0.0)
				assert.LessOrEqual(t, score, 1.0)
			}
		}
	}
}

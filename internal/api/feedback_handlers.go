package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/trogers1052/alert-relevance-service/internal/models"
)

// feedbackRequest is the body of POST /alerts/{id}/feedback
type feedbackRequest struct {
	UserID              string              `json:"user_id"`
	FeedbackType        models.FeedbackKind `json:"feedback_type"`
	Rating              *int                `json:"rating"`
	RelevanceScore      *float64            `json:"relevance_score"`
	InteractionDuration *float64            `json:"interaction_duration"`
	DismissReason       string              `json:"dismiss_reason"`
	Notes               string              `json:"notes"`
}

// CreateFeedback handles POST /alerts/{id}/feedback
func (h *Handler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := alertIDVar(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FeedbackType == models.FeedbackRating && req.Rating == nil {
		respondError(w, http.StatusBadRequest, "rating is required for rating feedback")
		return
	}

	if _, err := h.alerts.Get(id); err != nil {
		h.fail(w, r, err)
		return
	}

	ev := &models.FeedbackEvent{
		AlertID:             id,
		UserID:              req.UserID,
		Kind:                req.FeedbackType,
		Rating:              req.Rating,
		RelevanceScore:      req.RelevanceScore,
		InteractionDuration: req.InteractionDuration,
		DismissReason:       req.DismissReason,
		Notes:               req.Notes,
	}
	if err := h.feedback.Record(ev); err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, ev)
}

// GetAlertFeedback handles GET /alerts/{id}/feedback
func (h *Handler) GetAlertFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := alertIDVar(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	events, err := h.feedback.ForAlert(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, nonNilEvents(events))
}

// GetEngagement handles GET /alerts/{id}/engagement
func (h *Handler) GetEngagement(w http.ResponseWriter, r *http.Request) {
	id, ok := alertIDVar(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	score, err := h.feedback.EngagementScore(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"alert_id":         id,
		"engagement_score": score,
	})
}

// GetUserFeedback handles GET /users/{userID}/feedback?days=
func (h *Handler) GetUserFeedback(w http.ResponseWriter, r *http.Request) {
	days, ok := h.daysParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "days must be a positive integer")
		return
	}

	events, err := h.feedback.ForUser(mux.Vars(r)["userID"], days)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, nonNilEvents(events))
}

// GetUserFeedbackSummary handles GET /users/{userID}/feedback/summary?days=
func (h *Handler) GetUserFeedbackSummary(w http.ResponseWriter, r *http.Request) {
	days, ok := h.daysParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "days must be a positive integer")
		return
	}

	summary, err := h.feedback.UserSummary(mux.Vars(r)["userID"], days)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func nonNilEvents(events []*models.FeedbackEvent) []*models.FeedbackEvent {
	if events == nil {
		return []*models.FeedbackEvent{}
	}
	return events
}

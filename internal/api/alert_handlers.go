package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/trogers1052/alert-relevance-service/internal/models"
)

// createAlertRequest is the body of POST /alerts
type createAlertRequest struct {
	UserID      string   `json:"user_id"`
	PortfolioID string   `json:"portfolio_id"`
	AlertType   string   `json:"alert_type"`
	Symbol      string   `json:"symbol"`
	Threshold   *float64 `json:"threshold"`
	Message     string   `json:"message"`
	Change      float64  `json:"change"`
	Sentiment   string   `json:"sentiment"`
}

// CreateAlert handles POST /alerts
func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	alert := &models.Alert{
		UserID:      req.UserID,
		PortfolioID: req.PortfolioID,
		Category:    req.AlertType,
		Symbol:      req.Symbol,
		Threshold:   req.Threshold,
		Message:     req.Message,
	}
	created, err := h.alerts.Raise(r.Context(), alert, models.AlertSignal{Change: req.Change, Sentiment: req.Sentiment})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// ListAlerts handles GET /alerts?user_id=&active_only=
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	activeOnly := false
	if raw := q.Get("active_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "active_only must be a boolean")
			return
		}
		activeOnly = v
	}

	alerts, err := h.alerts.List(q.Get("user_id"), activeOnly)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []*models.Alert{}
	}

	respondJSON(w, http.StatusOK, alerts)
}

// GetAlert handles GET /alerts/{id}
func (h *Handler) GetAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := alertIDVar(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	alert, err := h.alerts.Get(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, alert)
}

// DeactivateAlert handles POST /alerts/{id}/deactivate
func (h *Handler) DeactivateAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := alertIDVar(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	if err := h.alerts.Deactivate(id); err != nil {
		h.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPreferences handles GET /users/{userID}/preferences
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.preferences.Preferences(r.Context(), mux.Vars(r)["userID"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, prefs)
}

// PutPreferences handles PUT /users/{userID}/preferences
func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs models.Preferences
	if err := decodeJSON(r, &prefs); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.preferences.SavePreferences(r.Context(), mux.Vars(r)["userID"], prefs); err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, prefs.WithDefaults())
}

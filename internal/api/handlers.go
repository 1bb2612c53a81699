package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/trogers1052/alert-relevance-service/internal/database"
	"github.com/trogers1052/alert-relevance-service/internal/metrics"
	"github.com/trogers1052/alert-relevance-service/internal/models"
	"github.com/trogers1052/alert-relevance-service/internal/relevance"
)

// AlertService raises and reads alerts
type AlertService interface {
	Raise(ctx context.Context, alert *models.Alert, signal models.AlertSignal) (*models.Alert, error)
	Score(ctx context.Context, in relevance.Input, userID string) (float64, error)
	Get(id int64) (*models.Alert, error)
	List(userID string, activeOnly bool) ([]*models.Alert, error)
	Deactivate(id int64) error
}

// FeedbackService records and summarises feedback
type FeedbackService interface {
	Record(ev *models.FeedbackEvent) error
	ForAlert(alertID int64) ([]*models.FeedbackEvent, error)
	ForUser(userID string, daysBack int) ([]*models.FeedbackEvent, error)
	EngagementScore(alertID int64) (float64, error)
	UserSummary(userID string, daysBack int) (*models.UserFeedbackSummary, error)
}

// PreferenceService reads and stores user preferences
type PreferenceService interface {
	Preferences(ctx context.Context, userID string) (models.Preferences, error)
	SavePreferences(ctx context.Context, userID string, prefs models.Preferences) error
}

// ModelReporter exposes the retrainer's last results
type ModelReporter interface {
	Performance() models.ModelPerformance
	Insights() models.FeedbackInsights
}

// TrainRunner runs a retraining pass on demand
type TrainRunner interface {
	Run(ctx context.Context) (models.TrainResult, error)
}

// Pinger checks a backing service
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// Ping calls f
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Deps groups the handler dependencies. Postgres and Redis may be nil.
type Deps struct {
	Alerts              AlertService
	Feedback            FeedbackService
	Preferences         PreferenceService
	Model               ModelReporter
	Trainer             TrainRunner
	Postgres            Pinger
	Redis               Pinger
	Metrics             *metrics.Metrics
	DefaultFeedbackDays int
	Log                 zerolog.Logger
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	alerts      AlertService
	feedback    FeedbackService
	preferences PreferenceService
	model       ModelReporter
	trainer     TrainRunner
	postgres    Pinger
	redis       Pinger
	metrics     *metrics.Metrics
	defaultDays int
	log         zerolog.Logger
}

// NewHandler creates a new Handler
func NewHandler(d Deps) *Handler {
	days := d.DefaultFeedbackDays
	if days <= 0 {
		days = 30
	}
	return &Handler{
		alerts:      d.Alerts,
		feedback:    d.Feedback,
		preferences: d.Preferences,
		model:       d.Model,
		trainer:     d.Trainer,
		postgres:    d.Postgres,
		redis:       d.Redis,
		metrics:     d.Metrics,
		defaultDays: days,
		log:         d.Log.With().Str("component", "api").Logger(),
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	services := map[string]string{}
	allHealthy := true

	// Check database
	if h.postgres != nil {
		if err := h.postgres.Ping(ctx); err != nil {
			services["postgres"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			services["postgres"] = "healthy"
		}
	} else {
		services["postgres"] = "not configured"
		allHealthy = false
	}

	// Check Redis
	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			services["redis"] = "unhealthy: " + err.Error()
		} else {
			services["redis"] = "healthy"
		}
	} else {
		services["redis"] = "not configured"
	}

	health["services"] = services
	if !allHealthy {
		health["status"] = "degraded"
	}

	respondJSON(w, http.StatusOK, health)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// fail maps service errors to status codes. Unexpected errors are logged and
// reported without detail.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case models.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrAlertNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dest interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func alertIDVar(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// daysParam reads ?days=, falling back to the configured window.
func (h *Handler) daysParam(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return h.defaultDays, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return 0, false
	}
	return days, true
}

package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check and metrics
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	if handler.metrics != nil {
		r.Handle("/metrics", handler.metrics.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// Alert routes
	api.HandleFunc("/alerts", handler.CreateAlert).Methods("POST")
	api.HandleFunc("/alerts", handler.ListAlerts).Methods("GET")
	api.HandleFunc("/alerts/{id:[0-9]+}", handler.GetAlert).Methods("GET")
	api.HandleFunc("/alerts/{id:[0-9]+}/deactivate", handler.DeactivateAlert).Methods("POST")

	// Feedback routes
	api.HandleFunc("/alerts/{id:[0-9]+}/feedback", handler.CreateFeedback).Methods("POST")
	api.HandleFunc("/alerts/{id:[0-9]+}/feedback", handler.GetAlertFeedback).Methods("GET")
	api.HandleFunc("/alerts/{id:[0-9]+}/engagement", handler.GetEngagement).Methods("GET")
	api.HandleFunc("/users/{userID}/feedback", handler.GetUserFeedback).Methods("GET")
	api.HandleFunc("/users/{userID}/feedback/summary", handler.GetUserFeedbackSummary).Methods("GET")

	// Preference routes
	api.HandleFunc("/users/{userID}/preferences", handler.GetPreferences).Methods("GET")
	api.HandleFunc("/users/{userID}/preferences", handler.PutPreferences).Methods("PUT")

	// Relevance model routes
	api.HandleFunc("/relevance/predict", handler.Predict).Methods("POST")
	api.HandleFunc("/relevance/train", handler.Train).Methods("POST")
	api.HandleFunc("/relevance/performance", handler.GetPerformance).Methods("GET")
	api.HandleFunc("/relevance/insights", handler.GetInsights).Methods("GET")

	return r
}

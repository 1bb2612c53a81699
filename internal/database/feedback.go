package database

import (
	"database/sql"
	"fmt"

	"github.com/trogers1052/alert-relevance-service/internal/models"
)

const feedbackColumns = `id, alert_id, user_id, feedback_type, feedback_timestamp, rating,
		       relevance_score, interaction_duration, dismiss_reason, notes`

// RecordFeedback appends a feedback event and assigns its identity.
// Callers validate the event beforehand.
func (db *DB) RecordFeedback(fb *models.FeedbackEvent) error {
	query := `
		INSERT INTO alert_feedback (
			alert_id, user_id, feedback_type, feedback_timestamp, rating,
			relevance_score, interaction_duration, dismiss_reason, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	if fb.Timestamp.IsZero() {
		fb.Timestamp = db.now()
	}
	err := db.conn.QueryRow(query,
		fb.AlertID, fb.UserID, string(fb.Kind), fb.Timestamp, fb.Rating,
		fb.RelevanceScore, fb.InteractionDuration, nullString(fb.DismissReason), nullString(fb.Notes),
	).Scan(&fb.ID)

	if err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}
	return nil
}

// FeedbackForAlert returns every event for one alert, oldest first
func (db *DB) FeedbackForAlert(alertID int64) ([]*models.FeedbackEvent, error) {
	query := `SELECT ` + feedbackColumns + `
		FROM alert_feedback
		WHERE alert_id = $1
		ORDER BY feedback_timestamp ASC`

	return db.queryFeedback(query, alertID)
}

// FeedbackForUser returns a user's events within [now - daysBack, now],
// newest first
func (db *DB) FeedbackForUser(userID string, daysBack int) ([]*models.FeedbackEvent, error) {
	now := db.now()
	query := `SELECT ` + feedbackColumns + `
		FROM alert_feedback
		WHERE user_id = $1 AND feedback_timestamp >= $2 AND feedback_timestamp <= $3
		ORDER BY feedback_timestamp DESC`

	return db.queryFeedback(query, userID, windowStart(now, daysBack), now)
}

func (db *DB) queryFeedback(query string, args ...any) ([]*models.FeedbackEvent, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	defer rows.Close()

	var events []*models.FeedbackEvent
	for rows.Next() {
		var fb models.FeedbackEvent
		var kind string
		var rating sql.NullInt64
		var relevance, duration sql.NullFloat64
		var reason, notes sql.NullString

		err := rows.Scan(
			&fb.ID, &fb.AlertID, &fb.UserID, &kind, &fb.Timestamp, &rating,
			&relevance, &duration, &reason, &notes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}

		fb.Kind = models.FeedbackKind(kind)
		if rating.Valid {
			r := int(rating.Int64)
			fb.Rating = &r
		}
		if relevance.Valid {
			fb.RelevanceScore = &relevance.Float64
		}
		if duration.Valid {
			fb.InteractionDuration = &duration.Float64
		}
		fb.DismissReason = reason.String
		fb.Notes = notes.String

		events = append(events, &fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback: %w", err)
	}

	return events, nil
}

// TrainingData returns one record per alert created in the last daysBack
// days, each with its feedback ordered by timestamp. Alerts without
// feedback are included with an empty list.
func (db *DB) TrainingData(daysBack int) ([]models.TrainingRecord, error) {
	query := `
		SELECT a.id, a.alert_type, a.symbol, a.message, a.relevance_score,
		       af.feedback_type, af.rating, af.interaction_duration,
		       af.dismiss_reason, af.feedback_timestamp
		FROM alerts a
		LEFT JOIN alert_feedback af ON a.id = af.alert_id
		WHERE a.created_at >= $1
		ORDER BY a.id, af.feedback_timestamp
	`
	rows, err := db.conn.Query(query, windowStart(db.now(), daysBack))
	if err != nil {
		return nil, fmt.Errorf("failed to get training data: %w", err)
	}
	defer rows.Close()

	var records []models.TrainingRecord
	for rows.Next() {
		var (
			alertID   int64
			alertType string
			symbol    sql.NullString
			message   string
			predicted sql.NullFloat64
			kind      sql.NullString
			rating    sql.NullInt64
			duration  sql.NullFloat64
			reason    sql.NullString
			ts        sql.NullTime
		)
		err := rows.Scan(
			&alertID, &alertType, &symbol, &message, &predicted,
			&kind, &rating, &duration, &reason, &ts,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan training row: %w", err)
		}

		if len(records) == 0 || records[len(records)-1].AlertID != alertID {
			rec := models.TrainingRecord{
				AlertID:   alertID,
				AlertType: alertType,
				Symbol:    symbol.String,
				Message:   message,
				Feedback:  []models.TrainingFeedback{},
			}
			if predicted.Valid {
				p := predicted.Float64
				rec.PredictedRelevance = &p
			}
			records = append(records, rec)
		}

		if !kind.Valid {
			continue
		}
		item := models.TrainingFeedback{
			Kind:          models.FeedbackKind(kind.String),
			DismissReason: reason.String,
			Timestamp:     ts.Time,
		}
		if rating.Valid {
			r := int(rating.Int64)
			item.Rating = &r
		}
		if duration.Valid {
			d := duration.Float64
			item.InteractionDuration = &d
		}
		last := &records[len(records)-1]
		last.Feedback = append(last.Feedback, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate training data: %w", err)
	}

	return records, nil
}

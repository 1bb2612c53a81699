package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/trogers1052/alert-relevance-service/internal/models"
)

// ErrAlertNotFound is returned when no alert matches the requested id.
var ErrAlertNotFound = errors.New("alert not found")

const alertColumns = `id, user_id, portfolio_id, alert_type, symbol, threshold, message,
		       created_at, is_active, triggered_at, relevance_score`

// CreateAlert inserts a new alert and assigns its identity
func (db *DB) CreateAlert(a *models.Alert) error {
	if err := a.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO alerts (
			user_id, portfolio_id, alert_type, symbol, threshold, message,
			created_at, is_active, triggered_at, relevance_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	if a.CreatedAt.IsZero() {
		a.CreatedAt = db.now()
	}
	err := db.conn.QueryRow(query,
		a.UserID, a.PortfolioID, a.Category, nullString(a.Symbol), a.Threshold, a.Message,
		a.CreatedAt, a.IsActive, a.TriggeredAt, a.RelevanceScore,
	).Scan(&a.ID)

	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

// GetAlert retrieves an alert by its ID
func (db *DB) GetAlert(id int64) (*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`

	a, err := scanAlert(db.conn.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %d", ErrAlertNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return a, nil
}

// GetAlertsForUser lists a user's alerts, newest first
func (db *DB) GetAlertsForUser(userID string, activeOnly bool) ([]*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE user_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}

	return alerts, nil
}

// DeactivateAlert clears the active flag. Alerts are never deleted.
func (db *DB) DeactivateAlert(id int64) error {
	result, err := db.conn.Exec(`UPDATE alerts SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate alert: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrAlertNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (*models.Alert, error) {
	var a models.Alert
	var symbol sql.NullString
	var threshold, relevance sql.NullFloat64
	var triggeredAt sql.NullTime

	err := row.Scan(
		&a.ID, &a.UserID, &a.PortfolioID, &a.Category, &symbol, &threshold, &a.Message,
		&a.CreatedAt, &a.IsActive, &triggeredAt, &relevance,
	)
	if err != nil {
		return nil, err
	}

	if symbol.Valid {
		a.Symbol = symbol.String
	}
	if threshold.Valid {
		a.Threshold = &threshold.Float64
	}
	if triggeredAt.Valid {
		a.TriggeredAt = &triggeredAt.Time
	}
	if relevance.Valid {
		a.RelevanceScore = &relevance.Float64
	}
	return &a, nil
}

package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/trogers1052/alert-relevance-service/internal/models"
)

// SavePreferences stores a user's preferences, replacing any previous set.
// An empty risk profile is stored as moderate.
func (db *DB) SavePreferences(userID string, prefs models.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(prefs.WithDefaults())
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	query := `
		INSERT INTO user_preferences (user_id, preferences, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			preferences = EXCLUDED.preferences,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := db.conn.Exec(query, userID, payload, db.now()); err != nil {
		return fmt.Errorf("failed to save preferences for %s: %w", userID, err)
	}
	return nil
}

// GetPreferences returns a user's preferences, or the defaults when the
// user has none stored.
func (db *DB) GetPreferences(userID string) (models.Preferences, error) {
	var payload []byte
	err := db.conn.QueryRow(
		`SELECT preferences FROM user_preferences WHERE user_id = $1`, userID,
	).Scan(&payload)

	if err == sql.ErrNoRows {
		return models.DefaultPreferences(), nil
	}
	if err != nil {
		return models.Preferences{}, fmt.Errorf("failed to get preferences for %s: %w", userID, err)
	}

	prefs := models.DefaultPreferences()
	if err := json.Unmarshal(payload, &prefs); err != nil {
		return models.Preferences{}, fmt.Errorf("failed to unmarshal preferences for %s: %w", userID, err)
	}
	return prefs.WithDefaults(), nil
}

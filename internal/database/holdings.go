package database

import (
	"fmt"

	"github.com/trogers1052/alert-relevance-service/internal/models"
)

// ReplaceHoldings atomically replaces a user's holdings with a new snapshot
func (db *DB) ReplaceHoldings(userID string, holdings []*models.Holding) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM holdings WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete existing holdings: %w", err)
	}

	insertQuery := `
		INSERT INTO holdings (user_id, symbol, quantity, current_price, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	now := db.now()
	for _, h := range holdings {
		h.UserID = userID
		err := tx.QueryRow(insertQuery,
			userID, h.Symbol, h.Quantity, h.CurrentPrice, now,
		).Scan(&h.ID)
		if err != nil {
			return fmt.Errorf("failed to insert holding %s: %w", h.Symbol, err)
		}
		h.UpdatedAt = now
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetHoldings returns a user's holdings ordered by symbol
func (db *DB) GetHoldings(userID string) ([]*models.Holding, error) {
	query := `
		SELECT id, user_id, symbol, quantity, current_price, updated_at
		FROM holdings
		WHERE user_id = $1
		ORDER BY symbol
	`
	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*models.Holding
	for rows.Next() {
		var h models.Holding
		err := rows.Scan(&h.ID, &h.UserID, &h.Symbol, &h.Quantity, &h.CurrentPrice, &h.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	return holdings, nil
}

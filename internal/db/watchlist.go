package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ListWatchTargets retrieves a user's watchlist, newest first. When
// activeOnly is set, paused entries are excluded.
func (db *DB) ListWatchTargets(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]WatchTarget, error) {
	query := `SELECT id, user_id, target_type, target_value, active, created_at
		FROM watch_targets WHERE user_id = $1`
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list watch targets: %w", err)
	}
	defer rows.Close()

	var targets []WatchTarget
	for rows.Next() {
		var t WatchTarget
		if err := rows.Scan(&t.ID, &t.UserID, &t.TargetType, &t.TargetValue, &t.Active, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watch target: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// AddWatchTarget inserts a watchlist entry, reactivating it if the same
// (user, type, value) already exists.
func (db *DB) AddWatchTarget(ctx context.Context, userID uuid.UUID, targetType, targetValue string) (*WatchTarget, error) {
	var t WatchTarget
	err := db.pool.QueryRow(ctx,
		`INSERT INTO watch_targets (user_id, target_type, target_value, active)
		 VALUES ($1, $2, $3, TRUE)
		 ON CONFLICT (user_id, target_type, target_value)
		 DO UPDATE SET active = TRUE
		 RETURNING id, user_id, target_type, target_value, active, created_at`,
		userID, targetType, strings.ToLower(targetValue),
	).Scan(&t.ID, &t.UserID, &t.TargetType, &t.TargetValue, &t.Active, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add watch target: %w", err)
	}
	return &t, nil
}

// AddWatchTargets bulk-inserts watchlist entries of one type, skipping
// duplicates. Returns the number of rows actually inserted.
func (db *DB) AddWatchTargets(ctx context.Context, userID uuid.UUID, targetType string, targetValues []string) (int, error) {
	inserted := 0
	for _, value := range targetValues {
		result, err := db.pool.Exec(ctx,
			`INSERT INTO watch_targets (user_id, target_type, target_value, active)
			 VALUES ($1, $2, $3, TRUE)
			 ON CONFLICT (user_id, target_type, target_value) DO NOTHING`,
			userID, targetType, strings.ToLower(value),
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to add watch target %q: %w", value, err)
		}
		inserted += int(result.RowsAffected())
	}
	return inserted, nil
}

// RemoveWatchTarget deletes a watchlist entry owned by the user.
func (db *DB) RemoveWatchTarget(ctx context.Context, userID, targetID uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM watch_targets WHERE id = $1 AND user_id = $2`,
		targetID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove watch target: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("watch target not found: %s", targetID)
	}
	return nil
}

// SetWatchTargetActive pauses or resumes a watchlist entry.
func (db *DB) SetWatchTargetActive(ctx context.Context, userID, targetID uuid.UUID, active bool) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE watch_targets SET active = $1 WHERE id = $2 AND user_id = $3`,
		active, targetID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update watch target: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("watch target not found: %s", targetID)
	}
	return nil
}

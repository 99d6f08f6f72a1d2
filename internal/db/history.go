package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/signal-now/signal-agent/internal/types"
)

// AppendHistory inserts an append-only assessment history entry. The full
// stage trace is stored as JSONB.
func (db *DB) AppendHistory(ctx context.Context, entry *types.AssessmentHistoryEntry) error {
	var traceJSON []byte
	if entry.Trace != nil {
		var err error
		traceJSON, err = json.Marshal(entry.Trace)
		if err != nil {
			return fmt.Errorf("failed to marshal trace: %w", err)
		}
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO assessment_history
		   (id, user_id, target_handle, created_at, readiness_score, decision, reasoning, bridge, trace)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.UserID, entry.TargetHandle, entry.Timestamp,
		entry.ReadinessScore, entry.Decision, entry.Reasoning, entry.Bridge, traceJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to append history for %s: %w", entry.TargetHandle, err)
	}
	return nil
}

// ListHistory retrieves recent assessment history for a user, newest first.
// When targetHandle is non-empty, results are limited to that target.
func (db *DB) ListHistory(ctx context.Context, userID uuid.UUID, targetHandle string, limit int) ([]types.AssessmentHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, user_id, target_handle, created_at, readiness_score,
		decision, COALESCE(reasoning, ''), COALESCE(bridge, ''), trace
		FROM assessment_history WHERE user_id = $1`
	args := []any{userID}
	argNum := 2

	if targetHandle != "" {
		query += fmt.Sprintf(" AND target_handle = $%d", argNum)
		args = append(args, targetHandle)
		argNum++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []types.AssessmentHistoryEntry
	for rows.Next() {
		var entry types.AssessmentHistoryEntry
		var traceJSON []byte
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.TargetHandle, &entry.Timestamp,
			&entry.ReadinessScore, &entry.Decision, &entry.Reasoning, &entry.Bridge, &traceJSON); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		if len(traceJSON) > 0 {
			var trace types.AssessmentTrace
			if err := json.Unmarshal(traceJSON, &trace); err == nil {
				entry.Trace = &trace
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// LogEngagement records an outreach action and returns the stored row.
func (db *DB) LogEngagement(ctx context.Context, userID uuid.UUID, targetHandle, action, message string) (*EngagementLog, error) {
	var log EngagementLog
	err := db.pool.QueryRow(ctx,
		`INSERT INTO engagement_log (user_id, target_handle, action, message)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, target_handle, action, COALESCE(message, ''), created_at`,
		userID, targetHandle, action, message,
	).Scan(&log.ID, &log.UserID, &log.TargetHandle, &log.Action, &log.Message, &log.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to log engagement: %w", err)
	}
	return &log, nil
}

// ListEngagements retrieves a user's engagement log, newest first.
func (db *DB) ListEngagements(ctx context.Context, userID uuid.UUID, limit int) ([]EngagementLog, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, target_handle, action, COALESCE(message, ''), created_at
		 FROM engagement_log WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list engagements: %w", err)
	}
	defer rows.Close()

	var logs []EngagementLog
	for rows.Next() {
		var log EngagementLog
		if err := rows.Scan(&log.ID, &log.UserID, &log.TargetHandle, &log.Action, &log.Message, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan engagement: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, nil
}

package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/signal-now/signal-agent/internal/types"
)

// GetSnapshot retrieves the live assessment snapshot for a (user, target)
// pair. Returns nil when no snapshot exists yet.
func (db *DB) GetSnapshot(ctx context.Context, userID uuid.UUID, targetHandle string) (*types.AssessmentSnapshot, error) {
	var s types.AssessmentSnapshot
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, target_handle, activity_fingerprint, readiness_score,
		        readiness_level, decision, COALESCE(bridge, ''), COALESCE(reasoning, ''),
		        COALESCE(focus_areas, '{}'), COALESCE(icebreaker, ''), COALESCE(next_step, ''),
		        last_checked_at
		 FROM assessment_snapshots WHERE user_id = $1 AND target_handle = $2`,
		userID, targetHandle,
	).Scan(&s.UserID, &s.TargetHandle, &s.ActivityFingerprint, &s.ReadinessScore,
		&s.ReadinessLevel, &s.Decision, &s.Bridge, &s.Reasoning,
		&s.FocusAreas, &s.Icebreaker, &s.NextStep, &s.LastCheckedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &s, nil
}

// UpsertSnapshot writes the live snapshot for a (user, target) pair,
// replacing any previous one. There is at most one live row per pair.
func (db *DB) UpsertSnapshot(ctx context.Context, snapshot *types.AssessmentSnapshot) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO assessment_snapshots
		   (user_id, target_handle, activity_fingerprint, readiness_score, readiness_level,
		    decision, bridge, reasoning, focus_areas, icebreaker, next_step, last_checked_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (user_id, target_handle) DO UPDATE SET
		   activity_fingerprint = $3, readiness_score = $4, readiness_level = $5,
		   decision = $6, bridge = $7, reasoning = $8, focus_areas = $9,
		   icebreaker = $10, next_step = $11, last_checked_at = $12`,
		snapshot.UserID, snapshot.TargetHandle, snapshot.ActivityFingerprint,
		snapshot.ReadinessScore, snapshot.ReadinessLevel, snapshot.Decision,
		snapshot.Bridge, snapshot.Reasoning, snapshot.FocusAreas,
		snapshot.Icebreaker, snapshot.NextStep, snapshot.LastCheckedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot for %s: %w", snapshot.TargetHandle, err)
	}
	return nil
}

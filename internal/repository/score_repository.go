package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safetrace/safetrace-backend-go/internal/database"
	"github.com/safetrace/safetrace-backend-go/internal/models"
)

// ScoreRepository persists the latest score snapshot for external readers.
// The stored rows are a published copy; scores are always recomputed from
// feedback.
type ScoreRepository struct {
	db *sql.DB
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(db *sql.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Save replaces the stored snapshot atomically
func (r *ScoreRepository) Save(ctx context.Context, snap *models.ScoreSnapshot) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM segment_scores`); err != nil {
			return fmt.Errorf("failed to clear segment scores: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO segment_scores
			(segment_id, score, confidence, num_feedback, feedback_version, computed_at)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare score insert: %w", err)
		}
		defer stmt.Close()

		for _, s := range snap.Scores {
			if _, err := stmt.ExecContext(ctx, s.SegmentID, s.Score, s.Confidence, s.NumFeedback, snap.Version, snap.ComputedAt); err != nil {
				return fmt.Errorf("failed to insert score of segment %d: %w", s.SegmentID, err)
			}
		}
		return nil
	})
}

// Load reads the stored snapshot. It returns nil when nothing was saved.
func (r *ScoreRepository) Load(ctx context.Context) (*models.ScoreSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT segment_id, score, confidence, num_feedback, feedback_version, computed_at
		FROM segment_scores ORDER BY segment_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query segment scores: %w", err)
	}
	defer rows.Close()

	var snap *models.ScoreSnapshot
	for rows.Next() {
		var (
			s                   models.SegmentScore
			version, computedAt int64
		)
		if err := rows.Scan(&s.SegmentID, &s.Score, &s.Confidence, &s.NumFeedback, &version, &computedAt); err != nil {
			return nil, fmt.Errorf("failed to scan segment score: %w", err)
		}
		if snap == nil {
			snap = &models.ScoreSnapshot{Version: version, ComputedAt: computedAt, Scores: make(map[int64]models.SegmentScore)}
		}
		snap.Scores[s.SegmentID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate segment scores: %w", err)
	}

	if snap != nil {
		snap.SegmentsCovered = len(snap.Scores)
	}
	return snap, nil
}

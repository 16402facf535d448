package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/safetrace/safetrace-backend-go/internal/models"
)

// FeedbackRepository is an append-only SQLite feedback store. The version is
// the highest sequence number, which never decreases.
type FeedbackRepository struct {
	db *sql.DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

const feedbackColumns = `id, segment_id, rating, tags, timestamp, time_of_day, persona, trust_weight, submitted_by`

// Append inserts a record and returns the new version
func (r *FeedbackRepository) Append(ctx context.Context, rec models.FeedbackRecord) (int64, error) {
	tags, err := json.Marshal(nonNil(rec.Tags))
	if err != nil {
		return 0, fmt.Errorf("failed to encode tags: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO feedback (`+feedbackColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SegmentID, rec.Rating, string(tags), rec.Timestamp, rec.TimeOfDay,
		rec.Persona, rec.TrustWeight, nullString(rec.SubmittedBy),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert feedback: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read feedback sequence: %w", err)
	}
	return seq, nil
}

// Snapshot reads every record and the version they represent in one
// read transaction
func (r *FeedbackRepository) Snapshot(ctx context.Context) (models.FeedbackSnapshot, error) {
	var snap models.FeedbackSnapshot

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return snap, fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM feedback`).Scan(&snap.Version); err != nil {
		return snap, fmt.Errorf("failed to read feedback version: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `SELECT `+feedbackColumns+` FROM feedback WHERE seq <= ? ORDER BY seq`, snap.Version)
	if err != nil {
		return snap, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	snap.Records, err = scanFeedback(rows)
	if err != nil {
		return snap, err
	}
	if snap.Records == nil {
		snap.Records = []models.FeedbackRecord{}
	}
	return snap, nil
}

// Version returns the current feedback version
func (r *FeedbackRepository) Version(ctx context.Context) (int64, error) {
	var v int64
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM feedback`).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read feedback version: %w", err)
	}
	return v, nil
}

// List retrieves feedback with filtering and pagination, newest first
func (r *FeedbackRepository) List(ctx context.Context, filter models.FeedbackFilter) ([]models.FeedbackRecord, int64, error) {
	filter.Normalize()

	var conditions []string
	var args []interface{}

	if filter.SegmentID != nil {
		conditions = append(conditions, "segment_id = ?")
		args = append(args, *filter.SegmentID)
	}
	if filter.Persona != "" {
		conditions = append(conditions, "persona = ?")
		args = append(args, filter.Persona)
	}
	if filter.StartTime > 0 {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filter.StartTime)
	}
	if filter.EndTime > 0 {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, filter.EndTime)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feedback"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count feedback: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize
	query := "SELECT " + feedbackColumns + " FROM feedback" + where + " ORDER BY seq DESC LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	records, err := scanFeedback(rows)
	if err != nil {
		return nil, 0, err
	}
	if records == nil {
		records = []models.FeedbackRecord{}
	}
	return records, total, nil
}

func scanFeedback(rows *sql.Rows) ([]models.FeedbackRecord, error) {
	var records []models.FeedbackRecord
	for rows.Next() {
		var (
			rec         models.FeedbackRecord
			tags        string
			submittedBy sql.NullString
		)
		err := rows.Scan(
			&rec.ID, &rec.SegmentID, &rec.Rating, &tags, &rec.Timestamp, &rec.TimeOfDay,
			&rec.Persona, &rec.TrustWeight, &submittedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &rec.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags of feedback %s: %w", rec.ID, err)
		}
		rec.SubmittedBy = submittedBy.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback: %w", err)
	}
	return records, nil
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

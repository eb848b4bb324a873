package store

import (
	"fmt"
	"time"

	"testdash/internal/models"
)

// AttemptJournal records successfully submitted attempts locally so the
// student keeps a history independent of the platform.
type AttemptJournal struct {
	db *DB
}

// NewAttemptJournal creates a new attempt journal
func NewAttemptJournal(db *DB) *AttemptJournal {
	return &AttemptJournal{db: db}
}

// Record appends one submitted attempt to the journal
func (j *AttemptJournal) Record(rec models.AttemptRecord) error {
	_, err := j.db.Exec(
		`INSERT INTO attempts (id, test_id, test_title, answered_count, question_count, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TestID, rec.TestTitle, rec.AnsweredCount, rec.QuestionCount,
		rec.SubmittedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// List returns all journaled attempts, most recent first
func (j *AttemptJournal) List() ([]models.AttemptRecord, error) {
	rows, err := j.db.Query(
		`SELECT id, test_id, test_title, answered_count, question_count, submitted_at
		 FROM attempts ORDER BY submitted_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var records []models.AttemptRecord
	for rows.Next() {
		var rec models.AttemptRecord
		var submittedAt string
		if err := rows.Scan(&rec.ID, &rec.TestID, &rec.TestTitle,
			&rec.AnsweredCount, &rec.QuestionCount, &submittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		rec.SubmittedAt, err = time.Parse(time.RFC3339, submittedAt)
		if err != nil {
			return nil, fmt.Errorf("attempt %s has invalid timestamp: %w", rec.ID, err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Clear removes every journaled attempt
func (j *AttemptJournal) Clear() error {
	if _, err := j.db.Exec("DELETE FROM attempts"); err != nil {
		return fmt.Errorf("failed to clear attempts: %w", err)
	}
	return nil
}

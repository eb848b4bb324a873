package store

import (
	"testing"
	"time"

	"testdash/internal/models"
)

func TestAttemptJournalRecordList(t *testing.T) {
	journal := NewAttemptJournal(newTestDB(t))

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	records := []models.AttemptRecord{
		{
			ID:            "attempt-1",
			TestID:        7,
			TestTitle:     "Algebra Midterm",
			AnsweredCount: 8,
			QuestionCount: 10,
			SubmittedAt:   base,
		},
		{
			ID:            "attempt-2",
			TestID:        9,
			TestTitle:     "History Quiz",
			AnsweredCount: 5,
			QuestionCount: 5,
			SubmittedAt:   base.Add(time.Hour),
		},
	}
	for _, rec := range records {
		if err := journal.Record(rec); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	listed, err := journal.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("List() returned %d records, want 2", len(listed))
	}

	// Most recent first.
	if listed[0].ID != "attempt-2" {
		t.Errorf("List()[0].ID = %q, want %q", listed[0].ID, "attempt-2")
	}
	if listed[1].ID != "attempt-1" {
		t.Errorf("List()[1].ID = %q, want %q", listed[1].ID, "attempt-1")
	}

	if listed[1].TestTitle != "Algebra Midterm" {
		t.Errorf("TestTitle = %q, want %q", listed[1].TestTitle, "Algebra Midterm")
	}
	if listed[1].AnsweredCount != 8 || listed[1].QuestionCount != 10 {
		t.Errorf("counts = %d/%d, want 8/10", listed[1].AnsweredCount, listed[1].QuestionCount)
	}
	if !listed[1].SubmittedAt.Equal(base) {
		t.Errorf("SubmittedAt = %v, want %v", listed[1].SubmittedAt, base)
	}
}

func TestAttemptJournalListEmpty(t *testing.T) {
	journal := NewAttemptJournal(newTestDB(t))

	listed, err := journal.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("List() on an empty journal returned %d records", len(listed))
	}
}

func TestAttemptJournalClear(t *testing.T) {
	journal := NewAttemptJournal(newTestDB(t))

	rec := models.AttemptRecord{
		ID:            "attempt-1",
		TestID:        1,
		TestTitle:     "Quiz",
		AnsweredCount: 1,
		QuestionCount: 2,
		SubmittedAt:   time.Now().UTC(),
	}
	if err := journal.Record(rec); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if err := journal.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	listed, err := journal.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("List() after Clear() returned %d records", len(listed))
	}
}

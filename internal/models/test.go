package models

import "time"

// Test represents a test as listed by the platform
type Test struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	Duration    int      `json:"duration"` // minutes
	MaxScore    int      `json:"max_score"`
	Status      string   `json:"status"` // completed, available, upcoming
	Score       *float64 `json:"score"`
}

// Option is one answer choice for a question
type Option struct {
	ID   int64  `json:"id"`
	Text string `json:"option_text"`
}

// Question is one question in a test, with its ordered options
type Question struct {
	ID      int64    `json:"id"`
	Text    string   `json:"question_text"`
	Type    string   `json:"question_type"`
	Options []Option `json:"options"`
}

// Answer pairs a question with the option the student selected
type Answer struct {
	QuestionID       int64 `json:"question"`
	SelectedOptionID int64 `json:"selected_option"`
}

// Submission is the payload sent when an attempt is turned in.
// Unanswered questions are simply omitted; partial submission is allowed.
type Submission struct {
	TestID  int64    `json:"test"`
	Answers []Answer `json:"answers"`
}

// NewTest is the payload for creating a test
type NewTest struct {
	Title       string `json:"title"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
}

// StudentStats is the aggregate statistics block for the student dashboard
type StudentStats struct {
	TotalTestsTaken     int     `json:"total_tests_taken"`
	AverageScore        float64 `json:"average_score"`
	TotalTestsAvailable int     `json:"total_tests_available"`
}

// AttemptRecord is one row of the local attempt journal: a successfully
// submitted attempt, kept client-side for the student's own history.
type AttemptRecord struct {
	ID            string    `json:"id"`
	TestID        int64     `json:"test_id"`
	TestTitle     string    `json:"test_title"`
	AnsweredCount int       `json:"answered_count"`
	QuestionCount int       `json:"question_count"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// AnsweredPercent returns how much of the test was answered, 0-100
func (r *AttemptRecord) AnsweredPercent() int {
	if r.QuestionCount == 0 {
		return 0
	}
	return r.AnsweredCount * 100 / r.QuestionCount
}

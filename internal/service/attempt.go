package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"testdash/internal/backend"
	"testdash/internal/models"
	"testdash/internal/store"
)

var (
	// ErrNoActiveAttempt is returned when no attempt is in progress
	ErrNoActiveAttempt = errors.New("no active attempt")

	// ErrTestNotAvailable is returned when a test cannot be taken: it does
	// not exist, could not be loaded, or has no questions. This is terminal
	// for the attempt; it is never retried automatically.
	ErrTestNotAvailable = errors.New("test not available")
)

// AttemptView is a snapshot of the active attempt for rendering
type AttemptView struct {
	TestID           int64
	Title            string
	Description      string
	Question         models.Question
	CurrentIndex     int // 0-based
	QuestionCount    int
	AnsweredCount    int
	SelectedOptionID int64 // 0 when the current question is unanswered
	RemainingSeconds int
	Submitting       bool
}

// attempt is one in-progress run through a test's question set
type attempt struct {
	id           string
	test         models.Test
	questions    []models.Question
	currentIndex int
	answers      map[int64]int64 // question id -> selected option id
	remaining    int             // seconds
	submitting   bool
	submitted    bool
	stop         chan struct{}
	stopOnce     sync.Once
}

// AttemptService runs one timed attempt at a time, from question load
// through submission. It owns the countdown; the ticking stops
// deterministically when the attempt is torn down.
type AttemptService struct {
	api     *backend.Client
	journal *store.AttemptJournal
	tick    time.Duration

	mu      sync.Mutex
	current *attempt
}

// NewAttemptService creates a new attempt service
func NewAttemptService(api *backend.Client, journal *store.AttemptJournal) *AttemptService {
	return &AttemptService{
		api:     api,
		journal: journal,
		tick:    time.Second,
	}
}

// Start loads a test and begins a new attempt, replacing any attempt already
// in progress. The test metadata and the question set are fetched as two
// independent calls; failure of either, or an empty question set, yields
// ErrTestNotAvailable (401 passes through untouched for the global policy).
func (s *AttemptService) Start(ctx context.Context, testID int64) error {
	s.Teardown()

	test, err := s.api.TestDetail(ctx, testID)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return err
		}
		log.Printf("Failed to load test %d: %v", testID, err)
		return ErrTestNotAvailable
	}

	questions, err := s.api.TestQuestions(ctx, testID)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return err
		}
		log.Printf("Failed to load questions for test %d: %v", testID, err)
		return ErrTestNotAvailable
	}
	if len(questions) == 0 {
		return ErrTestNotAvailable
	}

	a := &attempt{
		id:        uuid.New().String(),
		test:      *test,
		questions: questions,
		answers:   make(map[int64]int64),
		remaining: test.Duration * 60,
		stop:      make(chan struct{}),
	}

	s.mu.Lock()
	s.current = a
	s.mu.Unlock()

	go s.runCountdown(a)
	return nil
}

// View returns a snapshot of the active attempt for rendering
func (s *AttemptService) View() (*AttemptView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.current
	if a == nil || a.submitted {
		return nil, ErrNoActiveAttempt
	}

	question := a.questions[a.currentIndex]
	return &AttemptView{
		TestID:           a.test.ID,
		Title:            a.test.Title,
		Description:      a.test.Description,
		Question:         question,
		CurrentIndex:     a.currentIndex,
		QuestionCount:    len(a.questions),
		AnsweredCount:    len(a.answers),
		SelectedOptionID: a.answers[question.ID],
		RemainingSeconds: a.remaining,
		Submitting:       a.submitting,
	}, nil
}

// SelectAnswer records the selected option for a question, overwriting any
// prior answer. Questions outside the attempt's set are ignored.
func (s *AttemptService) SelectAnswer(questionID, optionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.current
	if a == nil || a.submitted {
		return ErrNoActiveAttempt
	}

	for _, q := range a.questions {
		if q.ID == questionID {
			a.answers[questionID] = optionID
			return nil
		}
	}
	return nil
}

// Next advances to the next question; a no-op at the last question
func (s *AttemptService) Next() error {
	return s.move(1)
}

// Previous moves back one question; a no-op at the first question
func (s *AttemptService) Previous() error {
	return s.move(-1)
}

// move shifts the current index by delta, clamped to the question range
func (s *AttemptService) move(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.current
	if a == nil || a.submitted {
		return ErrNoActiveAttempt
	}

	next := a.currentIndex + delta
	if next < 0 {
		next = 0
	}
	if next > len(a.questions)-1 {
		next = len(a.questions) - 1
	}
	a.currentIndex = next
	return nil
}

// RemainingSeconds reports the countdown for the active attempt
func (s *AttemptService) RemainingSeconds() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.submitted {
		return 0, ErrNoActiveAttempt
	}
	return s.current.remaining, nil
}

// Submit sends the recorded answers once. A call while a submission is in
// flight, or after one succeeded, is a no-op; a failed submission leaves the
// attempt retryable. Unanswered questions are omitted from the payload.
func (s *AttemptService) Submit(ctx context.Context) error {
	s.mu.Lock()
	a := s.current
	if a == nil {
		s.mu.Unlock()
		return ErrNoActiveAttempt
	}
	if a.submitted || a.submitting {
		s.mu.Unlock()
		return nil
	}
	a.submitting = true

	submission := models.Submission{
		TestID:  a.test.ID,
		Answers: make([]models.Answer, 0, len(a.answers)),
	}
	for _, q := range a.questions {
		if optionID, ok := a.answers[q.ID]; ok {
			submission.Answers = append(submission.Answers, models.Answer{
				QuestionID:       q.ID,
				SelectedOptionID: optionID,
			})
		}
	}
	s.mu.Unlock()

	if err := s.api.SubmitAttempt(ctx, submission); err != nil {
		s.mu.Lock()
		a.submitting = false
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	a.submitting = false
	a.submitted = true
	record := models.AttemptRecord{
		ID:            a.id,
		TestID:        a.test.ID,
		TestTitle:     a.test.Title,
		AnsweredCount: len(a.answers),
		QuestionCount: len(a.questions),
		SubmittedAt:   time.Now(),
	}
	s.mu.Unlock()

	if s.journal != nil {
		if err := s.journal.Record(record); err != nil {
			log.Printf("Failed to journal attempt %s: %v", record.ID, err)
		}
	}

	s.Teardown()
	return nil
}

// Teardown stops the countdown and discards the active attempt. Safe to call
// when no attempt is in progress.
func (s *AttemptService) Teardown() {
	s.mu.Lock()
	a := s.current
	s.current = nil
	s.mu.Unlock()

	if a != nil {
		a.stopOnce.Do(func() { close(a.stop) })
	}
}

// runCountdown ticks the attempt's clock down once per interval. The instant
// the countdown reaches exactly zero it submits the attempt and stops.
func (s *AttemptService) runCountdown(a *attempt) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-a.stop:
			return
		case <-ticker.C:
			expired, stale := s.tickDown(a)
			if stale {
				return
			}
			if expired {
				if err := s.Submit(context.Background()); err != nil {
					log.Printf("Auto-submit for test %d failed: %v", a.test.ID, err)
				}
				return
			}
		}
	}
}

// tickDown decrements the attempt's remaining seconds. It reports whether
// the countdown just reached zero, and whether the attempt is no longer the
// active one (torn down or submitted) so the ticker should stop silently.
func (s *AttemptService) tickDown(a *attempt) (expired, stale bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != a || a.submitted {
		return false, true
	}
	if a.remaining <= 0 {
		return false, true
	}
	a.remaining--
	return a.remaining == 0, false
}

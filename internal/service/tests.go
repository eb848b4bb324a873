package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"testdash/internal/backend"
	"testdash/internal/models"
	"testdash/internal/store"
	"testdash/internal/validation"
)

// TestService shapes platform test data for the dashboards and handles
// teacher-side test management.
type TestService struct {
	api     *backend.Client
	journal *store.AttemptJournal
}

// NewTestService creates a new test service
func NewTestService(api *backend.Client, journal *store.AttemptJournal) *TestService {
	return &TestService{api: api, journal: journal}
}

// StudentDashboard loads the student's assigned tests and statistics. A
// failed statistics call degrades to zero stats rather than failing the
// page; a 401 from either call propagates for the global policy.
func (s *TestService) StudentDashboard(ctx context.Context) ([]models.Test, *models.StudentStats, error) {
	tests, err := s.api.StudentTests(ctx)
	if err != nil {
		return nil, nil, err
	}

	stats, err := s.api.StudentStats(ctx)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return nil, nil, err
		}
		log.Printf("Failed to load student statistics: %v", err)
		stats = &models.StudentStats{}
	}

	return tests, stats, nil
}

// AllTests lists every test for the teacher dashboard
func (s *TestService) AllTests(ctx context.Context) ([]models.Test, error) {
	return s.api.AllTests(ctx)
}

// CreateTest validates and creates a new test
func (s *TestService) CreateTest(ctx context.Context, test models.NewTest) error {
	test.Title = strings.TrimSpace(test.Title)
	test.Subject = strings.TrimSpace(test.Subject)

	if err := validation.ValidateTestTitle(test.Title); err != nil {
		return err
	}
	if err := validation.ValidateDuration(test.Duration); err != nil {
		return err
	}

	return s.api.CreateTest(ctx, test)
}

// DeleteTest deletes a test
func (s *TestService) DeleteTest(ctx context.Context, id int64) error {
	return s.api.DeleteTest(ctx, id)
}

// History returns the locally journaled attempts, most recent first
func (s *TestService) History() ([]models.AttemptRecord, error) {
	if s.journal == nil {
		return nil, nil
	}
	return s.journal.List()
}

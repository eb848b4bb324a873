package service

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"testdash/internal/models"
	"testdash/internal/store"
)

// BackupData is the JSON structure for an attempt-journal export
type BackupData struct {
	Version    string                 `json:"version"`
	ExportedAt time.Time              `json:"exported_at"`
	Attempts   []models.AttemptRecord `json:"attempts"`
}

// BackupService exports and imports the local attempt journal. Credentials
// are deliberately excluded from backups.
type BackupService struct {
	journal *store.AttemptJournal
}

// NewBackupService creates a new backup service
func NewBackupService(journal *store.AttemptJournal) *BackupService {
	return &BackupService{journal: journal}
}

// Export writes the attempt journal as JSON
func (s *BackupService) Export(w io.Writer) error {
	attempts, err := s.journal.List()
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	data := BackupData{
		Version:    "1",
		ExportedAt: time.Now().UTC(),
		Attempts:   attempts,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	return nil
}

// ExportToFile writes the attempt journal to a JSON file
func (s *BackupService) ExportToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	return s.Export(f)
}

// Import reads a backup and appends its attempts to the journal. When clear
// is true the journal is emptied first.
func (s *BackupService) Import(r io.Reader, clear bool) (int, error) {
	var data BackupData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return 0, fmt.Errorf("failed to decode backup: %w", err)
	}

	if clear {
		if err := s.journal.Clear(); err != nil {
			return 0, err
		}
	}

	imported := 0
	for _, rec := range data.Attempts {
		if rec.ID == "" {
			return imported, fmt.Errorf("backup contains an attempt without an id")
		}
		if err := s.journal.Record(rec); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

// ImportFromFile reads a backup file and appends its attempts to the journal
func (s *BackupService) ImportFromFile(path string, clear bool) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	return s.Import(f, clear)
}

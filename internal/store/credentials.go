package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"testdash/internal/models"
	"testdash/internal/security"
)

// Credential entry names. Absence of any one of the three is treated as
// "no session".
const (
	credAccessToken  = "access_token"
	credRefreshToken = "refresh_token"
	credTokenExpiry  = "token_expiry"
)

// CredentialStore persists the session's token triple. Token values are
// encrypted at rest; the expiry timestamp is stored as RFC 3339 text.
// Only the session manager may use this store.
type CredentialStore struct {
	db     *DB
	keeper *security.Keeper
}

// NewCredentialStore creates a new credential store
func NewCredentialStore(db *DB, keeper *security.Keeper) *CredentialStore {
	return &CredentialStore{db: db, keeper: keeper}
}

// Save replaces the persisted credential triple
func (s *CredentialStore) Save(creds models.Credentials) error {
	sealedAccess, err := s.keeper.Seal(creds.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to seal access token: %w", err)
	}
	sealedRefresh, err := s.keeper.Seal(creds.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to seal refresh token: %w", err)
	}

	entries := map[string]string{
		credAccessToken:  sealedAccess,
		credRefreshToken: sealedRefresh,
		credTokenExpiry:  creds.ExpiresAt.UTC().Format(time.RFC3339),
	}

	tx, err := s.db.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for name, value := range entries {
		if _, err := tx.Exec(s.db.Dialect.RewriteQuery(
			"DELETE FROM credentials WHERE name = ?"), name); err != nil {
			return fmt.Errorf("failed to replace credential %s: %w", name, err)
		}
		if _, err := tx.Exec(s.db.Dialect.RewriteQuery(
			"INSERT INTO credentials (name, value, updated_at) VALUES (?, ?, ?)"),
			name, value, now); err != nil {
			return fmt.Errorf("failed to store credential %s: %w", name, err)
		}
	}

	return tx.Commit()
}

// Load reads the persisted credential triple. It returns (nil, nil) when any
// of the three entries is missing or unreadable — a partial or corrupt triple
// is the same as no session.
func (s *CredentialStore) Load() (*models.Credentials, error) {
	sealedAccess, err := s.get(credAccessToken)
	if err != nil {
		return nil, err
	}
	sealedRefresh, err := s.get(credRefreshToken)
	if err != nil {
		return nil, err
	}
	expiryText, err := s.get(credTokenExpiry)
	if err != nil {
		return nil, err
	}
	if sealedAccess == "" || sealedRefresh == "" || expiryText == "" {
		return nil, nil
	}

	access, err := s.keeper.Open(sealedAccess)
	if err != nil {
		return nil, nil
	}
	refresh, err := s.keeper.Open(sealedRefresh)
	if err != nil {
		return nil, nil
	}
	expiresAt, err := time.Parse(time.RFC3339, expiryText)
	if err != nil {
		return nil, nil
	}

	return &models.Credentials{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}

// Clear removes all persisted credential entries
func (s *CredentialStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM credentials"); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// get reads one credential entry, returning "" when it does not exist
func (s *CredentialStore) get(name string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM credentials WHERE name = ?", name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential %s: %w", name, err)
	}
	return value, nil
}

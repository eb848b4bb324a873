package store

import (
	"path/filepath"
	"testing"
	"time"

	"testdash/internal/models"
	"testdash/internal/security"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Bootstrap(); err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	return db
}

func newTestKeeper(t *testing.T) *security.Keeper {
	t.Helper()

	keeper, err := security.LoadKeeper(filepath.Join(t.TempDir(), "key"))
	if err != nil {
		t.Fatalf("LoadKeeper() error = %v", err)
	}
	return keeper
}

func TestCredentialStoreSaveLoad(t *testing.T) {
	store := NewCredentialStore(newTestDB(t), newTestKeeper(t))

	expiresAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	creds := models.Credentials{
		AccessToken:  "access-token-value",
		RefreshToken: "refresh-token-value",
		ExpiresAt:    expiresAt,
	}

	if err := store.Save(creds); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded == nil {
		t.Fatal("Load() = nil, want credentials")
	}
	if loaded.AccessToken != creds.AccessToken {
		t.Errorf("AccessToken = %q, want %q", loaded.AccessToken, creds.AccessToken)
	}
	if loaded.RefreshToken != creds.RefreshToken {
		t.Errorf("RefreshToken = %q, want %q", loaded.RefreshToken, creds.RefreshToken)
	}
	if !loaded.ExpiresAt.Equal(expiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", loaded.ExpiresAt, expiresAt)
	}
}

func TestCredentialStoreSaveOverwrites(t *testing.T) {
	store := NewCredentialStore(newTestDB(t), newTestKeeper(t))

	first := models.Credentials{
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	if err := store.Save(first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second := models.Credentials{
		AccessToken:  "new-access",
		RefreshToken: "new-refresh",
		ExpiresAt:    time.Now().Add(2 * time.Hour),
	}
	if err := store.Save(second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded == nil || loaded.AccessToken != "new-access" {
		t.Errorf("Load() after second Save() returned stale credentials: %+v", loaded)
	}
}

func TestCredentialStoreLoadEmpty(t *testing.T) {
	store := NewCredentialStore(newTestDB(t), newTestKeeper(t))

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded != nil {
		t.Errorf("Load() on an empty store = %+v, want nil", loaded)
	}
}

func TestCredentialStoreLoadPartialTriple(t *testing.T) {
	db := newTestDB(t)
	store := NewCredentialStore(db, newTestKeeper(t))

	creds := models.Credentials{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	if err := store.Save(creds); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// A triple missing one entry is the same as no session.
	if _, err := db.Exec("DELETE FROM credentials WHERE name = ?", credRefreshToken); err != nil {
		t.Fatalf("failed to remove refresh token entry: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded != nil {
		t.Errorf("Load() with a partial triple = %+v, want nil", loaded)
	}
}

func TestCredentialStoreLoadCorruptToken(t *testing.T) {
	db := newTestDB(t)
	store := NewCredentialStore(db, newTestKeeper(t))

	creds := models.Credentials{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	if err := store.Save(creds); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := db.Exec("UPDATE credentials SET value = ? WHERE name = ?",
		"not-a-sealed-value", credAccessToken); err != nil {
		t.Fatalf("failed to corrupt access token entry: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded != nil {
		t.Errorf("Load() with a corrupt token = %+v, want nil", loaded)
	}
}

func TestCredentialStoreClear(t *testing.T) {
	store := NewCredentialStore(newTestDB(t), newTestKeeper(t))

	creds := models.Credentials{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	if err := store.Save(creds); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded != nil {
		t.Errorf("Load() after Clear() = %+v, want nil", loaded)
	}
}

package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestKeeperSealOpen(t *testing.T) {
	keeper, err := LoadKeeper(filepath.Join(t.TempDir(), "key"))
	if err != nil {
		t.Fatalf("LoadKeeper() error = %v", err)
	}

	tests := []struct {
		name  string
		value string
	}{
		{name: "token", value: "eyJhbGciOiJIUzI1NiJ9.payload.sig"},
		{name: "empty string", value: ""},
		{name: "unicode", value: "héllo wörld"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := keeper.Seal(tt.value)
			if err != nil {
				t.Fatalf("Seal() error = %v", err)
			}
			if sealed == tt.value && tt.value != "" {
				t.Error("Seal() returned the plaintext unchanged")
			}

			opened, err := keeper.Open(sealed)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if opened != tt.value {
				t.Errorf("Open() = %q, want %q", opened, tt.value)
			}
		})
	}
}

func TestKeeperOpenRejectsGarbage(t *testing.T) {
	keeper, err := LoadKeeper(filepath.Join(t.TempDir(), "key"))
	if err != nil {
		t.Fatalf("LoadKeeper() error = %v", err)
	}

	tests := []struct {
		name       string
		ciphertext string
	}{
		{name: "not base64", ciphertext: "!!!"},
		{name: "too short", ciphertext: "YWJj"},
		{name: "tampered box", ciphertext: "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := keeper.Open(tt.ciphertext); err == nil {
				t.Error("Open() should fail for invalid input")
			}
		})
	}
}

func TestKeeperWrongKeyFails(t *testing.T) {
	dir := t.TempDir()

	first, err := LoadKeeper(filepath.Join(dir, "key1"))
	if err != nil {
		t.Fatalf("LoadKeeper() error = %v", err)
	}
	second, err := LoadKeeper(filepath.Join(dir, "key2"))
	if err != nil {
		t.Fatalf("LoadKeeper() error = %v", err)
	}

	sealed, err := first.Seal("secret")
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	if _, err := second.Open(sealed); err == nil {
		t.Error("Open() with a different key should fail")
	}
}

func TestLoadKeeperReusesKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")

	first, err := LoadKeeper(path)
	if err != nil {
		t.Fatalf("LoadKeeper() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("key file was not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("key file permissions = %o, want 600", perm)
	}

	sealed, err := first.Seal("secret")
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	// A second load from the same path must decrypt values sealed by the first.
	second, err := LoadKeeper(path)
	if err != nil {
		t.Fatalf("LoadKeeper() error = %v", err)
	}
	opened, err := second.Open(sealed)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if opened != "secret" {
		t.Errorf("Open() = %q, want %q", opened, "secret")
	}
}

func TestLoadKeeperRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("not a key"), 0o600); err != nil {
		t.Fatalf("failed to write corrupt key file: %v", err)
	}

	if _, err := LoadKeeper(path); err == nil {
		t.Error("LoadKeeper() should fail for a corrupt key file")
	}
}

package security

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/nacl/secretbox"
)

const keySize = 32

// Keeper encrypts and decrypts stored credential values with a
// machine-local secret key. The refresh token is a long-lived credential;
// it never touches disk in the clear.
type Keeper struct {
	key [keySize]byte
}

// LoadKeeper reads the key file at path, generating a new key with 0600
// permissions when none exists.
func LoadKeeper(path string) (*Keeper, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return createKeeper(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil || len(raw) != keySize {
		return nil, fmt.Errorf("key file %s is corrupt", path)
	}

	k := &Keeper{}
	copy(k.key[:], raw)
	return k, nil
}

// createKeeper generates a fresh key and writes it to path
func createKeeper(path string) (*Keeper, error) {
	k := &Keeper{}
	if _, err := io.ReadFull(rand.Reader, k.key[:]); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(k.key[:])
	if err := os.WriteFile(path, []byte(encoded), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}

	return k, nil
}

// Seal encrypts a value for storage. The nonce is prepended to the box and
// the whole blob is base64-encoded.
func (k *Keeper) Seal(plaintext string) (string, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &k.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal
func (k *Keeper) Open(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("stored value is not valid base64: %w", err)
	}
	if len(raw) < 24 {
		return "", errors.New("stored value is too short")
	}

	var nonce [24]byte
	copy(nonce[:], raw[:24])

	opened, ok := secretbox.Open(nil, raw[24:], &nonce, &k.key)
	if !ok {
		return "", errors.New("stored value failed to decrypt")
	}
	return string(opened), nil
}

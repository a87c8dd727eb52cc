// Package keychain implements walletmgr.SecretStorage on top of a single
// encrypted file. Secrets are sealed with AES-256-GCM under a key derived
// from a local passphrase via scrypt, so the plaintext mnemonic never
// touches disk.
package keychain

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/donutlabs/walletcore/internal/walletmgr"

	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt parameters tuned for interactive use: key derivation stays
	// under ~100ms on commodity hardware while keeping brute force costly.
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32

	saltLen  = 32
	nonceLen = 12

	fileVersion = 1
)

// sealedEntry is one encrypted secret. Salt and nonce are drawn fresh on
// every write, so re-sealing the same plaintext never reuses a nonce.
type sealedEntry struct {
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}

// sealedFile is the on-disk envelope.
type sealedFile struct {
	Version int                    `json:"version"`
	Entries map[string]sealedEntry `json:"entries"`
}

// Store is a file backed walletmgr.SecretStorage.
type Store struct {
	path       string
	passphrase []byte
}

// Ensure compile-time compliance with the walletmgr.SecretStorage interface.
var _ walletmgr.SecretStorage = (*Store)(nil)

// New creates a keychain store writing to path. The passphrase protects
// every secret put into the store; the caller owns the slice and should
// zero it when the store is no longer needed.
func New(path string, passphrase []byte) *Store {
	return &Store{
		path:       path,
		passphrase: passphrase,
	}
}

// Put seals the secret and rewrites the keychain file. A policy requiring a
// passcode is refused when no passphrase was provisioned, mirroring a device
// keychain that cannot protect secrets without a lock screen credential.
func (s *Store) Put(ctx context.Context, key, secret string, policy walletmgr.AccessPolicy) error {
	if err := ctx.Err(); err != nil {
		return storageFailure(err)
	}

	if policy.RequirePasscode && len(s.passphrase) == 0 {
		return storageFailure(errors.New("policy requires a passcode but none is provisioned"))
	}

	file, err := s.readFile()
	if err != nil {
		return storageFailure(err)
	}

	entry, err := s.seal([]byte(secret))
	if err != nil {
		return storageFailure(err)
	}

	file.Entries[key] = entry
	if err := s.writeFile(file); err != nil {
		return storageFailure(err)
	}

	return nil
}

// Get unseals the secret stored under key. A missing file or a missing
// entry reports absence, not failure.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, storageFailure(err)
	}

	file, err := s.readFile()
	if err != nil {
		return "", false, storageFailure(err)
	}

	entry, ok := file.Entries[key]
	if !ok {
		return "", false, nil
	}

	plaintext, err := s.open(entry)
	if err != nil {
		return "", false, storageFailure(err)
	}

	return string(plaintext), true, nil
}

// Delete removes the entry stored under key. When the last entry goes, the
// file goes with it.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return storageFailure(err)
	}

	file, err := s.readFile()
	if err != nil {
		return storageFailure(err)
	}

	if _, ok := file.Entries[key]; !ok {
		return nil
	}
	delete(file.Entries, key)

	if len(file.Entries) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return storageFailure(err)
		}
		return nil
	}

	if err := s.writeFile(file); err != nil {
		return storageFailure(err)
	}

	return nil
}

func (s *Store) seal(plaintext []byte) (sealedEntry, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return sealedEntry{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return sealedEntry{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := s.cipher(salt)
	if err != nil {
		return sealedEntry{}, err
	}

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	return sealedEntry{
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

func (s *Store) open(entry sealedEntry) ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(entry.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	nonce, err := base64.StdEncoding.DecodeString(entry.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(entry.CipherText)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	aesGCM, err := s.cipher(salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.New("failed to unseal secret: wrong passphrase or corrupt keychain")
	}

	return plaintext, nil
}

func (s *Store) cipher(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(s.passphrase, salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return aesGCM, nil
}

func (s *Store) readFile() (sealedFile, error) {
	file := sealedFile{
		Version: fileVersion,
		Entries: make(map[string]sealedEntry),
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil
		}
		return file, fmt.Errorf("failed to read keychain file: %w", err)
	}

	if err := json.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("failed to parse keychain file: %w", err)
	}
	if file.Entries == nil {
		file.Entries = make(map[string]sealedEntry)
	}

	return file, nil
}

// writeFile replaces the keychain atomically: a torn write must never leave
// a half encrypted file behind.
func (s *Store) writeFile(file sealedFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal keychain file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write keychain file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace keychain file: %w", err)
	}

	return nil
}

func storageFailure(err error) error {
	if errors.Is(err, walletmgr.ErrStorageUnavailable) {
		return err
	}
	return errors.Join(walletmgr.ErrStorageUnavailable, err)
}

// EnsureDir creates the keychain file's parent directory so a first Put on
// a fresh config path does not fail.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o700)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/ptutor-tui/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	keySize    = 32
	saltSize   = 16
	secretSize = 32
)

// storeMagic prefixes every session file: magic | salt | nonce | ciphertext.
var storeMagic = []byte("PTS1")

// Iterations is the PBKDF2 round count used to derive the file key.
var Iterations = 210000

// ErrCorruptSession is returned when the session file cannot be decrypted.
var ErrCorruptSession = errors.New("session file is corrupt or was written by another install")

// Record is what gets persisted between runs.
type Record struct {
	User         User      `json:"user"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Store keeps a Record encrypted on disk. The key is derived from a random
// per-install secret that lives next to the session file.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store writing to path. The secret is kept at path+".key".
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the session file location.
func (s *Store) Path() string { return s.path }

func (s *Store) secretPath() string { return s.path + ".key" }

// Save encrypts and atomically writes rec.
func (s *Store) Save(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plaintext, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshal session")
	}

	secret, err := s.secret(true)
	if err != nil {
		return err
	}
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return errors.Wrap(err, "generate salt")
	}
	gcm, err := newGCM(secret, salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return errors.Wrap(err, "generate nonce")
	}

	var buf bytes.Buffer
	buf.Write(storeMagic)
	buf.Write(salt)
	buf.Write(nonce)
	buf.Write(gcm.Seal(nil, nonce, plaintext, storeMagic))

	return util.WriteFileAtomic(s.path, buf.Bytes(), 0600, 0700)
}

// Load reads the stored record. A missing file yields (nil, nil).
func (s *Store) Load() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read session")
	}

	secret, err := s.secret(false)
	if err != nil {
		return nil, err
	}
	if len(data) < len(storeMagic)+saltSize || !bytes.Equal(data[:len(storeMagic)], storeMagic) {
		return nil, ErrCorruptSession
	}
	data = data[len(storeMagic):]
	salt, data := data[:saltSize], data[saltSize:]

	gcm, err := newGCM(secret, salt)
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return nil, ErrCorruptSession
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, storeMagic)
	if err != nil {
		return nil, ErrCorruptSession
	}

	var rec Record
	if err := json.Unmarshal(plaintext, &rec); err != nil {
		return nil, ErrCorruptSession
	}
	return &rec, nil
}

// Clear removes the session file. The secret is kept for the next sign-in.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "remove session")
	}
	return nil
}

// secret reads the install secret, creating it when create is set.
func (s *Store) secret(create bool) ([]byte, error) {
	data, err := os.ReadFile(s.secretPath())
	if err == nil && len(data) == secretSize {
		return data, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "read session key")
	}
	if !create {
		return nil, ErrCorruptSession
	}

	secret := make([]byte, secretSize)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return nil, errors.Wrap(err, "generate session key")
	}
	if err := os.MkdirAll(filepath.Dir(s.secretPath()), 0700); err != nil {
		return nil, errors.Wrap(err, "create session dir")
	}
	if err := util.WriteFileAtomic(s.secretPath(), secret, 0600, 0700); err != nil {
		return nil, errors.Wrap(err, "write session key")
	}
	return secret, nil
}

func newGCM(secret, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(secret, salt, Iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "create cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "create GCM")
	}
	return gcm, nil
}

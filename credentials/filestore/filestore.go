// Package filestore keeps the credential pair in a passphrase-encrypted file.
//
// File layout: magic (4) | salt (16) | nonce (24) | secretbox(JSON map).
// The key is derived with Argon2id. Every write uses a fresh nonce and replaces
// the file atomically.
package filestore

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-auth-client/credentials"
	apperrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var magic = []byte("GAC1")

var _ credentials.KV = (*FileStore)(nil)

type FileStore struct {
	path       string
	passphrase []byte

	mu   sync.Mutex
	salt []byte
	key  *[keySize]byte
}

// New returns a store backed by path. The file is created on first write.
func New(path, passphrase string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("filestore: path is required")
	}
	if passphrase == "" {
		return nil, errors.New("filestore: passphrase is required")
	}
	return &FileStore{path: path, passphrase: []byte(passphrase)}, nil
}

// NewStore is a convenience that wraps the file in a credentials.Store.
func NewStore(path, passphrase string) (credentials.Store, error) {
	fs, err := New(path, passphrase)
	if err != nil {
		return nil, err
	}
	return credentials.NewKeyedStore(fs), nil
}

func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.save(values)
}

// load must be called with mu held. A missing file is an empty store.
func (f *FileStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "FileStore.load ReadFile")
	}

	headerSize := len(magic) + saltSize + nonceSize
	if len(raw) < headerSize+secretbox.Overhead || !bytes.Equal(raw[:len(magic)], magic) {
		return nil, apperrors.ErrCorruptCredentialBox
	}
	salt := raw[len(magic) : len(magic)+saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], raw[len(magic)+saltSize:headerSize])

	key := f.deriveKey(salt)
	plain, ok := secretbox.Open(nil, raw[headerSize:], &nonce, key)
	if !ok {
		return nil, apperrors.ErrWrongPassphrase
	}

	values := map[string]string{}
	if err := json.Unmarshal(plain, &values); err != nil {
		return nil, apperrors.ErrCorruptCredentialBox
	}
	return values, nil
}

// save must be called with mu held.
func (f *FileStore) save(values map[string]string) error {
	plain, err := json.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "FileStore.save Marshal")
	}

	if f.salt == nil {
		salt := make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return errors.Wrap(err, "FileStore.save salt")
		}
		f.deriveKey(salt)
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return errors.Wrap(err, "FileStore.save nonce")
	}

	out := make([]byte, 0, len(magic)+saltSize+nonceSize+len(plain)+secretbox.Overhead)
	out = append(out, magic...)
	out = append(out, f.salt...)
	out = append(out, nonce[:]...)
	out = secretbox.Seal(out, plain, &nonce, f.key)

	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return errors.Wrap(err, "FileStore.save MkdirAll")
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return errors.Wrap(err, "FileStore.save WriteFile")
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "FileStore.save Rename")
	}
	return nil
}

// deriveKey caches the key for the current salt.
func (f *FileStore) deriveKey(salt []byte) *[keySize]byte {
	if f.key != nil && bytes.Equal(f.salt, salt) {
		return f.key
	}
	derived := argon2.IDKey(f.passphrase, salt, argonTime, argonMemory, argonThreads, keySize)
	var key [keySize]byte
	copy(key[:], derived)
	f.salt = append([]byte(nil), salt...)
	f.key = &key
	return f.key
}

package credentials

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

// ServiceID names the credential entry, like a keychain service.
const ServiceID = "com.kanso.stats-gateway"

var (
	ErrPassphraseRequired = errors.New("credential passphrase is required")
	ErrDecryptFailed      = errors.New("credential file cannot be opened with this passphrase")
)

var _ domain.CredentialStore = (*FileStore)(nil)

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32
)

type sealedFile struct {
	Service string `json:"service"`
	Salt    []byte `json:"salt"`
	Nonce   []byte `json:"nonce"`
	Box     []byte `json:"box"`
	UserID  string `json:"user_id,omitempty"`
}

// FileStore seals the token with secretbox under a key derived from a
// passphrase with scrypt. Every save uses a fresh salt and nonce.
type FileStore struct {
	path       string
	passphrase []byte
	mu         sync.Mutex
}

func NewFileStore(dir, passphrase string) (*FileStore, error) {
	if passphrase == "" {
		return nil, ErrPassphraseRequired
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("credentials: create dir: %w", err)
	}
	return &FileStore{
		path:       filepath.Join(dir, ServiceID+".cred"),
		passphrase: []byte(passphrase),
	}, nil
}

func (s *FileStore) deriveKey(salt []byte) (*[keySize]byte, error) {
	raw, err := scrypt.Key(s.passphrase, salt, 1<<15, 8, 1, keySize)
	if err != nil {
		return nil, fmt.Errorf("credentials: derive key: %w", err)
	}
	var key [keySize]byte
	copy(key[:], raw)
	return &key, nil
}

func (s *FileStore) read() (*sealedFile, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrCredentialMissing
	}
	if err != nil {
		return nil, fmt.Errorf("credentials: read: %w", err)
	}

	var f sealedFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("credentials: corrupted file: %w", err)
	}
	if f.Service != ServiceID || len(f.Nonce) != nonceSize {
		return nil, fmt.Errorf("credentials: unexpected file format")
	}
	return &f, nil
}

func (s *FileStore) write(f *sealedFile) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("credentials: encode: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("credentials: write: %w", err)
	}
	return nil
}

func (s *FileStore) GetToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return "", err
	}

	key, err := s.deriveKey(f.Salt)
	if err != nil {
		return "", err
	}
	var nonce [nonceSize]byte
	copy(nonce[:], f.Nonce)

	plain, ok := secretbox.Open(nil, f.Box, &nonce, key)
	if !ok {
		return "", ErrDecryptFailed
	}
	return string(plain), nil
}

func (s *FileStore) SaveToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("credentials: salt: %w", err)
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return fmt.Errorf("credentials: nonce: %w", err)
	}

	key, err := s.deriveKey(salt)
	if err != nil {
		return err
	}

	return s.write(&sealedFile{
		Service: ServiceID,
		Salt:    salt,
		Nonce:   nonce[:],
		Box:     secretbox.Seal(nil, []byte(token), &nonce, key),
	})
}

// SaveUserID records who the stored token belongs to. The id is kept in the
// envelope next to the sealed token and goes away with it.
func (s *FileStore) SaveUserID(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return err
	}
	f.UserID = userID
	return s.write(f)
}

func (s *FileStore) GetUserID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return "", err
	}
	if f.UserID == "" {
		return "", domain.ErrCredentialMissing
	}
	return f.UserID, nil
}

func (s *FileStore) DeleteToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("credentials: delete: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
)

var _ domain.UnlockedBadgeRepository = (*FileUnlockedBadgeRepository)(nil)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

type unlockedFile struct {
	UserID    string    `json:"user_id"`
	Badges    []string  `json:"badges"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileUnlockedBadgeRepository keeps one JSON document per user under dir.
type FileUnlockedBadgeRepository struct {
	dir string
	mu  sync.Mutex
}

func NewFileUnlockedBadgeRepository(dir string) (*FileUnlockedBadgeRepository, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("repository: create badge dir: %w", err)
	}
	return &FileUnlockedBadgeRepository{dir: dir}, nil
}

func (r *FileUnlockedBadgeRepository) path(userID string) string {
	return filepath.Join(r.dir, "unlocked_"+unsafeFileChars.ReplaceAllString(userID, "_")+".json")
}

func (r *FileUnlockedBadgeRepository) Load(ctx context.Context, userID string) (domain.UnlockedBadgeSet, error) {
	if userID == "" {
		return nil, domain.ErrUserIDEmpty
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read(userID)
}

func (r *FileUnlockedBadgeRepository) read(userID string) (domain.UnlockedBadgeSet, error) {
	data, err := os.ReadFile(r.path(userID))
	if errors.Is(err, os.ErrNotExist) {
		return domain.NewUnlockedBadgeSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("repository: read unlocked badges: %w", err)
	}

	var doc unlockedFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("repository: corrupted unlocked badges file: %w", err)
	}
	return domain.NewUnlockedBadgeSet(doc.Badges...), nil
}

// Save writes through a temp file and rename so a crash never leaves a
// truncated document behind.
func (r *FileUnlockedBadgeRepository) Save(ctx context.Context, userID string, ids domain.UnlockedBadgeSet) error {
	if userID == "" {
		return domain.ErrUserIDEmpty
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.read(userID)
	if err != nil {
		return err
	}

	doc := unlockedFile{
		UserID:    userID,
		Badges:    existing.Union(ids).IDs(),
		UpdatedAt: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("repository: encode unlocked badges: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, ".unlocked-*")
	if err != nil {
		return fmt.Errorf("repository: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("repository: write unlocked badges: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("repository: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path(userID)); err != nil {
		return fmt.Errorf("repository: replace unlocked badges: %w", err)
	}
	return nil
}

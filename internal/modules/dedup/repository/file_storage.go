package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/samber/oops"
)

// FileStorage implements Repository using one JSON file per post id. It
// stands in for redis on single-host deployments.
type FileStorage struct {
	basePath string
	now      func() time.Time
	mu       sync.RWMutex
}

type fileRecord struct {
	UpdatedAt int64     `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewFileStorage creates a new file-based dedup repository
func NewFileStorage(basePath string) (*FileStorage, error) {
	return NewFileStorageWithClock(basePath, time.Now)
}

// NewFileStorageWithClock is NewFileStorage with an injectable clock.
func NewFileStorageWithClock(basePath string, now func() time.Time) (*FileStorage, error) {
	dedupPath := filepath.Join(basePath, "dedup")
	if err := os.MkdirAll(dedupPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create dedup directory").Wrap(err)
	}

	return &FileStorage{basePath: dedupPath, now: now}, nil
}

func (s *FileStorage) path(postID int64) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%d.json", postID))
}

func (s *FileStorage) Get(_ context.Context, postID int64) (int64, bool, error) {
	s.mu.RLock()
	rec, found, err := s.read(postID)
	s.mu.RUnlock()
	if err != nil || !found {
		return 0, false, err
	}
	if !s.expired(rec) {
		return rec.UpdatedAt, true, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A Set may have replaced the record since the read.
	rec, found, err = s.read(postID)
	if err != nil || !found {
		return 0, false, err
	}
	if !s.expired(rec) {
		return rec.UpdatedAt, true, nil
	}
	_ = os.Remove(s.path(postID))
	return 0, false, nil
}

func (s *FileStorage) read(postID int64) (fileRecord, bool, error) {
	data, err := os.ReadFile(s.path(postID))
	if err != nil {
		if os.IsNotExist(err) {
			return fileRecord{}, false, nil
		}
		return fileRecord{}, false, oops.With("key", Key(postID), "context", "failed to read dedup record").Wrap(err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fileRecord{}, false, oops.With("key", Key(postID), "context", "failed to unmarshal dedup record").Wrap(err)
	}
	return rec, true, nil
}

func (s *FileStorage) expired(rec fileRecord) bool {
	return !rec.ExpiresAt.IsZero() && !s.now().Before(rec.ExpiresAt)
}

// Set writes the record; a ttl of zero keeps it forever.
func (s *FileStorage) Set(_ context.Context, postID int64, updatedAt int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := fileRecord{UpdatedAt: updatedAt}
	if ttl > 0 {
		rec.ExpiresAt = s.now().Add(ttl)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return oops.With("key", Key(postID), "context", "failed to marshal dedup record").Wrap(err)
	}

	return os.WriteFile(s.path(postID), data, 0644)
}

func (s *FileStorage) Close() error {
	return nil
}

package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/delivery/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// FileStorage implements Repository using file system
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStorage creates a new file-based delivery repository
func NewFileStorage(basePath string) (*FileStorage, error) {
	deliveryPath := filepath.Join(basePath, "deliveries")
	if err := os.MkdirAll(deliveryPath, 0755); err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to create deliveries directory").Wrap(err)
	}

	return &FileStorage{basePath: deliveryPath}, nil
}

// SaveDelivery writes the record named by delivery time so a directory
// listing is chronological. A resend of the same unit gets a new file.
func (s *FileStorage) SaveDelivery(delivery *domain.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := fmt.Sprintf("%020d-%d.json", delivery.DeliveredAt.UnixNano(), delivery.ID)
	data, err := json.MarshalIndent(delivery, "", "  ")
	if err != nil {
		return oops.With("delivery_id", delivery.ID, "context", "failed to marshal delivery").Wrap(err)
	}

	return os.WriteFile(filepath.Join(s.basePath, name), data, 0644)
}

// GetDeliveries returns up to limit deliveries, most recent first. Only
// the newest files are decoded; a limit of zero or less reads them all.
func (s *FileStorage) GetDeliveries(limit int) ([]*domain.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names, err := s.listNames()
	if err != nil {
		return nil, err
	}

	deliveries := make([]*domain.Delivery, 0, len(names))
	for _, name := range names {
		if limit > 0 && len(deliveries) == limit {
			break
		}

		data, err := os.ReadFile(filepath.Join(s.basePath, name))
		if err != nil {
			continue
		}

		var delivery domain.Delivery
		if err := json.Unmarshal(data, &delivery); err != nil {
			continue
		}
		deliveries = append(deliveries, &delivery)
	}
	return deliveries, nil
}

// DeleteBefore removes deliveries made before cutoff and returns how many
// were removed. Only file names are inspected.
func (s *FileStorage) DeleteBefore(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.listNames()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range names {
		nanos, _ := deliveredAtOf(name)
		if nanos >= cutoff.UnixNano() {
			continue
		}
		if err := os.Remove(filepath.Join(s.basePath, name)); err != nil && !os.IsNotExist(err) {
			return removed, oops.With("file", name, "context", "failed to remove delivery").Wrap(err)
		}
		removed++
	}
	return removed, nil
}

// listNames returns the delivery file names, most recent first. Names that
// do not carry a delivery timestamp are ignored.
func (s *FileStorage) listNames() ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, oops.With("directory", s.basePath, "context", "failed to read deliveries directory").Wrap(err)
	}

	names := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (string, bool) {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			return "", false
		}
		_, ok := deliveredAtOf(entry.Name())
		return entry.Name(), ok
	})

	// The zero padded prefix makes lexical order chronological.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func deliveredAtOf(name string) (int64, bool) {
	prefix, _, found := strings.Cut(name, "-")
	if !found || len(prefix) != 20 {
		return 0, false
	}
	nanos, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, false
	}
	return nanos, true
}

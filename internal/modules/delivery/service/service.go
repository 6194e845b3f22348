package service

import (
	"log/slog"
	"time"

	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/delivery/domain"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/delivery/repository"
	postDomain "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/post/domain"
)

// Service keeps the history of confirmed deliveries
type Service struct {
	repo      repository.Repository
	retention time.Duration
	now       func() time.Time
}

// New creates a new delivery service. Deliveries older than retention are
// pruned after each Record; zero keeps them forever.
func New(repo repository.Repository, retention time.Duration) *Service {
	return &Service{
		repo:      repo,
		retention: retention,
		now:       time.Now,
	}
}

// Record saves a delivery of unit and prunes expired history.
func (s *Service) Record(unit postDomain.Unit) error {
	if len(unit) == 0 {
		return nil
	}

	now := s.now()
	if err := s.repo.SaveDelivery(domain.FromUnit(unit, now)); err != nil {
		return err
	}

	if s.retention > 0 {
		removed, err := s.repo.DeleteBefore(now.Add(-s.retention))
		if err != nil {
			slog.Warn("Failed to prune delivery history", "error", err)
		} else if removed > 0 {
			slog.Debug("Pruned delivery history", "removed", removed)
		}
	}
	return nil
}

// GetDeliveries retrieves the latest deliveries
func (s *Service) GetDeliveries(limit int) ([]*domain.Delivery, error) {
	return s.repo.GetDeliveries(limit)
}

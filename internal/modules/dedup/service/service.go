package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/dedup/repository"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/post/domain"
	apperrors "github.com/reshetovitsme/yandere-telegram-feed/internal/shared/errors"
	"github.com/samber/oops"
)

// Service decides whether a publish unit was already delivered and records
// deliveries.
type Service struct {
	repo          repository.Repository
	ttl           time.Duration
	updatedResend bool
}

// New creates a new dedup service. With updatedResend a post counts as
// delivered only while its stored timestamp is not older than the current
// updated_at; without it any stored record means delivered.
func New(repo repository.Repository, ttl time.Duration, updatedResend bool) *Service {
	return &Service{
		repo:          repo,
		ttl:           ttl,
		updatedResend: updatedResend,
	}
}

// IsDelivered reports whether every member of unit was delivered. A failed
// read counts as not delivered.
func (s *Service) IsDelivered(ctx context.Context, unit domain.Unit) bool {
	for _, post := range unit {
		if !s.isPostDelivered(ctx, post) {
			return false
		}
	}
	slog.Debug("All posts of unit already delivered", "post_ids", unit.IDs())
	return true
}

func (s *Service) isPostDelivered(ctx context.Context, post domain.Post) bool {
	stored, found, err := s.repo.Get(ctx, post.ID())
	if err != nil {
		err = oops.In("dedup").Code(apperrors.ErrorKindCacheReadFailed.String()).With("post_id", post.ID()).
			Wrap(fmt.Errorf("%w: %w", apperrors.ErrCacheReadFailed, err))
		slog.Error("Cache read failed, treating post as not delivered", "post_id", post.ID(), "error", err, "kind", apperrors.ErrorKindCacheReadFailed)
		return false
	}

	if !found {
		slog.Debug("Post not delivered yet", "post_id", post.ID())
		return false
	}

	if s.updatedResend && stored < post.UpdatedAt() {
		slog.Debug("Post updated since delivery, sending again",
			"post_id", post.ID(), "delivered_updated_at", stored, "updated_at", post.UpdatedAt())
		return false
	}

	slog.Debug("Post already delivered", "post_id", post.ID())
	return true
}

// Commit writes a dedup record for every member. Failures do not stop the
// remaining writes and nothing already written is rolled back; the joined
// error wraps ErrCacheWriteFailed.
func (s *Service) Commit(ctx context.Context, unit domain.Unit) error {
	var errs []error
	var failed []int64
	for _, post := range unit {
		if err := s.repo.Set(ctx, post.ID(), post.UpdatedAt(), s.ttl); err != nil {
			slog.Error("Cache write failed", "post_id", post.ID(), "error", err, "kind", apperrors.ErrorKindCacheWriteFailed)
			errs = append(errs, err)
			failed = append(failed, post.ID())
			continue
		}
		slog.Debug("Recorded delivery", "key", repository.Key(post.ID()), "updated_at", post.UpdatedAt())
	}

	if len(errs) > 0 {
		return oops.In("dedup").Code(apperrors.ErrorKindCacheWriteFailed.String()).With("failed_post_ids", failed).
			Wrap(fmt.Errorf("%w: %w", apperrors.ErrCacheWriteFailed, errors.Join(errs...)))
	}
	return nil
}

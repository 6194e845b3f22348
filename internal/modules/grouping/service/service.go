package service

import (
	"context"
	"log/slog"

	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/post/domain"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/shared/errors"
)

// PostLookup is the secondary lookup capability the resolver needs.
type PostLookup interface {
	ByID(ctx context.Context, id int64) (domain.Post, error)
	ChildrenOf(ctx context.Context, id int64) ([]domain.Post, error)
}

// Service resolves a feed entry into the unit that gets published.
type Service struct {
	lookup PostLookup
}

// New creates a new grouping service
func New(lookup PostLookup) *Service {
	return &Service{lookup: lookup}
}

// Resolve returns the publish unit for post: the children set of its parent,
// its own children set, or the post alone. Every failed or empty lookup
// falls back to the post alone.
func (s *Service) Resolve(ctx context.Context, post domain.Post) domain.Unit {
	if parentID, ok := post.ParentID(); ok {
		parent, err := s.lookup.ByID(ctx, parentID)
		if err != nil {
			slog.Warn("Parent lookup failed, sending post alone",
				"post_id", post.ID(), "parent_id", parentID, "error", err, "kind", errors.KindOf(err))
			return domain.Single(post)
		}
		return s.childrenOr(ctx, parent.ID(), post)
	}

	if post.HasChildren() {
		return s.childrenOr(ctx, post.ID(), post)
	}

	slog.Debug("Post has no parent or children", "post_id", post.ID())
	return domain.Single(post)
}

func (s *Service) childrenOr(ctx context.Context, id int64, fallback domain.Post) domain.Unit {
	children, err := s.lookup.ChildrenOf(ctx, id)
	if err != nil {
		slog.Warn("Children lookup failed, sending post alone",
			"post_id", fallback.ID(), "group_id", id, "error", err, "kind", errors.KindOf(err))
		return domain.Single(fallback)
	}

	unit := domain.NewUnit(children...)
	if len(unit) == 0 {
		slog.Debug("No children found, sending post alone", "post_id", fallback.ID(), "group_id", id)
		return domain.Single(fallback)
	}

	slog.Debug("Resolved group", "post_id", fallback.ID(), "group_id", id, "members", unit.IDs())
	return unit
}

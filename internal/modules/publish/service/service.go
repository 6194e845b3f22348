package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	postDomain "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/post/domain"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/publish/domain"
	apperrors "github.com/reshetovitsme/yandere-telegram-feed/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// MaxGroupSize is the largest group a single send may carry.
const MaxGroupSize = 10

// Sender delivers one media group. A rate limited send must return a
// *errors.RateLimitError.
type Sender interface {
	SendGroup(ctx context.Context, items []domain.Item) error
}

// Service sends publish units through a Sender.
type Service struct {
	sender       Sender
	formatter    postDomain.CaptionFormatter
	policy       RetryPolicy
	maxGroupSize int
	sendInterval time.Duration
	sleep        Sleeper
}

type Option func(*Service)

func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithMaxGroupSize sets the chunk size, clamped to 1..MaxGroupSize.
func WithMaxGroupSize(n int) Option {
	return func(s *Service) { s.maxGroupSize = lo.Clamp(n, 1, MaxGroupSize) }
}

// WithSendInterval pauses before every group send to stay clear of flood
// limits.
func WithSendInterval(d time.Duration) Option {
	return func(s *Service) { s.sendInterval = d }
}

func WithSleeper(sleep Sleeper) Option {
	return func(s *Service) { s.sleep = sleep }
}

// New creates a new publish service
func New(sender Sender, formatter postDomain.CaptionFormatter, opts ...Option) *Service {
	s := &Service{
		sender:       sender,
		formatter:    formatter,
		policy:       DefaultRetryPolicy,
		maxGroupSize: MaxGroupSize,
		sleep:        Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Items builds the ordered group items for unit.
func (s *Service) Items(unit postDomain.Unit) []domain.Item {
	return lo.Map(unit, func(p postDomain.Post, _ int) domain.Item {
		return domain.Item{
			PostID:   p.ID(),
			MediaURL: p.SampleURL(),
			Caption:  p.Caption(s.formatter),
		}
	})
}

// Publish sends unit as consecutive groups of at most maxGroupSize items.
// The first group that fails ends the attempt; groups sent before it stay
// delivered.
func (s *Service) Publish(ctx context.Context, unit postDomain.Unit) error {
	if len(unit) == 0 {
		return nil
	}

	chunks := lo.Chunk(s.Items(unit), s.maxGroupSize)
	for i, chunk := range chunks {
		if s.sendInterval > 0 {
			if err := s.sleep(ctx, s.sendInterval); err != nil {
				return oops.In("publish").Wrap(err)
			}
		}

		err := s.policy.Do(ctx, s.sleep, func(ctx context.Context) error {
			return s.sender.SendGroup(ctx, chunk)
		})
		if err != nil {
			if i > 0 {
				slog.Warn("Unit partially delivered", "post_ids", unit.IDs(), "sent_groups", i, "total_groups", len(chunks))
			}
			return s.wrap(err, unit, i, len(chunks))
		}

		slog.Debug("Sent media group", "group", i+1, "of", len(chunks), "size", len(chunk))
	}

	return nil
}

func (s *Service) wrap(err error, unit postDomain.Unit, group, total int) error {
	kind := apperrors.ErrorKindTransportError
	if errors.Is(err, apperrors.ErrRateLimited) {
		kind = apperrors.ErrorKindRateLimited
	} else if !errors.Is(err, apperrors.ErrTransport) {
		err = fmt.Errorf("%w: %w", apperrors.ErrTransport, err)
	}
	return oops.In("publish").Code(kind.String()).
		With("post_ids", unit.IDs(), "group", group+1, "total_groups", total).
		Wrap(err)
}

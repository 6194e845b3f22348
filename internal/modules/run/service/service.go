package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	postDomain "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/post/domain"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/run/domain"
	apperrors "github.com/reshetovitsme/yandere-telegram-feed/internal/shared/errors"
	"github.com/samber/oops"
)

// FeedSource fetches and parses the popular page.
type FeedSource interface {
	Feed(ctx context.Context) ([]postDomain.Post, error)
}

type Resolver interface {
	Resolve(ctx context.Context, post postDomain.Post) postDomain.Unit
}

type Gateway interface {
	IsDelivered(ctx context.Context, unit postDomain.Unit) bool
	Commit(ctx context.Context, unit postDomain.Unit) error
}

type Publisher interface {
	Publish(ctx context.Context, unit postDomain.Unit) error
}

// Recorder keeps the delivery history. Failures are logged only.
type Recorder interface {
	Record(unit postDomain.Unit) error
}

// Service runs one tick at a time over the feed.
type Service struct {
	source         FeedSource
	resolver       Resolver
	gateway        Gateway
	publisher      Publisher
	recorder       Recorder
	scoreThreshold int
	now            func() time.Time

	running atomic.Bool

	mu         sync.RWMutex
	progress   domain.Progress
	lastReport *domain.Report
}

// New creates a new run service
func New(source FeedSource, resolver Resolver, gateway Gateway, publisher Publisher, scoreThreshold int) *Service {
	return &Service{
		source:         source,
		resolver:       resolver,
		gateway:        gateway,
		publisher:      publisher,
		scoreThreshold: scoreThreshold,
		now:            time.Now,
		progress:       domain.Progress{State: domain.StateIdle},
	}
}

// SetRecorder sets the delivery history recorder
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

// Progress returns the current state of the orchestrator.
func (s *Service) Progress() domain.Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// LastReport returns the report of the last finished tick, or nil.
func (s *Service) LastReport() *domain.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastReport == nil {
		return nil
	}
	r := *s.lastReport
	return &r
}

// Running reports whether a tick is in progress.
func (s *Service) Running() bool {
	return s.running.Load()
}

// Run executes one tick: fetch the feed, then process every entry in feed
// order. Only a feed failure fails the tick; entry failures are logged and
// counted. A call made while another tick runs returns ErrTickInProgress.
func (s *Service) Run(ctx context.Context) (domain.Report, error) {
	if !s.TryStart() {
		slog.Warn("Tick skipped, previous tick still running")
		return domain.Report{}, apperrors.ErrTickInProgress
	}
	return s.RunClaimed(ctx)
}

// TryStart claims the tick slot. A successful claim must be followed by
// RunClaimed, which releases it.
func (s *Service) TryStart() bool {
	return s.running.CompareAndSwap(false, true)
}

// RunClaimed executes a tick claimed with TryStart.
func (s *Service) RunClaimed(ctx context.Context) (report domain.Report, err error) {
	defer s.running.Store(false)

	report = domain.Report{StartedAt: s.now()}
	defer func() {
		report.FinishedAt = s.now()
		s.mu.Lock()
		s.progress = domain.Progress{State: domain.StateIdle}
		s.lastReport = &report
		s.mu.Unlock()
	}()

	s.setProgress(domain.StateFetching, 0, 0)
	posts, err := s.source.Feed(ctx)
	if err != nil {
		err = oops.In("run").Code(apperrors.ErrorKindFeedFetchFailed.String()).Wrap(err)
		slog.Error("Feed fetch failed, aborting tick", "error", err, "kind", apperrors.ErrorKindFeedFetchFailed)
		report.Error = err.Error()
		return report, err
	}

	report.Total = len(posts)
	slog.Info("Tick started", "posts", len(posts))

	for i, post := range posts {
		if err := ctx.Err(); err != nil {
			slog.Warn("Tick cancelled", "processed", i, "total", len(posts))
			report.Error = err.Error()
			return report, err
		}

		s.setProgress(domain.StateProcessing, i+1, len(posts))
		slog.Info("Processing post", "index", i+1, "total", len(posts), "post_id", post.ID())

		switch s.process(ctx, post) {
		case outcomeFiltered:
			report.Filtered++
		case outcomeSkipped:
			report.Skipped++
		case outcomePublished:
			report.Published++
		case outcomeFailed:
			report.Failed++
		}
	}

	slog.Info("Tick finished",
		"total", report.Total, "filtered", report.Filtered, "skipped", report.Skipped,
		"published", report.Published, "failed", report.Failed)
	return report, nil
}

type outcome int

const (
	outcomeFiltered outcome = iota
	outcomeSkipped
	outcomePublished
	outcomeFailed
)

func (s *Service) process(ctx context.Context, post postDomain.Post) outcome {
	if post.BelowThreshold(s.scoreThreshold) {
		slog.Info("Post filtered because of low score", "post_id", post.ID(), "score", post.Score(), "score_threshold", s.scoreThreshold)
		return outcomeFiltered
	}

	unit := s.resolver.Resolve(ctx, post)

	if s.gateway.IsDelivered(ctx, unit) {
		slog.Info("Unit already delivered", "post_id", post.ID(), "post_ids", unit.IDs())
		return outcomeSkipped
	}

	if err := s.publisher.Publish(ctx, unit); err != nil {
		slog.Error("Publish failed", "post_id", post.ID(), "post_ids", unit.IDs(), "error", err, "kind", apperrors.KindOf(err))
		return outcomeFailed
	}
	slog.Info("Unit published", "post_id", post.ID(), "post_ids", unit.IDs())

	if err := s.gateway.Commit(ctx, unit); err != nil {
		slog.Error("Commit failed, unit may be sent again", "post_ids", unit.IDs(), "error", err, "kind", apperrors.KindOf(err))
	}

	if s.recorder != nil {
		if err := s.recorder.Record(unit); err != nil {
			slog.Error("Failed to record delivery", "post_ids", unit.IDs(), "error", err)
		}
	}

	return outcomePublished
}

func (s *Service) setProgress(state domain.State, index, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = domain.Progress{State: state, Index: index, Total: total}
}

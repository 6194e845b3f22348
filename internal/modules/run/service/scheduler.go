package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	apperrors "github.com/reshetovitsme/yandere-telegram-feed/internal/shared/errors"
	"github.com/robfig/cron/v3"
	"github.com/samber/oops"
)

// Scheduler triggers Run on a cron expression. Expressions may carry a
// leading seconds field.
type Scheduler struct {
	cron         *cron.Cron
	svc          *Service
	runAtStartup bool
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// NewScheduler validates the cron expression and prepares the job
func NewScheduler(expr string, svc *Service, runAtStartup bool) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	logger := slogCronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(logger),
			cron.WithChain(cron.SkipIfStillRunning(logger)),
		),
		svc:          svc,
		runAtStartup: runAtStartup,
		ctx:          ctx,
		cancel:       cancel,
	}

	if _, err := s.cron.AddFunc(expr, s.tick); err != nil {
		cancel()
		return nil, oops.With("scheduler", expr).Wrap(fmt.Errorf("%w: %w", apperrors.ErrInvalidSchedule, err))
	}
	return s, nil
}

// Start begins the schedule, running one tick immediately when configured.
func (s *Scheduler) Start() {
	if s.runAtStartup {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			slog.Info("Running initial tick on startup")
			s.tick()
		}()
	}
	s.cron.Start()
	slog.Info("Scheduler started", "next", s.Next())
}

// Stop cancels a running tick and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
	slog.Info("Scheduler stopped")
}

// Next returns the next scheduled activation as text, or "" before Start.
func (s *Scheduler) Next() string {
	entries := s.cron.Entries()
	if len(entries) == 0 || entries[0].Next.IsZero() {
		return ""
	}
	return entries[0].Next.String()
}

// Trigger runs a tick in the background. It returns ErrTickInProgress when
// one is already running.
func (s *Scheduler) Trigger() error {
	if !s.svc.TryStart() {
		return apperrors.ErrTickInProgress
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, err := s.svc.RunClaimed(s.ctx)
		logTickError(err)
	}()
	return nil
}

func (s *Scheduler) tick() {
	_, err := s.svc.Run(s.ctx)
	logTickError(err)
}

func logTickError(err error) {
	if err != nil && !errors.Is(err, apperrors.ErrTickInProgress) {
		slog.Error("Tick failed", "error", err, "kind", apperrors.KindOf(err))
	}
}

// slogCronLogger adapts cron's logger to slog.
type slogCronLogger struct{}

func (slogCronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}

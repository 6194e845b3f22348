package service

import (
	"context"
	"testing"
	"time"

	postDomain "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/post/domain"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/post/posttest"
	apperrors "github.com/reshetovitsme/yandere-telegram-feed/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler_Specs(t *testing.T) {
	svc := New(&stubSource{}, &singleResolver{}, &memGateway{}, &stubPublisher{}, 0)

	for _, spec := range []string{"0 0 0,9,12,15,18,21 * * *", "*/5 * * * *", "@hourly"} {
		s, err := NewScheduler(spec, svc, false)
		require.NoError(t, err, spec)
		s.Stop()
	}

	_, err := NewScheduler("not a cron", svc, false)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSchedule)
}

func TestScheduler_RunAtStartup(t *testing.T) {
	publisher := &stubPublisher{}
	source := &stubSource{posts: []postDomain.Post{posttest.New(t, 1)}}
	svc := New(source, &singleResolver{}, &memGateway{delivered: map[int64]bool{}}, publisher, 0)

	s, err := NewScheduler("@yearly", svc, true)
	require.NoError(t, err)
	s.Start()
	assert.NotEmpty(t, s.Next())

	require.Eventually(t, func() bool { return svc.LastReport() != nil }, 5*time.Second, 10*time.Millisecond)
	s.Stop()

	assert.Equal(t, 1, svc.LastReport().Published)
}

func TestScheduler_TriggerWhileRunning(t *testing.T) {
	source := &stubSource{block: make(chan struct{}), enter: make(chan struct{})}
	svc := New(source, &singleResolver{}, &memGateway{delivered: map[int64]bool{}}, &stubPublisher{}, 0)

	s, err := NewScheduler("@yearly", svc, false)
	require.NoError(t, err)

	require.NoError(t, s.Trigger())
	<-source.enter
	assert.ErrorIs(t, s.Trigger(), apperrors.ErrTickInProgress)

	close(source.block)
	s.Stop()
	_, err = svc.Run(context.Background())
	assert.NoError(t, err)
}

func TestScheduler_TriggerTwiceBackToBack(t *testing.T) {
	source := &stubSource{block: make(chan struct{})}
	svc := New(source, &singleResolver{}, &memGateway{delivered: map[int64]bool{}}, &stubPublisher{}, 0)

	s, err := NewScheduler("@yearly", svc, false)
	require.NoError(t, err)

	first := s.Trigger()
	second := s.Trigger()

	assert.NoError(t, first)
	assert.ErrorIs(t, second, apperrors.ErrTickInProgress)
	assert.True(t, svc.Running())

	close(source.block)
	s.Stop()
	assert.False(t, svc.Running())
	require.NotNil(t, svc.LastReport())
}

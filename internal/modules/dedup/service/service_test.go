package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/dedup/repository"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/post/domain"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/post/posttest"
	apperrors "github.com/reshetovitsme/yandere-telegram-feed/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	values   map[int64]int64
	ttls     map[int64]time.Duration
	getErr   map[int64]error
	setErr   map[int64]error
	getCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		values: map[int64]int64{},
		ttls:   map[int64]time.Duration{},
		getErr: map[int64]error{},
		setErr: map[int64]error{},
	}
}

func (r *fakeRepo) Get(_ context.Context, id int64) (int64, bool, error) {
	r.getCalls++
	if err := r.getErr[id]; err != nil {
		return 0, false, err
	}
	v, ok := r.values[id]
	return v, ok, nil
}

func (r *fakeRepo) Set(_ context.Context, id int64, updatedAt int64, ttl time.Duration) error {
	if err := r.setErr[id]; err != nil {
		return err
	}
	r.values[id] = updatedAt
	r.ttls[id] = ttl
	return nil
}

func (r *fakeRepo) Close() error { return nil }

func TestIsDelivered_NoRecord(t *testing.T) {
	s := New(newFakeRepo(), time.Hour, false)
	assert.False(t, s.IsDelivered(context.Background(), posttest.Unit(t, 1, 1)))
}

func TestIsDelivered_Idempotent(t *testing.T) {
	repo := newFakeRepo()
	repo.values[1] = 1000
	s := New(repo, time.Hour, false)
	unit := posttest.Unit(t, 1, 2)

	first := s.IsDelivered(context.Background(), unit)
	second := s.IsDelivered(context.Background(), unit)
	assert.Equal(t, first, second)
	assert.False(t, first)
}

func TestIsDelivered_RequiresEveryMember(t *testing.T) {
	repo := newFakeRepo()
	repo.values[1] = 1000
	repo.values[2] = 1000
	s := New(repo, time.Hour, false)

	assert.True(t, s.IsDelivered(context.Background(), posttest.Unit(t, 1, 2)))
	assert.False(t, s.IsDelivered(context.Background(), posttest.Unit(t, 1, 3)))
}

func TestIsDelivered_ResendPolicy(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	repo.values[1] = 1000
	updated := domain.Single(posttest.New(t, 1, posttest.UpdatedAt(2000)))
	same := domain.Single(posttest.New(t, 1, posttest.UpdatedAt(1000)))

	assert.True(t, New(repo, time.Hour, false).IsDelivered(ctx, updated))

	withResend := New(repo, time.Hour, true)
	assert.False(t, withResend.IsDelivered(ctx, updated))
	assert.True(t, withResend.IsDelivered(ctx, same))
}

func TestIsDelivered_ReadFailureFailsOpen(t *testing.T) {
	repo := newFakeRepo()
	repo.values[1] = 1000
	repo.getErr[1] = errors.New("connection reset")
	s := New(repo, time.Hour, false)

	assert.False(t, s.IsDelivered(context.Background(), posttest.Unit(t, 1, 1)))
}

func TestCommit_WritesEveryMember(t *testing.T) {
	repo := newFakeRepo()
	s := New(repo, 90*time.Second, false)
	unit := domain.NewUnit(
		posttest.New(t, 1, posttest.UpdatedAt(11)),
		posttest.New(t, 2, posttest.UpdatedAt(22)),
	)

	require.NoError(t, s.Commit(context.Background(), unit))
	assert.Equal(t, map[int64]int64{1: 11, 2: 22}, repo.values)
	assert.Equal(t, 90*time.Second, repo.ttls[2])
	assert.True(t, s.IsDelivered(context.Background(), unit))
}

func TestCommit_PartialFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.setErr[2] = errors.New("OOM command not allowed")
	s := New(repo, time.Hour, false)

	err := s.Commit(context.Background(), posttest.Unit(t, 1, 3))

	assert.ErrorIs(t, err, apperrors.ErrCacheWriteFailed)
	assert.Equal(t, apperrors.ErrorKindCacheWriteFailed, apperrors.KindOf(err))
	assert.Contains(t, repo.values, int64(1))
	assert.Contains(t, repo.values, int64(3))
	assert.NotContains(t, repo.values, int64(2))
}

func TestCommit_RoundTripWithTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	repo, err := repository.NewFileStorageWithClock(t.TempDir(), clock)
	require.NoError(t, err)

	ttl := time.Hour
	s := New(repo, ttl, true)
	unit := posttest.Unit(t, 1, 3)
	ctx := context.Background()

	require.False(t, s.IsDelivered(ctx, unit))
	require.NoError(t, s.Commit(ctx, unit))

	for _, elapsed := range []time.Duration{0, time.Minute, ttl - time.Second} {
		now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(elapsed)
		for _, post := range unit {
			assert.True(t, s.IsDelivered(ctx, domain.Single(post)), "post %d at +%s", post.ID(), elapsed)
		}
	}

	now = now.Add(time.Second)
	assert.False(t, s.IsDelivered(ctx, unit))
}

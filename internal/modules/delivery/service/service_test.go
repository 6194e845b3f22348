package service

import (
	"testing"
	"time"

	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/delivery/repository"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/post/posttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	repo, err := repository.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	s := New(repo, 0)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	unit := posttest.Unit(t, 100, 2)
	require.NoError(t, s.Record(unit))
	require.NoError(t, s.Record(nil))

	got, err := s.GetDeliveries(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(100), got[0].ID)
	assert.Equal(t, []int64{100, 101}, got[0].PostIDs)
	assert.Equal(t, "https://yande.re/post/show/101", got[0].Items[1].ShowURL)
	assert.Equal(t, "s", got[0].Items[0].Rating)
}

func TestRecord_PrunesExpiredHistory(t *testing.T) {
	repo, err := repository.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	s := New(repo, 24*time.Hour)

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	require.NoError(t, s.Record(posttest.Unit(t, 100, 1)))

	now = now.Add(25 * time.Hour)
	require.NoError(t, s.Record(posttest.Unit(t, 200, 1)))

	got, err := s.GetDeliveries(0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(200), got[0].ID)
}

package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/delivery/domain"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_SaveAndList(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir)
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []int64{10, 20, 30} {
		require.NoError(t, s.SaveDelivery(&domain.Delivery{
			ID:          id,
			PostIDs:     []int64{id},
			DeliveredAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deliveries", "garbage.json"), []byte("{"), 0644))

	all, err := s.GetDeliveries(0)
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 20, 10}, lo.Map(all, func(d *domain.Delivery, _ int) int64 { return d.ID }))

	limited, err := s.GetDeliveries(2)
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 20}, lo.Map(limited, func(d *domain.Delivery, _ int) int64 { return d.ID }))
}

func TestFileStorage_LimitSkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir)
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveDelivery(&domain.Delivery{ID: 1, DeliveredAt: base}))
	require.NoError(t, s.SaveDelivery(&domain.Delivery{ID: 2, DeliveredAt: base.Add(time.Hour)}))
	corrupt := filepath.Join(dir, "deliveries", fmt.Sprintf("%020d-3.json", base.Add(2*time.Hour).UnixNano()))
	require.NoError(t, os.WriteFile(corrupt, []byte("{"), 0644))

	got, err := s.GetDeliveries(2)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, lo.Map(got, func(d *domain.Delivery, _ int) int64 { return d.ID }))
}

func TestFileStorage_DeleteBefore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir)
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []int64{10, 20, 30} {
		require.NoError(t, s.SaveDelivery(&domain.Delivery{ID: id, DeliveredAt: base.Add(time.Duration(i) * time.Hour)}))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deliveries", "notes.json"), []byte("{}"), 0644))

	removed, err := s.DeleteBefore(base.Add(90 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	left, err := s.GetDeliveries(0)
	require.NoError(t, err)
	assert.Equal(t, []int64{30}, lo.Map(left, func(d *domain.Delivery, _ int) int64 { return d.ID }))
	assert.FileExists(t, filepath.Join(dir, "deliveries", "notes.json"))
}

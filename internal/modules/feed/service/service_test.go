package service

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	deliveryDomain "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/delivery/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	deliveries []*deliveryDomain.Delivery
	err        error
	limit      int
}

func (s *stubLister) GetDeliveries(limit int) ([]*deliveryDomain.Delivery, error) {
	s.limit = limit
	return s.deliveries, s.err
}

func TestGenerateFeed(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	lister := &stubLister{deliveries: []*deliveryDomain.Delivery{{
		ID:      100,
		PostIDs: []int64{100, 101},
		Items: []deliveryDomain.Item{
			{PostID: 100, ShowURL: "https://yande.re/post/show/100", SampleURL: "https://files.yande.re/sample/100.jpg", Source: "https://pixiv.net/a?b=1&c=2", Tags: []string{"dress", "sky"}},
			{PostID: 101, ShowURL: "https://yande.re/post/show/101", SampleURL: "https://files.yande.re/sample/101.jpg"},
		},
		DeliveredAt: at,
	}}}

	feed, err := New(lister, "@yandere_pop").GenerateFeed("http://localhost:8080")
	require.NoError(t, err)

	assert.Equal(t, DefaultLimit, lister.limit)
	assert.Equal(t, "http://localhost:8080/rss", feed.Link.Href)
	assert.Equal(t, at, feed.Updated)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "Post 100 (+1)", feed.Items[0].Title)
	assert.Equal(t, "https://yande.re/post/show/100", feed.Items[0].Link.Href)
	assert.Equal(t, "dress sky", feed.Items[0].Description)
	assert.Contains(t, feed.Items[0].Content, "https://pixiv.net/a?b=1&amp;c=2")

	rss, err := feed.ToRss()
	require.NoError(t, err)
	assert.Contains(t, rss, "<title>Post 100 (+1)</title>")
}

func TestGenerateFeed_ListError(t *testing.T) {
	_, err := New(&stubLister{err: errors.New("disk")}, "@c").GenerateFeed("http://x")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcd", 2))

	cut := truncate(strings.Repeat("a", 199)+"初音ミク", 200)
	assert.True(t, utf8.ValidString(cut))
	assert.Equal(t, strings.Repeat("a", 199)+"初...", cut)
}

// Package posttest builds posts for tests in other packages.
package posttest

import (
	"fmt"
	"testing"

	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/post/domain"
	"github.com/samber/lo"
)

type Option func(*domain.Fields)

func Score(score int) Option {
	return func(f *domain.Fields) { f.Score = score }
}

func UpdatedAt(ts int64) Option {
	return func(f *domain.Fields) { f.UpdatedAt = ts }
}

func Parent(id int64) Option {
	return func(f *domain.Fields) { f.ParentID = lo.ToPtr(id) }
}

func WithChildren() Option {
	return func(f *domain.Fields) { f.HasChildren = true }
}

func Source(source string) Option {
	return func(f *domain.Fields) { f.Source = source }
}

func Tags(tags string) Option {
	return func(f *domain.Fields) { f.Tags = tags }
}

// New builds a valid post with the given id, failing the test otherwise.
func New(t testing.TB, id int64, opts ...Option) domain.Post {
	t.Helper()
	f := domain.Fields{
		ID:        id,
		UpdatedAt: 1000,
		Score:     10,
		SampleURL: fmt.Sprintf("https://files.yande.re/sample/%d.jpg", id),
		Rating:    domain.RatingS,
	}
	for _, opt := range opts {
		opt(&f)
	}
	p, err := domain.New(f)
	if err != nil {
		t.Fatalf("posttest.New(%d): %v", id, err)
	}
	return p
}

// Unit builds a unit of plain posts with consecutive ids starting at first.
func Unit(t testing.TB, first int64, n int) domain.Unit {
	t.Helper()
	posts := make([]domain.Post, 0, n)
	for i := range n {
		posts = append(posts, New(t, first+int64(i)))
	}
	return domain.NewUnit(posts...)
}

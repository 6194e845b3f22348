package domain

import (
	"github.com/samber/lo"
)

// Unit is the ordered, non-empty set of posts delivered together as one
// message.
type Unit []Post

// NewUnit builds a unit from posts, dropping repeated ids while keeping the
// first occurrence's position. It returns nil for an empty input.
func NewUnit(posts ...Post) Unit {
	if len(posts) == 0 {
		return nil
	}
	return Unit(lo.UniqBy(posts, func(p Post) int64 { return p.ID() }))
}

// Single wraps one post.
func Single(p Post) Unit {
	return Unit{p}
}

func (u Unit) IDs() []int64 {
	return lo.Map(u, func(p Post, _ int) int64 { return p.ID() })
}

// Lead is the first post of the unit.
func (u Unit) Lead() Post {
	return u[0]
}

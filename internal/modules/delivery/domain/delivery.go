package domain

import (
	"time"

	postDomain "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/post/domain"
	"github.com/samber/lo"
)

// Delivery records one publish unit confirmed by the transport.
type Delivery struct {
	ID          int64     `json:"id"`
	PostIDs     []int64   `json:"post_ids"`
	Items       []Item    `json:"items"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// Item is a delivered post as shown in the RSS mirror.
type Item struct {
	PostID    int64    `json:"post_id"`
	ShowURL   string   `json:"show_url"`
	SampleURL string   `json:"sample_url"`
	Source    string   `json:"source,omitempty"`
	Rating    string   `json:"rating,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// FromUnit builds the delivery record of unit. The lead post's id
// identifies the delivery.
func FromUnit(unit postDomain.Unit, at time.Time) *Delivery {
	return &Delivery{
		ID:      unit.Lead().ID(),
		PostIDs: unit.IDs(),
		Items: lo.Map(unit, func(p postDomain.Post, _ int) Item {
			return Item{
				PostID:    p.ID(),
				ShowURL:   p.ShowURL(),
				SampleURL: p.SampleURL(),
				Source:    p.Source(),
				Rating:    p.Rating().String(),
				Tags:      p.TagList(),
			}
		}),
		DeliveredAt: at,
	}
}

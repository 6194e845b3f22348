package service

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	deliveryDomain "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/delivery/domain"
	"github.com/samber/oops"
)

// DefaultLimit is how many deliveries the feed carries.
const DefaultLimit = 50

// DeliveryLister is the part of the delivery service the feed reads.
type DeliveryLister interface {
	GetDeliveries(limit int) ([]*deliveryDomain.Delivery, error)
}

// Service renders the delivery history as an RSS feed
type Service struct {
	deliveries DeliveryLister
	channelID  string
}

// New creates a new feed service
func New(deliveries DeliveryLister, channelID string) *Service {
	return &Service{
		deliveries: deliveries,
		channelID:  channelID,
	}
}

// GenerateFeed builds the feed of the latest deliveries
func (s *Service) GenerateFeed(baseURL string) (*feeds.Feed, error) {
	deliveries, err := s.deliveries.GetDeliveries(DefaultLimit)
	if err != nil {
		return nil, oops.With("context", "failed to get deliveries").Wrap(err)
	}

	feed := &feeds.Feed{
		Title:       "yande.re popular recent - forwarded",
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/rss", baseURL)},
		Description: fmt.Sprintf("Posts forwarded to Telegram channel %s", s.channelID),
		Created:     time.Unix(0, 0).UTC(),
	}
	if len(deliveries) > 0 {
		feed.Updated = deliveries[0].DeliveredAt
	}

	for _, d := range deliveries {
		if len(d.Items) == 0 {
			continue
		}
		feed.Items = append(feed.Items, deliveryToFeedItem(d))
	}
	return feed, nil
}

func deliveryToFeedItem(d *deliveryDomain.Delivery) *feeds.Item {
	var content strings.Builder
	for _, item := range d.Items {
		fmt.Fprintf(&content, `<p><a href="%s"><img src="%s" alt="%d"/></a></p>`,
			html.EscapeString(item.ShowURL), html.EscapeString(item.SampleURL), item.PostID)
		if item.Source != "" {
			fmt.Fprintf(&content, `<p>Source: <a href="%s">%s</a></p>`,
				html.EscapeString(item.Source), html.EscapeString(item.Source))
		}
	}

	lead := d.Items[0]
	title := fmt.Sprintf("Post %d", d.ID)
	if len(d.Items) > 1 {
		title = fmt.Sprintf("Post %d (+%d)", d.ID, len(d.Items)-1)
	}

	return &feeds.Item{
		Title:       title,
		Link:        &feeds.Link{Href: lead.ShowURL},
		Description: truncate(strings.Join(lead.Tags, " "), 200),
		Content:     content.String(),
		Created:     d.DeliveredAt,
		Id:          fmt.Sprintf("%d-%d", d.ID, d.DeliveredAt.Unix()),
	}
}

// truncate cuts s to maxLen runes.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

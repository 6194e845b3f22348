package domain

// Item is one photo of an outgoing media group.
type Item struct {
	PostID   int64  `json:"post_id"`
	MediaURL string `json:"media_url"`
	Caption  string `json:"caption"`
}

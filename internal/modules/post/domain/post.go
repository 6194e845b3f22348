package domain

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/reshetovitsme/yandere-telegram-feed/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// ShowURLFormat is the public page of a post on yande.re.
const ShowURLFormat = "https://yande.re/post/show/%d"

// Post is one yande.re post as returned by the popular page or post.json.
// It is immutable once constructed; use New or Decode.
type Post struct {
	id             int64
	tags           string
	createdAt      int64
	updatedAt      int64
	source         string
	score          int
	md5            string
	fileSize       int64
	fileExt        string
	fileURL        string
	sampleURL      string
	sampleFileSize int64
	rating         Rating
	hasChildren    bool
	parentID       *int64
	isHeld         bool
}

// Fields carries the raw values a Post is built from.
type Fields struct {
	ID             int64
	Tags           string
	CreatedAt      int64
	UpdatedAt      int64
	Source         string
	Score          int
	MD5            string
	FileSize       int64
	FileExt        string
	FileURL        string
	SampleURL      string
	SampleFileSize int64
	Rating         Rating
	HasChildren    bool
	ParentID       *int64
	IsHeld         bool
}

// New validates f and builds a Post.
func New(f Fields) (Post, error) {
	if f.ID <= 0 {
		return Post{}, oops.In("post").With("id", f.ID).Wrapf(errors.ErrMalformedRecord, "id must be positive")
	}
	if f.SampleURL == "" {
		return Post{}, oops.In("post").With("id", f.ID).Wrapf(errors.ErrMalformedRecord, "sample_url is required")
	}
	if f.Rating != "" && !f.Rating.IsValid() {
		return Post{}, oops.In("post").With("id", f.ID, "rating", f.Rating).Wrapf(errors.ErrMalformedRecord, "unknown rating")
	}

	parentID := f.ParentID
	if parentID != nil && *parentID == f.ID {
		parentID = nil
	}
	if parentID != nil {
		parentID = lo.ToPtr(*parentID)
	}

	return Post{
		id:             f.ID,
		tags:           f.Tags,
		createdAt:      f.CreatedAt,
		updatedAt:      f.UpdatedAt,
		source:         f.Source,
		score:          f.Score,
		md5:            f.MD5,
		fileSize:       f.FileSize,
		fileExt:        f.FileExt,
		fileURL:        f.FileURL,
		sampleURL:      f.SampleURL,
		sampleFileSize: f.SampleFileSize,
		rating:         f.Rating,
		hasChildren:    f.HasChildren,
		parentID:       parentID,
		isHeld:         f.IsHeld,
	}, nil
}

// wirePost mirrors the JSON object; pointers mark the fields that must be
// present.
type wirePost struct {
	ID             *int64  `json:"id"`
	Tags           string  `json:"tags"`
	CreatedAt      int64   `json:"created_at"`
	UpdatedAt      *int64  `json:"updated_at"`
	Source         string  `json:"source"`
	Score          *int    `json:"score"`
	MD5            string  `json:"md5"`
	FileSize       int64   `json:"file_size"`
	FileExt        string  `json:"file_ext"`
	FileURL        string  `json:"file_url"`
	SampleURL      *string `json:"sample_url"`
	SampleFileSize int64   `json:"sample_file_size"`
	Rating         string  `json:"rating"`
	HasChildren    bool    `json:"has_children"`
	ParentID       *int64  `json:"parent_id"`
	IsHeld         bool    `json:"is_held"`
}

// Decode parses one JSON post object.
func Decode(data []byte) (Post, error) {
	var w wirePost
	if err := json.Unmarshal(data, &w); err != nil {
		return Post{}, oops.In("post").Wrap(fmt.Errorf("%w: %w", errors.ErrMalformedRecord, err))
	}

	var missing []string
	if w.ID == nil {
		missing = append(missing, "id")
	}
	if w.UpdatedAt == nil {
		missing = append(missing, "updated_at")
	}
	if w.Score == nil {
		missing = append(missing, "score")
	}
	if w.SampleURL == nil {
		missing = append(missing, "sample_url")
	}
	if len(missing) > 0 {
		return Post{}, oops.In("post").With("missing", missing).Wrapf(errors.ErrMalformedRecord, "missing fields: %s", strings.Join(missing, ", "))
	}

	var rating Rating
	if w.Rating != "" {
		r, err := ParseRating(w.Rating)
		if err != nil {
			return Post{}, oops.In("post").With("id", *w.ID).Wrap(fmt.Errorf("%w: %w", errors.ErrMalformedRecord, err))
		}
		rating = r
	}

	return New(Fields{
		ID:             *w.ID,
		Tags:           w.Tags,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      *w.UpdatedAt,
		Source:         w.Source,
		Score:          *w.Score,
		MD5:            w.MD5,
		FileSize:       w.FileSize,
		FileExt:        w.FileExt,
		FileURL:        w.FileURL,
		SampleURL:      *w.SampleURL,
		SampleFileSize: w.SampleFileSize,
		Rating:         rating,
		HasChildren:    w.HasChildren,
		ParentID:       w.ParentID,
		IsHeld:         w.IsHeld,
	})
}

func (p Post) ID() int64             { return p.id }
func (p Post) Tags() string          { return p.tags }
func (p Post) CreatedAt() int64      { return p.createdAt }
func (p Post) UpdatedAt() int64      { return p.updatedAt }
func (p Post) Source() string        { return p.source }
func (p Post) Score() int            { return p.score }
func (p Post) MD5() string           { return p.md5 }
func (p Post) FileSize() int64       { return p.fileSize }
func (p Post) FileExt() string       { return p.fileExt }
func (p Post) FileURL() string       { return p.fileURL }
func (p Post) SampleURL() string     { return p.sampleURL }
func (p Post) SampleFileSize() int64 { return p.sampleFileSize }
func (p Post) Rating() Rating        { return p.rating }
func (p Post) HasChildren() bool     { return p.hasChildren }
func (p Post) IsHeld() bool          { return p.isHeld }
func (p Post) ShowURL() string       { return fmt.Sprintf(ShowURLFormat, p.id) }
func (p Post) TagList() []string     { return strings.Fields(p.tags) }

// ParentID returns the parent post id and whether the post has one.
func (p Post) ParentID() (int64, bool) {
	if p.parentID == nil {
		return 0, false
	}
	return *p.parentID, true
}

// BelowThreshold reports whether the post should be filtered out.
func (p Post) BelowThreshold(threshold int) bool {
	return p.score < threshold
}

// CaptionFormatter renders the caption attached to a post's media.
type CaptionFormatter interface {
	Caption(p Post) string
}

func (p Post) Caption(f CaptionFormatter) string {
	return f.Caption(p)
}

func (p Post) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("id", p.id),
		slog.Int("score", p.score),
		slog.Int64("updated_at", p.updatedAt),
		slog.Bool("has_children", p.hasChildren),
	}
	if parentID, ok := p.ParentID(); ok {
		attrs = append(attrs, slog.Int64("parent_id", parentID))
	}
	return slog.GroupValue(attrs...)
}

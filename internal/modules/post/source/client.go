package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/post/domain"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const defaultUserAgent = "yandere-telegram-feed/1.0 (+https://github.com/reshetovitsme/yandere-telegram-feed)"

var registerPattern = regexp.MustCompile(`Post\.register\((\{.*?\})\)`)

// Client talks to yande.re: the popular page scrape and the post.json API.
type Client struct {
	httpClient *http.Client
	feedURL    string
	apiURL     string
	userAgent  string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithUserAgent(ua string) Option {
	return func(cl *Client) { cl.userAgent = ua }
}

// New creates a client for the given popular page and API base URLs.
func New(feedURL, apiURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		feedURL:    feedURL,
		apiURL:     strings.TrimRight(apiURL, "/"),
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchFeed downloads the popular page body.
func (c *Client) FetchFeed(ctx context.Context) (string, error) {
	body, err := c.get(ctx, c.feedURL)
	if err != nil {
		return "", oops.In("source").With("url", c.feedURL).Wrap(fmt.Errorf("%w: %w", errors.ErrFeedFetchFailed, err))
	}
	slog.Debug("Fetched feed", "url", c.feedURL, "bytes", len(body))
	return body, nil
}

// Feed fetches and parses the popular page.
func (c *Client) Feed(ctx context.Context) ([]domain.Post, error) {
	body, err := c.FetchFeed(ctx)
	if err != nil {
		return nil, err
	}
	return ParseFeed(body)
}

// ParseFeed extracts every Post.register({...}) object embedded in the
// page's scripts. A malformed object is logged and skipped.
func ParseFeed(body string) ([]domain.Post, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, oops.In("source").Wrap(fmt.Errorf("%w: %w", errors.ErrFeedFetchFailed, err))
	}

	var posts []domain.Post
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		for _, m := range registerPattern.FindAllStringSubmatch(s.Text(), -1) {
			post, err := domain.Decode([]byte(m[1]))
			if err != nil {
				slog.Warn("Skipping malformed feed entry", "error", err, "kind", errors.KindOf(err))
				continue
			}
			posts = append(posts, post)
		}
	})

	slog.Debug("Parsed feed", "post_ids", lo.Map(posts, func(p domain.Post, _ int) int64 { return p.ID() }))
	return posts, nil
}

// ByID looks up a single post through post.json.
func (c *Client) ByID(ctx context.Context, id int64) (domain.Post, error) {
	posts, err := c.search(ctx, fmt.Sprintf("id:%d", id))
	if err != nil {
		return domain.Post{}, err
	}
	if len(posts) == 0 {
		return domain.Post{}, oops.In("source").With("post_id", id).Wrapf(errors.ErrLookupFailed, "post not found")
	}
	slog.Debug("Fetched post", "post_id", id)
	return posts[0], nil
}

// ChildrenOf returns the posts whose parent is id, held ones first. Either
// query may fail alone; only when both fail is an error returned.
func (c *Client) ChildrenOf(ctx context.Context, id int64) ([]domain.Post, error) {
	queries := []string{
		fmt.Sprintf("parent:%d holds:true", id),
		fmt.Sprintf("parent:%d", id),
	}

	var children []domain.Post
	var errs []error
	for _, q := range queries {
		posts, err := c.search(ctx, q)
		if err != nil {
			slog.Warn("Children query failed", "post_id", id, "tags", q, "error", err)
			errs = append(errs, err)
			continue
		}
		children = append(children, posts...)
	}
	if len(errs) == len(queries) {
		return nil, oops.In("source").With("post_id", id).Wrap(errs[0])
	}

	children = lo.UniqBy(children, func(p domain.Post) int64 { return p.ID() })
	slog.Debug("Fetched children", "post_id", id, "children", lo.Map(children, func(p domain.Post, _ int) int64 { return p.ID() }))
	return children, nil
}

type searchResponse struct {
	Posts []json.RawMessage `json:"posts"`
}

func (c *Client) search(ctx context.Context, tags string) ([]domain.Post, error) {
	q := url.Values{}
	q.Set("api_version", "2")
	q.Set("tags", tags)
	target := c.apiURL + "/post.json?" + q.Encode()

	body, err := c.get(ctx, target)
	if err != nil {
		return nil, oops.In("source").With("url", target).Wrap(fmt.Errorf("%w: %w", errors.ErrLookupFailed, err))
	}

	var resp searchResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, oops.In("source").With("url", target).Wrap(fmt.Errorf("%w: %w", errors.ErrLookupFailed, err))
	}

	return lo.FilterMap(resp.Posts, func(raw json.RawMessage, _ int) (domain.Post, bool) {
		post, err := domain.Decode(raw)
		if err != nil {
			slog.Warn("Skipping malformed post in lookup", "tags", tags, "error", err)
			return domain.Post{}, false
		}
		return post, true
	}), nil
}

func (c *Client) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d from %s", res.StatusCode, target)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

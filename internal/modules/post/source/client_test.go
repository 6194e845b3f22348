package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reshetovitsme/yandere-telegram-feed/internal/modules/post/domain"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(id int64, extra string) string {
	return fmt.Sprintf(`{"id":%d,"updated_at":%d,"score":5,"sample_url":"https://files.yande.re/sample/%d.jpg","rating":"s"%s}`, id, 1000+id, id, extra)
}

func popularPage(entries ...string) string {
	body := `<html><head><title>Popular</title></head><body><ul id="post-list-posts"></ul>
<script type="text/javascript">
`
	for _, e := range entries {
		body += "Post.register(" + e + ")\n"
	}
	body += `Post.init_blacklisted();
</script></body></html>`
	return body
}

func ids(posts []domain.Post) []int64 {
	return lo.Map(posts, func(p domain.Post, _ int) int64 { return p.ID() })
}

func TestParseFeed(t *testing.T) {
	page := popularPage(
		postJSON(1, `,"has_children":true`),
		`{"id":"broken"}`,
		postJSON(3, `,"parent_id":1`),
	)

	posts, err := ParseFeed(page)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(posts))
	assert.True(t, posts[0].HasChildren())

	parentID, ok := posts[1].ParentID()
	assert.True(t, ok)
	assert.Equal(t, int64(1), parentID)
}

func TestParseFeed_Empty(t *testing.T) {
	posts, err := ParseFeed("<html><body>nothing here</body></html>")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func newTestServer(t *testing.T, search map[string]string, failing map[string]bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/post/popular_recent", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(popularPage(postJSON(10, ""), postJSON(11, ""))))
	})
	mux.HandleFunc("/post.json", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("api_version"))
		tags := r.URL.Query().Get("tags")
		if failing[tags] {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"posts":[` + search[tags] + `]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFeed(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	c := New(srv.URL+"/post/popular_recent", srv.URL)

	posts, err := c.Feed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11}, ids(posts))
}

func TestFetchFeed_Error(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	c := New(srv.URL+"/missing", srv.URL)

	_, err := c.FetchFeed(context.Background())
	assert.ErrorIs(t, err, errors.ErrFeedFetchFailed)
}

func TestByID(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"id:1121916": postJSON(1121916, `,"has_children":true`),
	}, nil)
	c := New(srv.URL, srv.URL+"/")

	post, err := c.ByID(context.Background(), 1121916)
	require.NoError(t, err)
	assert.Equal(t, int64(1121916), post.ID())
	assert.True(t, post.HasChildren())

	_, err = c.ByID(context.Background(), 404)
	assert.ErrorIs(t, err, errors.ErrLookupFailed)
}

func TestChildrenOf_MergesBothQueries(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"parent:100 holds:true": postJSON(102, `,"parent_id":100,"is_held":true`),
		"parent:100":            postJSON(100, `,"has_children":true`) + "," + postJSON(101, `,"parent_id":100`) + "," + postJSON(102, `,"parent_id":100`),
	}, nil)
	c := New(srv.URL, srv.URL)

	children, err := c.ChildrenOf(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, []int64{102, 100, 101}, ids(children))
	assert.True(t, children[0].IsHeld())
}

func TestChildrenOf_PartialFailure(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"parent:7": postJSON(8, `,"parent_id":7`),
	}, map[string]bool{"parent:7 holds:true": true})
	c := New(srv.URL, srv.URL)

	children, err := c.ChildrenOf(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{8}, ids(children))
}

func TestChildrenOf_BothFail(t *testing.T) {
	srv := newTestServer(t, nil, map[string]bool{
		"parent:7 holds:true": true,
		"parent:7":            true,
	})
	c := New(srv.URL, srv.URL)

	_, err := c.ChildrenOf(context.Background(), 7)
	assert.ErrorIs(t, err, errors.ErrLookupFailed)
}

func TestChildrenOf_Empty(t *testing.T) {
	srv := newTestServer(t, map[string]string{}, nil)
	c := New(srv.URL, srv.URL)

	children, err := c.ChildrenOf(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, children)
}

package scraper

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardscraper/pkg/checkpoint"
	"cardscraper/pkg/errors"
	"cardscraper/pkg/fetcher"
	"cardscraper/pkg/logger"
	"cardscraper/pkg/models"
	"cardscraper/pkg/ratelimit"
	"cardscraper/pkg/reddit"
	"cardscraper/pkg/storage"
)

// stubClient serves canned posts for both operations and can be told to fail
// after yielding a prefix.
type stubClient struct {
	posts       []reddit.Post
	err         error
	failAfter   int
	searchCalls int
	yielded     int
}

func (c *stubClient) stream() iter.Seq2[reddit.Post, error] {
	return func(yield func(reddit.Post, error) bool) {
		for i, post := range c.posts {
			if c.err != nil && i == c.failAfter {
				yield(reddit.Post{}, c.err)
				return
			}
			c.yielded++
			if !yield(post, nil) {
				return
			}
		}
		if c.err != nil && c.failAfter >= len(c.posts) {
			yield(reddit.Post{}, c.err)
		}
	}
}

func (c *stubClient) TopPosts(ctx context.Context, subreddit string, limit int, t reddit.TimeFilter) iter.Seq2[reddit.Post, error] {
	return c.stream()
}

func (c *stubClient) SearchPosts(ctx context.Context, subreddit, query string) iter.Seq2[reddit.Post, error] {
	c.searchCalls++
	return c.stream()
}

// newTestScraper wires a scraper around a throwaway output directory and an
// image server that answers every GET with a small payload.
func newTestScraper(t *testing.T, client reddit.Client) (*Scraper, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image-bytes"))
	}))
	t.Cleanup(server.Close)

	store, err := storage.NewManager(t.TempDir(), 8192)
	require.NoError(t, err)

	limiter := ratelimit.NewInterval(0)
	log := logger.NewTestLogger()
	s := NewWithClient(client, store, fetcher.New(store, limiter, 5*time.Second, log), log)
	return s, server
}

func imagePosts(serverURL string, n int) []reddit.Post {
	posts := make([]reddit.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, reddit.Post{
			ID:       fmt.Sprintf("post%d", i),
			Title:    fmt.Sprintf("Card %d", i),
			URL:      fmt.Sprintf("%s/img%d.png", serverURL, i),
			PostHint: reddit.HintImage,
		})
	}
	return posts
}

func TestFetchRecentCollectsOnlyImagePosts(t *testing.T) {
	client := &stubClient{}
	s, server := newTestScraper(t, client)

	posts := imagePosts(server.URL, 3)
	posts = append(posts,
		reddit.Post{ID: "text", Title: "rules question", PostHint: reddit.HintSelf},
		reddit.Post{ID: "nohint", Title: "no hint", URL: server.URL + "/x.png"},
	)
	client.posts = posts

	cards, err := s.FetchRecent(context.Background(), "custommagic", 25, reddit.TimeWeek)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	for i, card := range cards {
		assert.Equal(t, fmt.Sprintf("post%d", i), card.ID)
		assert.True(t, strings.HasSuffix(card.ImagePath, ".png"))
	}
}

func TestFetchRecentReturnsPartialResultsOnError(t *testing.T) {
	client := &stubClient{
		err:       errors.New(errors.ErrorTypeNetwork, "connection reset"),
		failAfter: 3,
	}
	s, server := newTestScraper(t, client)
	client.posts = imagePosts(server.URL, 6)

	cards, err := s.FetchRecent(context.Background(), "custommagic", 25, reddit.TimeAll)
	require.Error(t, err)
	assert.Len(t, cards, 3)
}

func TestFetchByRangeBatching(t *testing.T) {
	client := &stubClient{}
	s, server := newTestScraper(t, client)
	client.posts = imagePosts(server.URL, 5)

	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC)

	var sizes []int
	for batch := range s.FetchByRange(context.Background(), "custommagic", start, end, 2) {
		sizes = append(sizes, len(batch))
	}
	assert.Equal(t, []int{2, 2, 1}, sizes)
}

func TestFetchByRangeFlushesPartialBatchOnError(t *testing.T) {
	client := &stubClient{
		err:       errors.New(errors.ErrorTypeServerError, "search unavailable"),
		failAfter: 3,
	}
	s, server := newTestScraper(t, client)
	client.posts = imagePosts(server.URL, 6)

	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC)

	var batches []models.Batch
	for batch := range s.FetchByRange(context.Background(), "custommagic", start, end, 100) {
		batches = append(batches, batch)
	}
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 3)
}

func TestFetchByRangeSkipsDownloadedPosts(t *testing.T) {
	client := &stubClient{}
	s, server := newTestScraper(t, client)
	client.posts = imagePosts(server.URL, 3)

	_, err := s.storage.SaveImage(strings.NewReader("already here"), "post1", ".png")
	require.NoError(t, err)

	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC)

	var ids []string
	for batch := range s.FetchByRange(context.Background(), "custommagic", start, end, 10) {
		for _, card := range batch {
			ids = append(ids, card.ID)
		}
	}
	assert.Equal(t, []string{"post0", "post2"}, ids)
}

func TestFetchByRangeIsLazy(t *testing.T) {
	client := &stubClient{}
	s, server := newTestScraper(t, client)
	client.posts = imagePosts(server.URL, 10)

	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC)

	for range s.FetchByRange(context.Background(), "custommagic", start, end, 2) {
		break
	}
	assert.Equal(t, 2, client.yielded, "breaking the loop should stop the listing")
}

func TestFetchByMonthsYieldsMonthKeysAndDedupes(t *testing.T) {
	client := &stubClient{}
	s, server := newTestScraper(t, client)
	client.posts = imagePosts(server.URL, 2)

	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	var keys []time.Time
	var total int
	for month, batch := range s.FetchByMonths(context.Background(), "custommagic", 1, 10) {
		keys = append(keys, month)
		total += len(batch)
	}

	// The stub answers every monthly query with the same two posts, so only
	// the first window produces cards and later ones dedupe to nothing.
	require.Len(t, keys, 1)
	assert.Equal(t, time.June, keys[0].Month())
	assert.Equal(t, 2023, keys[0].Year())
	assert.Equal(t, 2, total)

	windows := models.MonthWindows(now.Add(-365*24*time.Hour), now)
	assert.Equal(t, len(windows), client.searchCalls)
}

func TestFetchByMonthsCheckpointResume(t *testing.T) {
	t.Setenv("CARDSCRAPER_DATA_DIR", t.TempDir())

	client := &stubClient{}
	s, server := newTestScraper(t, client)
	client.posts = imagePosts(server.URL, 2)
	s.EnableResume(true)

	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	windows := models.MonthWindows(now.Add(-365*24*time.Hour), now)

	mgr, err := checkpoint.NewManager("custommagic")
	require.NoError(t, err)
	cp, err := mgr.Create("custommagic")
	require.NoError(t, err)
	cp.CompleteMonth(windows[0].Start)
	cp.RecordDownload("post0", "post0.png")
	require.NoError(t, mgr.Save(cp))

	total := 0
	for _, batch := range s.FetchByMonths(context.Background(), "custommagic", 1, 10) {
		total += len(batch)
	}

	assert.Equal(t, len(windows)-1, client.searchCalls, "completed month should be skipped")
	assert.Equal(t, 1, total, "checkpointed post ids should not be downloaded again")
	assert.False(t, mgr.Exists(), "checkpoint should be deleted after a full scan")
}

func TestFetchByMonthsSavesCheckpointOnEarlyStop(t *testing.T) {
	t.Setenv("CARDSCRAPER_DATA_DIR", t.TempDir())

	client := &stubClient{}
	s, server := newTestScraper(t, client)
	client.posts = imagePosts(server.URL, 2)
	s.EnableResume(true)

	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	for range s.FetchByMonths(context.Background(), "custommagic", 1, 10) {
		break
	}

	mgr, err := checkpoint.NewManager("custommagic")
	require.NoError(t, err)
	cp, err := mgr.Load()
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.True(t, cp.IsDownloaded("post0"))
	assert.True(t, cp.IsDownloaded("post1"))
	assert.Empty(t, cp.LastCompletedMonth)
}

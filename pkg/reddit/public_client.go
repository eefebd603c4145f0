package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"time"

	errs "cardscraper/pkg/errors"
	"cardscraper/pkg/logger"
	"cardscraper/pkg/ratelimit"
)

const defaultBaseURL = "https://www.reddit.com"

// PublicClient talks to reddit's unauthenticated JSON endpoints. Reddit
// requires a descriptive User-Agent on this surface; the listings carry the
// real post_hint field.
type PublicClient struct {
	httpClient *http.Client
	limiter    ratelimit.Limiter
	userAgent  string
	baseURL    string
	logger     logger.Logger
}

// listingEnvelope mirrors the reddit listing JSON shape.
type listingEnvelope struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data publicPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type publicPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	URL         string  `json:"url"`
	Subreddit   string  `json:"subreddit"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	PostHint    string  `json:"post_hint"`
}

// NewPublicClient creates a client for the public JSON endpoints.
func NewPublicClient(userAgent string, limiter ratelimit.Limiter, log logger.Logger) (*PublicClient, error) {
	if userAgent == "" {
		return nil, errors.New("a user agent is required for public reddit access")
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &PublicClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    limiter,
		userAgent:  userAgent,
		baseURL:    defaultBaseURL,
		logger:     log,
	}, nil
}

// SetBaseURL points the client at a different host. Used by tests.
func (c *PublicClient) SetBaseURL(base string) {
	c.baseURL = base
}

// TopPosts streams the top posts of a subreddit, paging until limit posts
// have been yielded or the listing ends.
func (c *PublicClient) TopPosts(ctx context.Context, subreddit string, limit int, t TimeFilter) iter.Seq2[Post, error] {
	return func(yield func(Post, error) bool) {
		after := ""
		remaining := limit

		for remaining > 0 {
			n := remaining
			if n > pageSize {
				n = pageSize
			}

			endpoint := fmt.Sprintf("%s/r/%s/top.json?t=%s&limit=%d&raw_json=1",
				c.baseURL, subreddit, url.QueryEscape(string(t)), n)
			if after != "" {
				endpoint += "&after=" + url.QueryEscape(after)
			}

			posts, next, err := c.fetchPage(ctx, endpoint)
			if err != nil {
				yield(Post{}, err)
				return
			}

			for _, p := range posts {
				if !yield(p, nil) {
					return
				}
				remaining--
				if remaining == 0 {
					return
				}
			}

			if len(posts) == 0 || next == "" {
				return
			}
			after = next
		}
	}
}

// SearchPosts streams every post matching the query within the subreddit,
// newest first, following the after cursor to the end.
func (c *PublicClient) SearchPosts(ctx context.Context, subreddit, query string) iter.Seq2[Post, error] {
	return func(yield func(Post, error) bool) {
		after := ""

		for {
			endpoint := fmt.Sprintf("%s/r/%s/search.json?q=%s&restrict_sr=on&sort=new&t=all&limit=%d&raw_json=1",
				c.baseURL, subreddit, url.QueryEscape(query), pageSize)
			if after != "" {
				endpoint += "&after=" + url.QueryEscape(after)
			}

			posts, next, err := c.fetchPage(ctx, endpoint)
			if err != nil {
				yield(Post{}, err)
				return
			}

			for _, p := range posts {
				if !yield(p, nil) {
					return
				}
			}

			if len(posts) == 0 || next == "" {
				return
			}
			after = next
		}
	}
}

// fetchPage performs one rate-limited listing request.
func (c *PublicClient) fetchPage(ctx context.Context, endpoint string) ([]Post, string, error) {
	c.limiter.Wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", errs.Newf(errs.ErrorTypeUnknown, "building request: %v", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", errs.Newf(errs.ErrorTypeNetwork, "listing request failed: %v", err)
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("listing request completed", map[string]interface{}{
		"url":      endpoint,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	if resp.StatusCode != http.StatusOK {
		return nil, "", errs.FromStatusCode(resp.StatusCode,
			fmt.Sprintf("reddit returned status %d", resp.StatusCode))
	}

	var envelope listingEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, "", errs.Newf(errs.ErrorTypeParsing, "decoding listing: %v", err)
	}

	posts := make([]Post, 0, len(envelope.Data.Children))
	for _, child := range envelope.Data.Children {
		posts = append(posts, fromPublicPost(child.Data))
	}
	return posts, envelope.Data.After, nil
}

func fromPublicPost(p publicPost) Post {
	return Post{
		ID:          p.ID,
		Title:       p.Title,
		Author:      p.Author,
		URL:         p.URL,
		Subreddit:   p.Subreddit,
		Score:       p.Score,
		NumComments: p.NumComments,
		CreatedUTC:  time.Unix(int64(p.CreatedUTC), 0).UTC(),
		PostHint:    p.PostHint,
	}
}

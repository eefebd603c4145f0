package reddit

import (
	"context"
	"iter"
	"net/url"
	"path"
	"strings"

	"github.com/loganintech/go-reddit/v2/reddit"

	"cardscraper/pkg/auth"
	errs "cardscraper/pkg/errors"
	"cardscraper/pkg/logger"
	"cardscraper/pkg/ratelimit"
)

// APIClient talks to reddit through the authenticated OAuth API.
type APIClient struct {
	client  *reddit.Client
	limiter ratelimit.Limiter
	logger  logger.Logger
}

// NewAPIClient creates an authenticated client from a credential profile.
func NewAPIClient(profile *auth.Profile, limiter ratelimit.Limiter, log logger.Logger) (*APIClient, error) {
	creds := reddit.Credentials{
		ID:       profile.ClientID,
		Secret:   profile.ClientSecret,
		Username: profile.Username,
		Password: profile.Password,
	}

	userAgent := profile.UserAgent
	if userAgent == "" {
		userAgent = "cardscraper/1.0 (custom card image collector)"
	}

	client, err := reddit.NewClient(creds, reddit.WithUserAgent(userAgent))
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.GetLogger()
	}

	return &APIClient{client: client, limiter: limiter, logger: log}, nil
}

// TopPosts streams the top posts of a subreddit, paging through the API
// until limit posts have been yielded or the listing is exhausted.
func (c *APIClient) TopPosts(ctx context.Context, subreddit string, limit int, t TimeFilter) iter.Seq2[Post, error] {
	return func(yield func(Post, error) bool) {
		after := ""
		remaining := limit

		for remaining > 0 {
			c.limiter.Wait()

			n := remaining
			if n > pageSize {
				n = pageSize
			}

			opts := &reddit.ListPostOptions{
				ListOptions: reddit.ListOptions{Limit: n, After: after},
				Time:        string(t),
			}
			posts, resp, err := c.client.Subreddit.TopPosts(ctx, subreddit, opts)
			if err != nil {
				yield(Post{}, errs.Newf(errs.ErrorTypeForum, "top posts for r/%s: %v", subreddit, err))
				return
			}

			c.logger.DebugWithFields("fetched listing page", map[string]interface{}{
				"subreddit": subreddit,
				"posts":     len(posts),
				"after":     after,
			})

			for _, p := range posts {
				if !yield(fromAPIPost(p), nil) {
					return
				}
				remaining--
				if remaining == 0 {
					return
				}
			}

			if len(posts) == 0 || resp.After == "" {
				return
			}
			after = resp.After
		}
	}
}

// SearchPosts streams every post matching the query, newest first, following
// the after cursor until the API stops returning results.
func (c *APIClient) SearchPosts(ctx context.Context, subreddit, query string) iter.Seq2[Post, error] {
	return func(yield func(Post, error) bool) {
		after := ""

		for {
			c.limiter.Wait()

			opts := &reddit.ListPostSearchOptions{
				ListPostOptions: reddit.ListPostOptions{
					ListOptions: reddit.ListOptions{Limit: pageSize, After: after},
					Time:        string(TimeAll),
				},
				Sort: "new",
			}
			posts, resp, err := c.client.Subreddit.SearchPosts(ctx, query, subreddit, opts)
			if err != nil {
				yield(Post{}, errs.Newf(errs.ErrorTypeForum, "search in r/%s: %v", subreddit, err))
				return
			}

			c.logger.DebugWithFields("fetched search page", map[string]interface{}{
				"subreddit": subreddit,
				"query":     query,
				"posts":     len(posts),
				"after":     after,
			})

			for _, p := range posts {
				if !yield(fromAPIPost(p), nil) {
					return
				}
			}

			if len(posts) == 0 || resp.After == "" {
				return
			}
			after = resp.After
		}
	}
}

// fromAPIPost maps a go-reddit post onto the scraper's model. The library
// does not expose post_hint, so a hint is derived: self posts are "self",
// URLs with an image extension are "image", everything else is "link".
func fromAPIPost(p *reddit.Post) Post {
	post := Post{
		ID:          p.ID,
		Title:       p.Title,
		Author:      p.Author,
		URL:         p.URL,
		Subreddit:   p.SubredditName,
		Score:       p.Score,
		NumComments: p.NumberOfComments,
	}
	if p.Created != nil {
		post.CreatedUTC = p.Created.Time.UTC()
	}
	post.PostHint = deriveHint(p)
	return post
}

func deriveHint(p *reddit.Post) string {
	if p.IsSelfPost {
		return HintSelf
	}

	u, err := url.Parse(p.URL)
	if err != nil {
		return HintLink
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return HintImage
	}
	return HintLink
}

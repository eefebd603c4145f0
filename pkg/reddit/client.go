package reddit

import (
	"context"
	"fmt"
	"iter"
	"time"
)

// pageSize is the largest page reddit serves in one listing request.
const pageSize = 100

// Client is the forum client capability. Both operations return pull-based
// iterators that paginate internally and yield posts in the order the API
// returns them; the consumer controls pacing by advancing the loop. A failed
// page fetch is yielded once as a non-nil error after the posts already
// produced, then the sequence ends.
type Client interface {
	// TopPosts streams the top posts of a subreddit under a time filter,
	// capped at limit.
	TopPosts(ctx context.Context, subreddit string, limit int, t TimeFilter) iter.Seq2[Post, error]

	// SearchPosts streams every post of a subreddit matching the query,
	// newest first, with no local cap (the API may impose one).
	SearchPosts(ctx context.Context, subreddit, query string) iter.Seq2[Post, error]
}

// TimestampQuery builds a search expression bounding posts to the inclusive
// Unix-timestamp range [start, end], in reddit's cloudsearch syntax.
func TimestampQuery(start, end time.Time) string {
	return fmt.Sprintf("timestamp:%d..%d", start.Unix(), end.Unix())
}

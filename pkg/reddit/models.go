package reddit

import "time"

// Content-type hints reddit attaches to posts. Posts without a hint are
// treated as non-image.
const (
	HintImage = "image"
	HintLink  = "link"
	HintSelf  = "self"
	HintVideo = "hosted:video"
)

// TimeFilter is a recency bucket for listing queries. Values are passed to
// the API uninterpreted; anything outside the known set is rejected by
// reddit, not locally.
type TimeFilter string

const (
	TimeHour  TimeFilter = "hour"
	TimeDay   TimeFilter = "day"
	TimeWeek  TimeFilter = "week"
	TimeMonth TimeFilter = "month"
	TimeYear  TimeFilter = "year"
	TimeAll   TimeFilter = "all"
)

// Post is a single reddit submission as the scraper sees it.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	URL         string    `json:"url"`
	Subreddit   string    `json:"subreddit"`
	Score       int       `json:"score"`
	NumComments int       `json:"num_comments"`
	CreatedUTC  time.Time `json:"created_utc"`
	PostHint    string    `json:"post_hint,omitempty"`
}

// IsImage reports whether the post carries the image content-type hint.
// Posts lacking a hint are not image posts.
func (p Post) IsImage() bool {
	return p.PostHint == HintImage
}

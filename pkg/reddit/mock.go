package reddit

import (
	"context"
	"fmt"
	"iter"
	"time"
)

// MockClient implements Client with canned data. The zero value yields
// nothing; NewMockClient fills it with deterministic fake image posts for
// dry runs.
type MockClient struct {
	// Posts are yielded in order by both operations.
	Posts []Post

	// Err, when set, is yielded after FailAfter posts (after all posts if
	// FailAfter is negative or exceeds len(Posts)).
	Err       error
	FailAfter int
}

// NewMockClient creates a mock with a handful of fake image posts.
func NewMockClient() *MockClient {
	posts := make([]Post, 0, 8)
	base := time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		posts = append(posts, Post{
			ID:         fmt.Sprintf("mock%02d", i),
			Title:      fmt.Sprintf("Simulated custom card #%d", i),
			Author:     "simulated_user",
			URL:        fmt.Sprintf("http://localhost/mock/mock%02d.png", i),
			Subreddit:  "custom_magic",
			Score:      100 - i,
			CreatedUTC: base.Add(time.Duration(i) * time.Hour),
			PostHint:   HintImage,
		})
	}
	return &MockClient{Posts: posts, FailAfter: -1}
}

func (m *MockClient) stream(limit int) iter.Seq2[Post, error] {
	return func(yield func(Post, error) bool) {
		yielded := 0
		for _, p := range m.Posts {
			if m.Err != nil && m.FailAfter >= 0 && yielded == m.FailAfter {
				yield(Post{}, m.Err)
				return
			}
			if limit > 0 && yielded == limit {
				return
			}
			if !yield(p, nil) {
				return
			}
			yielded++
		}
		if m.Err != nil && (limit <= 0 || yielded < limit) {
			yield(Post{}, m.Err)
		}
	}
}

func (m *MockClient) TopPosts(ctx context.Context, subreddit string, limit int, t TimeFilter) iter.Seq2[Post, error] {
	return m.stream(limit)
}

func (m *MockClient) SearchPosts(ctx context.Context, subreddit, query string) iter.Seq2[Post, error] {
	return m.stream(0)
}

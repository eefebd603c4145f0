package reddit

import (
	"testing"

	"github.com/loganintech/go-reddit/v2/reddit"
)

func TestDeriveHint(t *testing.T) {
	cases := []struct {
		name string
		post *reddit.Post
		want string
	}{
		{"self post", &reddit.Post{IsSelfPost: true}, HintSelf},
		{"png url", &reddit.Post{URL: "https://i.redd.it/abc.png"}, HintImage},
		{"jpeg with query", &reddit.Post{URL: "https://i.imgur.com/abc.JPEG?x=1"}, HintImage},
		{"plain link", &reddit.Post{URL: "https://example.com/article"}, HintLink},
		{"gallery link", &reddit.Post{URL: "https://www.reddit.com/gallery/xyz"}, HintLink},
	}

	for _, c := range cases {
		if got := deriveHint(c.post); got != c.want {
			t.Errorf("%s: deriveHint = %q, want %q", c.name, got, c.want)
		}
	}
}

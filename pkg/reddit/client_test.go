package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	errs "cardscraper/pkg/errors"
	"cardscraper/pkg/logger"
	"cardscraper/pkg/ratelimit"
)

func testPublicClient(t *testing.T, handler http.Handler) (*PublicClient, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewPublicClient("cardscraper test agent", ratelimit.NewInterval(time.Millisecond), logger.NewTestLogger())
	if err != nil {
		t.Fatalf("NewPublicClient failed: %v", err)
	}
	client.SetBaseURL(server.URL)
	return client, server
}

func listingJSON(after string, ids ...string) string {
	children := ""
	for i, id := range ids {
		if i > 0 {
			children += ","
		}
		children += fmt.Sprintf(`{"data":{"id":%q,"title":"card %s","author":"u1","url":"https://i.redd.it/%s.png","subreddit":"custom_magic","score":10,"num_comments":2,"created_utc":1700000000,"post_hint":"image"}}`, id, id, id)
	}
	return fmt.Sprintf(`{"data":{"after":%q,"children":[%s]}}`, after, children)
}

func TestTimestampQuery(t *testing.T) {
	start := time.Unix(1700000000, 0)
	end := time.Unix(1700086399, 0)

	got := TimestampQuery(start, end)
	want := "timestamp:1700000000..1700086399"
	if got != want {
		t.Errorf("TimestampQuery = %q, want %q", got, want)
	}
}

func TestPublicClientTopPostsPaginates(t *testing.T) {
	requests := 0
	client, _ := testPublicClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.Header.Get("User-Agent") != "cardscraper test agent" {
			t.Errorf("Expected the configured user agent, got %q", r.Header.Get("User-Agent"))
		}
		switch r.URL.Query().Get("after") {
		case "":
			fmt.Fprint(w, listingJSON("t3_b", "a", "b"))
		case "t3_b":
			fmt.Fprint(w, listingJSON("", "c"))
		default:
			t.Errorf("Unexpected after cursor %q", r.URL.Query().Get("after"))
		}
	}))

	var ids []string
	for post, err := range client.TopPosts(context.Background(), "custom_magic", 5, TimeMonth) {
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		ids = append(ids, post.ID)
	}

	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("Expected posts [a b c] in order, got %v", ids)
	}
	if requests != 2 {
		t.Errorf("Expected 2 page requests, got %d", requests)
	}
}

func TestPublicClientTopPostsHonorsLimit(t *testing.T) {
	client, _ := testPublicClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingJSON("t3_more", "a", "b", "c"))
	}))

	count := 0
	for _, err := range client.TopPosts(context.Background(), "custom_magic", 2, TimeWeek) {
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		count++
	}
	if count != 2 {
		t.Errorf("Expected exactly 2 posts, got %d", count)
	}
}

func TestPublicClientSearchYieldsPartialThenError(t *testing.T) {
	client, _ := testPublicClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("after") == "" {
			fmt.Fprint(w, listingJSON("t3_c", "a", "b", "c"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))

	var ids []string
	var got error
	for post, err := range client.SearchPosts(context.Background(), "custom_magic", "timestamp:1..2") {
		if err != nil {
			got = err
			break
		}
		ids = append(ids, post.ID)
	}

	if len(ids) != 3 {
		t.Fatalf("Expected the 3 posts before the failure, got %v", ids)
	}
	if got == nil {
		t.Fatal("Expected an error after the failed page")
	}
	apiErr, ok := got.(*errs.Error)
	if !ok || apiErr.Type != errs.ErrorTypeServerError {
		t.Errorf("Expected a server_error, got %v", got)
	}
}

func TestPublicClientNotFound(t *testing.T) {
	client, _ := testPublicClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	for _, err := range client.TopPosts(context.Background(), "does_not_exist", 10, TimeAll) {
		if err == nil {
			t.Fatal("Expected an error for a missing subreddit")
		}
		apiErr, ok := err.(*errs.Error)
		if !ok || apiErr.Type != errs.ErrorTypeNotFound {
			t.Errorf("Expected a not_found error, got %v", err)
		}
	}
}

func TestPublicClientParsesHint(t *testing.T) {
	client, _ := testPublicClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"after":"","children":[
			{"data":{"id":"img","post_hint":"image","url":"https://i.redd.it/x.png","created_utc":1700000000}},
			{"data":{"id":"vid","post_hint":"hosted:video","created_utc":1700000000}},
			{"data":{"id":"bare","created_utc":1700000000}}
		]}}`)
	}))

	hints := map[string]bool{}
	for post, err := range client.TopPosts(context.Background(), "custom_magic", 10, TimeAll) {
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		hints[post.ID] = post.IsImage()
	}

	if !hints["img"] {
		t.Error("Expected the image-hinted post to be an image post")
	}
	if hints["vid"] {
		t.Error("Expected the video post to be excluded")
	}
	if hints["bare"] {
		t.Error("Expected the hint-less post to be excluded")
	}
}

func TestMockClientFailAfter(t *testing.T) {
	mock := NewMockClient()
	mock.Err = errs.New(errs.ErrorTypeForum, "boom")
	mock.FailAfter = 2

	var ids []string
	var got error
	for post, err := range mock.SearchPosts(context.Background(), "custom_magic", "q") {
		if err != nil {
			got = err
			break
		}
		ids = append(ids, post.ID)
	}

	if len(ids) != 2 {
		t.Errorf("Expected 2 posts before the injected error, got %d", len(ids))
	}
	if got == nil {
		t.Error("Expected the injected error to surface")
	}
}

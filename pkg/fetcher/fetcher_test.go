package fetcher

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "cardscraper/pkg/errors"
	"cardscraper/pkg/logger"
	"cardscraper/pkg/ratelimit"
	"cardscraper/pkg/storage"
)

func newTestFetcher(t *testing.T) (*Fetcher, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := storage.NewManager(dir, 8192)
	require.NoError(t, err)

	f := New(store, ratelimit.NewInterval(time.Millisecond), 5*time.Second, logger.NewTestLogger())
	return f, dir
}

func TestDownloadWritesFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("p", 10000)))
	}))
	defer server.Close()

	f, dir := newTestFetcher(t)

	path, err := f.Download(server.URL+"/cards/abc123.jpg", "abc123")
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, "abc123.jpg", filepath.Base(path))
}

func TestDownloadDefaultsToPNG(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("img"))
	}))
	defer server.Close()

	f, _ := newTestFetcher(t)

	path, err := f.Download(server.URL+"/no-extension", "xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz.png", filepath.Base(path))
}

func TestDownloadReportsStatusErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f, _ := newTestFetcher(t)

	_, err := f.Download(server.URL+"/gone.png", "gone")
	require.Error(t, err)

	apiErr, ok := err.(*errs.Error)
	require.True(t, ok, "expected a typed error, got %T", err)
	assert.Equal(t, errs.ErrorTypeNotFound, apiErr.Type)
	assert.Equal(t, http.StatusNotFound, apiErr.Code)
}

func TestDownloadReportsTransportErrors(t *testing.T) {
	f, _ := newTestFetcher(t)

	// Closed server: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := f.Download(url+"/x.png", "x")
	require.Error(t, err)

	apiErr, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.ErrorTypeNetwork, apiErr.Type)
}

func TestExtFromURL(t *testing.T) {
	cases := map[string]string{
		"https://i.redd.it/abc.png":          ".png",
		"https://i.imgur.com/a.jpeg?x=1&y=2": ".jpeg",
		"https://example.com/no-ext":         "",
		"https://example.com/":               "",
	}

	for raw, want := range cases {
		assert.Equal(t, want, ExtFromURL(raw), "url %s", raw)
	}
}

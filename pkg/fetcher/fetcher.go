package fetcher

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	errs "cardscraper/pkg/errors"
	"cardscraper/pkg/logger"
	"cardscraper/pkg/ratelimit"
	"cardscraper/pkg/storage"
)

// Fetcher downloads a single image by URL and hands the body to storage.
// Every download acquires the shared rate limiter before touching the
// network.
type Fetcher struct {
	httpClient *http.Client
	storage    *storage.Manager
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// New creates an image fetcher writing through the given storage manager.
func New(store *storage.Manager, limiter ratelimit.Limiter, timeout time.Duration, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		storage:    store,
		limiter:    limiter,
		logger:     log,
	}
}

// Download fetches imageURL and writes it to {output_dir}/{postID}{ext},
// returning the written path. The extension is taken from the URL path and
// defaults to .png. Failures come back as typed errors for the caller to log
// and skip; they never abort a batch.
func (f *Fetcher) Download(imageURL, postID string) (string, error) {
	f.limiter.Wait()

	start := time.Now()
	resp, err := f.httpClient.Get(imageURL)
	if err != nil {
		return "", errs.Newf(errs.ErrorTypeNetwork, "downloading %s: %v", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errs.FromStatusCode(resp.StatusCode,
			fmt.Sprintf("image host returned status %d for %s", resp.StatusCode, imageURL))
	}

	savedPath, err := f.storage.SaveImage(resp.Body, postID, ExtFromURL(imageURL))
	if err != nil {
		return "", errs.Newf(errs.ErrorTypeFilesystem, "saving image for post %s: %v", postID, err)
	}

	f.logger.DebugWithFields("image downloaded", map[string]interface{}{
		"post_id":  postID,
		"path":     savedPath,
		"duration": time.Since(start),
	})

	return savedPath, nil
}

// ExtFromURL derives a file extension from the path component of a URL. It
// returns an empty string when the URL has none; storage then applies the
// default.
func ExtFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return path.Ext(u.Path)
}

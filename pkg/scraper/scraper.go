package scraper

import (
	"context"
	"iter"
	"path/filepath"
	"time"

	"cardscraper/pkg/checkpoint"
	"cardscraper/pkg/config"
	"cardscraper/pkg/fetcher"
	"cardscraper/pkg/logger"
	"cardscraper/pkg/models"
	"cardscraper/pkg/ratelimit"
	"cardscraper/pkg/reddit"
	"cardscraper/pkg/storage"
)

// Scraper orchestrates the card download pipeline: forum listings and
// searches on one side, the image fetcher and local storage on the other,
// all throttled through one shared rate limiter.
type Scraper struct {
	client  reddit.Client
	storage *storage.Manager
	fetcher *fetcher.Fetcher
	limiter ratelimit.Limiter
	logger  logger.Logger
	resume  bool
	now     func() time.Time
}

// New creates a Scraper from configuration. The output directory is created
// here; failure to do so is fatal since nothing can proceed without it.
func New(cfg *config.Config) (*Scraper, error) {
	log := logger.GetLogger()
	limiter := ratelimit.NewInterval(cfg.RateLimit.RequestDelay)

	store, err := storage.NewManager(cfg.Output.BaseDirectory, cfg.Download.ChunkSize)
	if err != nil {
		return nil, err
	}

	client, err := reddit.New(cfg, limiter, log)
	if err != nil {
		return nil, err
	}

	return &Scraper{
		client:  client,
		storage: store,
		fetcher: fetcher.New(store, limiter, cfg.Download.Timeout, log),
		limiter: limiter,
		logger:  log,
		now:     time.Now,
	}, nil
}

// NewWithClient wires a scraper around an explicit forum client, storage
// manager and fetcher. Used by tests and embedders that bring their own
// collaborators.
func NewWithClient(client reddit.Client, store *storage.Manager, f *fetcher.Fetcher, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		client:  client,
		storage: store,
		fetcher: f,
		logger:  log,
		now:     time.Now,
	}
}

// EnableResume toggles checkpointing for monthly scans.
func (s *Scraper) EnableResume(resume bool) {
	s.resume = resume
}

// FetchRecent pulls the top posts of a subreddit under a time filter,
// downloads the image posts among them and returns the resulting cards in
// listing order. When the listing fails mid-stream the cards accumulated up
// to that point are returned together with the error.
func (s *Scraper) FetchRecent(ctx context.Context, subreddit string, limit int, t reddit.TimeFilter) ([]models.Card, error) {
	s.logger.InfoWithFields("fetching recent posts", map[string]interface{}{
		"subreddit":   subreddit,
		"limit":       limit,
		"time_filter": string(t),
	})

	var cards []models.Card
	for post, err := range s.client.TopPosts(ctx, subreddit, limit, t) {
		if err != nil {
			s.logger.WithError(err).ErrorWithFields("listing failed, returning partial results", map[string]interface{}{
				"subreddit": subreddit,
				"collected": len(cards),
			})
			return cards, err
		}
		if card, ok := s.collect(post); ok {
			cards = append(cards, card)
		}
	}

	s.logger.InfoWithFields("recent fetch complete", map[string]interface{}{
		"subreddit": subreddit,
		"cards":     len(cards),
	})
	return cards, nil
}

// FetchByRange searches one time window of a subreddit and streams the
// qualifying cards in batches of batchSize. The sequence is lazy: the search
// does not advance past a batch until the consumer has taken it. The last
// batch of a window may be smaller than batchSize. A search failure is
// logged and ends the sequence after flushing the pending partial batch, so
// already-fetched work is never dropped.
func (s *Scraper) FetchByRange(ctx context.Context, subreddit string, start, end time.Time, batchSize int) iter.Seq[models.Batch] {
	return func(yield func(models.Batch) bool) {
		query := reddit.TimestampQuery(start, end)

		s.logger.InfoWithFields("fetching range", map[string]interface{}{
			"subreddit":  subreddit,
			"start":      start,
			"end":        end,
			"batch_size": batchSize,
		})

		pending := make(models.Batch, 0, batchSize)
		for post, err := range s.client.SearchPosts(ctx, subreddit, query) {
			if err != nil {
				s.logger.WithError(err).ErrorWithFields("search failed, stopping range fetch", map[string]interface{}{
					"subreddit": subreddit,
					"query":     query,
					"pending":   len(pending),
				})
				break
			}

			card, ok := s.collect(post)
			if !ok {
				continue
			}

			pending = append(pending, card)
			if len(pending) == batchSize {
				if !yield(pending) {
					return
				}
				pending = make(models.Batch, 0, batchSize)
			}
		}

		if len(pending) > 0 {
			yield(pending)
		}
	}
}

// FetchByMonths walks a lookback window month by month, oldest first, and
// re-yields every batch the range fetch produces tagged with its month
// start. The lookback is yearsBack fixed 365-day years, while the month
// windows themselves use real calendar month lengths; the first window is
// the whole month containing the lookback start. With resume enabled,
// completed months are checkpointed and skipped on the next run.
func (s *Scraper) FetchByMonths(ctx context.Context, subreddit string, yearsBack, batchSize int) iter.Seq2[time.Time, models.Batch] {
	return func(yield func(time.Time, models.Batch) bool) {
		now := s.now().UTC()
		from := now.Add(-time.Duration(yearsBack) * 365 * 24 * time.Hour)

		mgr, cp := s.openCheckpoint(subreddit)

		for _, window := range models.MonthWindows(from, now) {
			if cp != nil && cp.MonthCompleted(window.Start) {
				s.logger.InfoWithFields("skipping completed month", map[string]interface{}{
					"subreddit": subreddit,
					"month":     window.Start.Format("2006-01"),
				})
				continue
			}

			for batch := range s.FetchByRange(ctx, subreddit, window.Start, window.End, batchSize) {
				if cp != nil {
					for _, card := range batch {
						cp.RecordDownload(card.ID, filepath.Base(card.ImagePath))
					}
				}
				if !yield(window.Start, batch) {
					if mgr != nil {
						s.saveCheckpoint(mgr, cp)
					}
					return
				}
			}

			if mgr != nil {
				cp.CompleteMonth(window.Start)
				s.saveCheckpoint(mgr, cp)
			}
		}

		if mgr != nil {
			if err := mgr.Delete(); err != nil {
				s.logger.WithError(err).Warn("failed to delete checkpoint")
			} else {
				s.logger.InfoWithFields("checkpoint deleted after completed scan", map[string]interface{}{
					"subreddit": subreddit,
				})
			}
		}
	}
}

// collect filters a post and, for image posts not yet on disk, downloads its
// image. A card exists only once the file is fully written; any download
// failure is logged and the post skipped.
func (s *Scraper) collect(post reddit.Post) (models.Card, bool) {
	if !post.IsImage() {
		s.logger.DebugWithFields("skipping non-image post", map[string]interface{}{
			"post_id": post.ID,
			"hint":    post.PostHint,
		})
		return models.Card{}, false
	}

	if s.storage.IsDownloaded(post.ID) {
		s.logger.DebugWithFields("skipping already downloaded post", map[string]interface{}{
			"post_id": post.ID,
		})
		return models.Card{}, false
	}

	path, err := s.fetcher.Download(post.URL, post.ID)
	if err != nil {
		s.logger.WithError(err).ErrorWithFields("image download failed", map[string]interface{}{
			"post_id": post.ID,
			"url":     post.URL,
		})
		return models.Card{}, false
	}

	return models.Card{
		ID:         post.ID,
		Title:      post.Title,
		URL:        post.URL,
		CreatedUTC: post.CreatedUTC,
		ImagePath:  path,
	}, true
}

// openCheckpoint loads or creates the resume state when resume is enabled.
// Checkpoint trouble degrades to a plain scan rather than failing it.
func (s *Scraper) openCheckpoint(subreddit string) (*checkpoint.Manager, *checkpoint.Checkpoint) {
	if !s.resume {
		return nil, nil
	}

	mgr, err := checkpoint.NewManager(subreddit)
	if err != nil {
		s.logger.WithError(err).Warn("resume disabled: cannot open checkpoint store")
		return nil, nil
	}

	cp, err := mgr.Load()
	if err != nil {
		s.logger.WithError(err).Warn("resume disabled: cannot load checkpoint")
		return nil, nil
	}
	if cp == nil {
		cp, err = mgr.Create(subreddit)
		if err != nil {
			s.logger.WithError(err).Warn("resume disabled: cannot create checkpoint")
			return nil, nil
		}
	}

	// IDs the checkpoint knows about are skipped even if the output
	// directory scan missed them
	for id := range cp.Downloaded {
		s.storage.MarkDownloaded(id)
	}

	return mgr, cp
}

func (s *Scraper) saveCheckpoint(mgr *checkpoint.Manager, cp *checkpoint.Checkpoint) {
	if err := mgr.Save(cp); err != nil {
		s.logger.WithError(err).Warn("failed to save checkpoint")
	}
}

// Package scraper drives the collection pipeline. It combines the forum
// client, the post filter, the image fetcher and local storage into three
// entry points: a bounded fetch of recent top posts, a lazily batched scan
// of one timestamp range, and a month-by-month walk over a multi-year
// lookback with optional checkpointed resume.
package scraper

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cardscraper/pkg/logger"
	"cardscraper/pkg/reddit"
	"cardscraper/pkg/scraper"
)

var (
	// Fetch command flags
	fetchLimit      int
	fetchTimeFilter string
	fetchStart      string
	fetchEnd        string
	fetchBatchSize  int
	fetchYears      int
	fetchResume     bool
)

// fetchCmd groups the collection modes
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch card images from a subreddit",
	Long: `Fetch card images from a subreddit in one of three modes:

  recent  - the top posts under a time filter, one bounded listing
  range   - every post inside a timestamp range, in batches
  months  - a multi-year scan, one calendar month at a time

Only posts carrying the image content hint are downloaded. Files already
present in the output directory are never downloaded twice.`,
}

// recentCmd fetches the top listing of a subreddit
var recentCmd = &cobra.Command{
	Use:   "recent <subreddit>",
	Short: "Download images from the top posts of a subreddit",
	Example: `  # Top 25 posts of the week
  cardscraper fetch recent custommagic

  # Top 100 posts of all time
  cardscraper fetch recent custommagic --limit 100 --time-filter all`,
	Args: cobra.ExactArgs(1),
	RunE: runRecent,
}

// rangeCmd fetches one timestamp window
var rangeCmd = &cobra.Command{
	Use:   "range <subreddit>",
	Short: "Download images posted inside a timestamp range",
	Long: `Search a subreddit for posts created inside [start, end] and download
their images in batches. Dates are accepted as YYYY-MM-DD or RFC 3339.`,
	Example: `  cardscraper fetch range custommagic --start 2024-01-01 --end 2024-03-31`,
	Args:    cobra.ExactArgs(1),
	RunE:    runRange,
}

// monthsCmd walks a lookback window month by month
var monthsCmd = &cobra.Command{
	Use:   "months <subreddit>",
	Short: "Download images month by month over a lookback window",
	Long: `Scan a subreddit month by month, oldest first, covering the given number
of years back from now. With --resume, completed months are checkpointed and
skipped when the scan is restarted.`,
	Example: `  # Five years of history, resumable
  cardscraper fetch months custommagic --years 5 --resume`,
	Args: cobra.ExactArgs(1),
	RunE: runMonths,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.AddCommand(recentCmd)
	fetchCmd.AddCommand(rangeCmd)
	fetchCmd.AddCommand(monthsCmd)

	recentCmd.Flags().IntVar(&fetchLimit, "limit", 25, "maximum number of posts to list")
	recentCmd.Flags().StringVar(&fetchTimeFilter, "time-filter", "week", "time filter (hour, day, week, month, year, all)")

	rangeCmd.Flags().StringVar(&fetchStart, "start", "", "range start (YYYY-MM-DD or RFC 3339)")
	rangeCmd.Flags().StringVar(&fetchEnd, "end", "", "range end (YYYY-MM-DD or RFC 3339)")
	rangeCmd.Flags().IntVar(&fetchBatchSize, "batch-size", 25, "cards per batch")
	_ = rangeCmd.MarkFlagRequired("start")
	_ = rangeCmd.MarkFlagRequired("end")

	monthsCmd.Flags().IntVar(&fetchYears, "years", 5, "years of history to cover")
	monthsCmd.Flags().IntVar(&fetchBatchSize, "batch-size", 25, "cards per batch")
	monthsCmd.Flags().BoolVar(&fetchResume, "resume", false, "resume from the last completed month")
}

func runRecent(cmd *cobra.Command, args []string) error {
	subreddit := strings.TrimSpace(args[0])

	s, err := newScraper()
	if err != nil {
		return err
	}

	cards, err := s.FetchRecent(cmd.Context(), subreddit, fetchLimit, reddit.TimeFilter(fetchTimeFilter))
	for _, card := range cards {
		fmt.Printf("  %s  %s\n", card.ID, card.Title)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "listing failed after %d card(s): %v\n", len(cards), err)
		os.Exit(1)
	}

	fmt.Printf("Downloaded %d card(s) from r/%s\n", len(cards), subreddit)
	return nil
}

func runRange(cmd *cobra.Command, args []string) error {
	subreddit := strings.TrimSpace(args[0])

	start, err := parseDate(fetchStart)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	end, err := parseDate(fetchEnd)
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("--end %s is before --start %s", fetchEnd, fetchStart)
	}

	s, err := newScraper()
	if err != nil {
		return err
	}

	total := 0
	for batch := range s.FetchByRange(cmd.Context(), subreddit, start, end, fetchBatchSize) {
		total += len(batch)
		fmt.Printf("Batch of %d card(s) (%d total)\n", len(batch), total)
		for _, card := range batch {
			fmt.Printf("  %s  %s\n", card.ID, card.Title)
		}
	}

	fmt.Printf("Downloaded %d card(s) from r/%s\n", total, subreddit)
	return nil
}

func runMonths(cmd *cobra.Command, args []string) error {
	subreddit := strings.TrimSpace(args[0])

	s, err := newScraper()
	if err != nil {
		return err
	}
	s.EnableResume(fetchResume)

	total := 0
	for month, batch := range s.FetchByMonths(cmd.Context(), subreddit, fetchYears, fetchBatchSize) {
		total += len(batch)
		fmt.Printf("%s: batch of %d card(s) (%d total)\n", month.Format("2006-01"), len(batch), total)
	}

	fmt.Printf("Downloaded %d card(s) from r/%s\n", total, subreddit)
	return nil
}

func newScraper() (*scraper.Scraper, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger.GetLogger().WithField("version", version).Info("cardscraper starting")

	s, err := scraper.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize scraper: %w", err)
	}
	return s, nil
}

// parseDate accepts a bare date or a full RFC 3339 timestamp, both read as UTC.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not YYYY-MM-DD or RFC 3339", value)
	}
	return t.UTC(), nil
}

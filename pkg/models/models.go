package models

import "time"

// Card is the scraper's output unit: metadata for an image post plus the
// local path of its downloaded image. A Card is only constructed once the
// image file is fully written to disk.
type Card struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	CreatedUTC time.Time `json:"created_utc"`
	ImagePath  string    `json:"image_path"`
}

// Batch is a bounded group of cards handed to the consumer together. Every
// batch except the last of a window holds at most the configured batch size.
type Batch []Card

// MonthWindow is a closed interval covering one calendar month, from the
// first instant of the month to 23:59:59 on its last day.
type MonthWindow struct {
	Start time.Time
	End   time.Time
}

// MonthWindowOf returns the window for the calendar month containing t.
func MonthWindowOf(t time.Time) MonthWindow {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return MonthWindow{Start: start, End: endOfMonth(start)}
}

// Next returns the window for the following calendar month. Advancing from
// December rolls the year forward.
func (w MonthWindow) Next() MonthWindow {
	start := w.Start.AddDate(0, 1, 0)
	return MonthWindow{Start: start, End: endOfMonth(start)}
}

// Contains reports whether t falls inside the window.
func (w MonthWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// endOfMonth relies on time.Date normalizing day 0 of the following month to
// the last day of this one, so real month lengths (and leap Februaries) hold.
func endOfMonth(start time.Time) time.Time {
	return time.Date(start.Year(), start.Month()+1, 0, 23, 59, 59, 0, start.Location())
}

// MonthWindows returns consecutive calendar-month windows beginning with the
// month containing from, stopping once a window's start reaches until. The
// returned windows tile the span with no gaps or overlaps.
func MonthWindows(from, until time.Time) []MonthWindow {
	var windows []MonthWindow
	for w := MonthWindowOf(from); w.Start.Before(until); w = w.Next() {
		windows = append(windows, w)
	}
	return windows
}

package logger

import (
	"testing"

	"cardscraper/pkg/config"
)

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "loud"})
	if err == nil {
		t.Error("Expected an error for an unknown log level")
	}
}

func TestNewDefaultsToInfo(t *testing.T) {
	l, err := New(&config.LoggingConfig{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if l == nil {
		t.Fatal("Expected a logger instance")
	}
}

func TestTestLoggerCapturesEntries(t *testing.T) {
	tl := NewTestLogger()

	tl.Info("hello")
	tl.WithField("subreddit", "custom_magic").Error("boom")

	if !tl.HasEntry("info", "hello") {
		t.Error("Expected info entry to be recorded")
	}
	if !tl.HasEntry("error", "boom") {
		t.Error("Expected error entry from derived logger to be recorded")
	}

	entries := tl.Entries()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[1].Fields["subreddit"] != "custom_magic" {
		t.Errorf("Expected derived field to be captured, got %v", entries[1].Fields)
	}
}

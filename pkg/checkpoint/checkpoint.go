package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"cardscraper/pkg/logger"
)

// monthKey is the layout for checkpointed months; the zero-padded form sorts
// lexicographically in chronological order.
const monthKey = "2006-01"

// Checkpoint records the progress of a monthly scan over one subreddit so an
// interrupted run can pick up where it stopped.
type Checkpoint struct {
	Subreddit          string            `json:"subreddit"`
	LastCompletedMonth string            `json:"last_completed_month"`
	Downloaded         map[string]string `json:"downloaded"` // post id -> filename
	TotalDownloaded    int               `json:"total_downloaded"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	Version            int               `json:"version"`
}

// IsDownloaded checks if a post was recorded as downloaded.
func (c *Checkpoint) IsDownloaded(postID string) bool {
	_, ok := c.Downloaded[postID]
	return ok
}

// RecordDownload marks a post's image as downloaded.
func (c *Checkpoint) RecordDownload(postID, filename string) {
	if _, ok := c.Downloaded[postID]; ok {
		return
	}
	c.Downloaded[postID] = filename
	c.TotalDownloaded++
}

// CompleteMonth marks the month starting at start as fully scanned.
func (c *Checkpoint) CompleteMonth(start time.Time) {
	c.LastCompletedMonth = start.Format(monthKey)
}

// MonthCompleted checks if the month starting at start was already scanned.
func (c *Checkpoint) MonthCompleted(start time.Time) bool {
	return c.LastCompletedMonth != "" && start.Format(monthKey) <= c.LastCompletedMonth
}

// Manager handles checkpoint persistence for one subreddit.
type Manager struct {
	checkpointPath string
	logger         logger.Logger
}

// NewManager creates a checkpoint manager storing state under the user data
// directory.
func NewManager(subreddit string) (*Manager, error) {
	dataDir, err := getDataDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to get data directory: %w", err)
	}
	return NewManagerAt(dataDir, subreddit)
}

// NewManagerAt creates a checkpoint manager rooted at an explicit directory.
func NewManagerAt(dataDir, subreddit string) (*Manager, error) {
	checkpointsDir := filepath.Join(dataDir, "checkpoints")
	if err := os.MkdirAll(checkpointsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &Manager{
		checkpointPath: filepath.Join(checkpointsDir, fmt.Sprintf("%s.checkpoint.json", subreddit)),
		logger:         logger.GetLogger(),
	}, nil
}

// Exists checks if a checkpoint file is present.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.checkpointPath)
	return err == nil
}

// Create creates and saves a fresh checkpoint.
func (m *Manager) Create(subreddit string) (*Checkpoint, error) {
	checkpoint := &Checkpoint{
		Subreddit:  subreddit,
		Downloaded: make(map[string]string),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
		Version:    1,
	}

	if err := m.Save(checkpoint); err != nil {
		return nil, fmt.Errorf("failed to save initial checkpoint: %w", err)
	}

	m.logger.InfoWithFields("checkpoint created", map[string]interface{}{
		"subreddit": subreddit,
		"path":      m.checkpointPath,
	})

	return checkpoint, nil
}

// Load loads an existing checkpoint, or returns nil when none exists.
func (m *Manager) Load() (*Checkpoint, error) {
	file, err := os.Open(m.checkpointPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	defer file.Close()

	var checkpoint Checkpoint
	if err := json.NewDecoder(file).Decode(&checkpoint); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	if checkpoint.Downloaded == nil {
		checkpoint.Downloaded = make(map[string]string)
	}

	m.logger.InfoWithFields("checkpoint loaded", map[string]interface{}{
		"subreddit":        checkpoint.Subreddit,
		"total_downloaded": checkpoint.TotalDownloaded,
		"last_month":       checkpoint.LastCompletedMonth,
	})

	return &checkpoint, nil
}

// Save writes the checkpoint to disk atomically.
func (m *Manager) Save(checkpoint *Checkpoint) error {
	checkpoint.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	tempPath := m.checkpointPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := os.Rename(tempPath, m.checkpointPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint: %w", err)
	}
	return nil
}

// Delete removes the checkpoint file.
func (m *Manager) Delete() error {
	if err := os.Remove(m.checkpointPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// getDataDirectory returns the platform-appropriate data directory
func getDataDirectory() (string, error) {
	if dir := os.Getenv("CARDSCRAPER_DATA_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "cardscraper"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "cardscraper"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "cardscraper"), nil
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "cardscraper"), nil
		}
		return filepath.Join(home, ".local", "share", "cardscraper"), nil
	}
}

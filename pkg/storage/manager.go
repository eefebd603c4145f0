package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultExtension is used when an image URL carries no usable extension.
const DefaultExtension = ".png"

// Manager handles image file writes and duplicate detection for one output
// directory.
type Manager struct {
	outputDir  string
	chunkSize  int
	downloaded map[string]bool
	mu         sync.RWMutex
}

// NewManager creates a storage manager, creating the output directory and
// its parents if missing. Failure here is fatal to the caller: nothing can
// proceed without a writable output location.
func NewManager(outputDir string, chunkSize int) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if chunkSize <= 0 {
		chunkSize = 8192
	}

	manager := &Manager{
		outputDir:  outputDir,
		chunkSize:  chunkSize,
		downloaded: make(map[string]bool),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles records the post IDs of files already in the output
// directory so re-runs skip completed downloads.
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext == ".tmp" || ext == "" {
			continue
		}
		if id := strings.TrimSuffix(name, ext); id != "" {
			m.downloaded[id] = true
		}
	}

	return nil
}

// IsDownloaded checks if an image for the given post ID is already on disk.
func (m *Manager) IsDownloaded(postID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.downloaded[postID]
}

// SaveImage streams r to {outputDir}/{postID}{ext} in fixed-size chunks and
// returns the written path. The data lands in a temp file first and is
// renamed into place, so the returned path never names a partial file. An
// empty ext falls back to DefaultExtension.
func (m *Manager) SaveImage(r io.Reader, postID, ext string) (string, error) {
	if ext == "" {
		ext = DefaultExtension
	}
	filename := filepath.Join(m.outputDir, postID+ext)

	tempFile := filename + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.CopyBuffer(out, r, make([]byte, m.chunkSize))
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to save image data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.downloaded[postID] = true
	m.mu.Unlock()

	return filename, nil
}

// MarkDownloaded records a post ID as already downloaded without writing
// anything, for resume state that knows about files this directory scan
// does not.
func (m *Manager) MarkDownloaded(postID string) {
	m.mu.Lock()
	m.downloaded[postID] = true
	m.mu.Unlock()
}

// OutputDir returns the output directory path.
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// DownloadedCount returns the number of known downloaded images.
func (m *Manager) DownloadedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.downloaded)
}

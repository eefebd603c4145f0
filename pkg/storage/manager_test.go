package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewManagerCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cards")

	m, err := NewManager(dir, 8192)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("Expected output directory to be created, stat err: %v", err)
	}
	if m.OutputDir() != dir {
		t.Errorf("Expected OutputDir %s, got %s", dir, m.OutputDir())
	}
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir, 8192)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	data := strings.Repeat("x", 20000) // larger than one chunk
	path, err := m.SaveImage(strings.NewReader(data), "abc123", ".jpg")
	if err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}

	if filepath.Dir(path) != dir {
		t.Errorf("Expected image under %s, got %s", dir, path)
	}
	if filepath.Base(path) != "abc123.jpg" {
		t.Errorf("Expected filename abc123.jpg, got %s", filepath.Base(path))
	}

	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Reading written file failed: %v", err)
	}
	if string(written) != data {
		t.Errorf("Written data differs: %d bytes vs %d", len(written), len(data))
	}

	if !m.IsDownloaded("abc123") {
		t.Error("Expected the post to be marked downloaded")
	}
}

func TestSaveImageDefaultExtension(t *testing.T) {
	m, err := NewManager(t.TempDir(), 8192)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	path, err := m.SaveImage(strings.NewReader("img"), "noext", "")
	if err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	if filepath.Ext(path) != ".png" {
		t.Errorf("Expected .png default extension, got %s", filepath.Ext(path))
	}
}

func TestSaveImageLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir, 8192)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if _, err := m.SaveImage(strings.NewReader("img"), "tidy", ".png"); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("Temp file left behind: %s", e.Name())
		}
	}
}

func TestScanExistingFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "old42.png"), []byte("img"), 0644); err != nil {
		t.Fatalf("Failed to seed directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "partial.png.tmp"), []byte("junk"), 0644); err != nil {
		t.Fatalf("Failed to seed directory: %v", err)
	}

	m, err := NewManager(dir, 8192)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if !m.IsDownloaded("old42") {
		t.Error("Expected the pre-existing image to be detected")
	}
	if m.IsDownloaded("partial.png") || m.IsDownloaded("partial") {
		t.Error("Expected leftover temp files to be ignored")
	}
	if m.DownloadedCount() != 1 {
		t.Errorf("Expected 1 known download, got %d", m.DownloadedCount())
	}
}

func TestMarkDownloaded(t *testing.T) {
	m, err := NewManager(t.TempDir(), 8192)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if m.IsDownloaded("ckpt1") {
		t.Fatal("Fresh manager should know nothing")
	}
	m.MarkDownloaded("ckpt1")
	if !m.IsDownloaded("ckpt1") {
		t.Error("Expected marked post ID to be reported as downloaded")
	}
}

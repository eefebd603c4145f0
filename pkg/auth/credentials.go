package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

var (
	// ErrProfileNotFound is returned when no credentials exist for a profile
	ErrProfileNotFound = errors.New("credential profile not found")
	// ErrInvalidProfile is returned for profiles missing required fields
	ErrInvalidProfile = errors.New("invalid credential profile")
	// ErrStoreUnavailable is returned when a store cannot perform an operation
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// Profile holds the Reddit API credentials registered under a name, the
// equivalent of a praw.ini section.
type Profile struct {
	Name         string    `json:"name"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	Username     string    `json:"username"`
	Password     string    `json:"password"`
	UserAgent    string    `json:"user_agent,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving credential
// profiles
type CredentialStore interface {
	// Store saves a profile
	Store(profile *Profile) error

	// Retrieve gets the profile with the given name
	Retrieve(name string) (*Profile, error)

	// List returns all stored profiles
	List() ([]*Profile, error)

	// Delete removes the profile with the given name
	Delete(name string) error

	// Exists checks if a profile with the given name is stored
	Exists(name string) bool
}

// Manager handles credential storage with fallback mechanisms: system
// keyring first, encrypted file second, environment variables last.
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a new credential manager with the available storage
// backends
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// Store saves a profile using the first store that accepts it
func (m *Manager) Store(profile *Profile) error {
	if err := validate(profile); err != nil {
		return err
	}

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(profile); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("no store accepted the profile: %w", lastErr)
}

// Retrieve gets a profile from the first store that has it
func (m *Manager) Retrieve(name string) (*Profile, error) {
	for _, store := range m.stores {
		profile, err := store.Retrieve(name)
		if err == nil {
			return profile, nil
		}
	}
	return nil, ErrProfileNotFound
}

// Delete removes a profile from every store that has it
func (m *Manager) Delete(name string) error {
	deleted := false
	for _, store := range m.stores {
		if store.Exists(name) {
			if err := store.Delete(name); err == nil {
				deleted = true
			}
		}
	}
	if !deleted {
		return ErrProfileNotFound
	}
	return nil
}

// Exists checks whether any store has the named profile
func (m *Manager) Exists(name string) bool {
	for _, store := range m.stores {
		if store.Exists(name) {
			return true
		}
	}
	return false
}

func validate(profile *Profile) error {
	if profile == nil || profile.Name == "" {
		return ErrInvalidProfile
	}
	if profile.ClientID == "" || profile.ClientSecret == "" {
		return fmt.Errorf("%w: client id and secret are required", ErrInvalidProfile)
	}
	return nil
}

// getConfigDir returns the platform-appropriate configuration directory
func getConfigDir() (string, error) {
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
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "cardscraper"), nil
		}
		return filepath.Join(home, ".config", "cardscraper"), nil
	}
}

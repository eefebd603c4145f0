package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// It is read-only and serves one unnamed profile, mainly for CI and
// containers.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(profile *Profile) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables
func (e *EnvironmentStore) Retrieve(name string) (*Profile, error) {
	clientID := os.Getenv("CARDSCRAPER_CLIENT_ID")
	clientSecret := os.Getenv("CARDSCRAPER_CLIENT_SECRET")

	if clientID == "" || clientSecret == "" {
		return nil, ErrProfileNotFound
	}

	if name == "" {
		name = "default"
	}

	return &Profile{
		Name:         name,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Username:     os.Getenv("CARDSCRAPER_USERNAME"),
		Password:     os.Getenv("CARDSCRAPER_PASSWORD"),
		UserAgent:    os.Getenv("CARDSCRAPER_USER_AGENT"),
		LastModified: time.Now(),
	}, nil
}

// List returns a single profile if environment variables are set
func (e *EnvironmentStore) List() ([]*Profile, error) {
	profile, err := e.Retrieve("")
	if err != nil {
		return []*Profile{}, nil
	}
	return []*Profile{profile}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv("CARDSCRAPER_CLIENT_ID") != "" &&
		os.Getenv("CARDSCRAPER_CLIENT_SECRET") != ""
}

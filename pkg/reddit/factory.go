package reddit

import (
	"fmt"

	"cardscraper/pkg/auth"
	"cardscraper/pkg/config"
	"cardscraper/pkg/logger"
	"cardscraper/pkg/ratelimit"
)

// New selects the client implementation named by the configuration.
func New(cfg *config.Config, limiter ratelimit.Limiter, log logger.Logger) (Client, error) {
	switch cfg.Reddit.Mode {
	case "api":
		profile, err := resolveProfile(&cfg.Reddit)
		if err != nil {
			return nil, err
		}
		return NewAPIClient(profile, limiter, log)
	case "public":
		return NewPublicClient(cfg.Reddit.UserAgent, limiter, log)
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown reddit mode %q (use 'api', 'public' or 'mock')", cfg.Reddit.Mode)
	}
}

// resolveProfile prefers credentials given directly in the configuration and
// falls back to the credential store under the configured profile name.
func resolveProfile(rc *config.RedditConfig) (*auth.Profile, error) {
	if rc.ClientID != "" && rc.ClientSecret != "" {
		return &auth.Profile{
			Name:         rc.Profile,
			ClientID:     rc.ClientID,
			ClientSecret: rc.ClientSecret,
			Username:     rc.Username,
			Password:     rc.Password,
			UserAgent:    rc.UserAgent,
		}, nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return nil, fmt.Errorf("opening credential stores: %w", err)
	}

	profile, err := manager.Retrieve(rc.Profile)
	if err != nil {
		return nil, fmt.Errorf("credentials for profile %q: %w", rc.Profile, err)
	}
	if profile.UserAgent == "" {
		profile.UserAgent = rc.UserAgent
	}
	return profile, nil
}

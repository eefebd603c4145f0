package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cardscraper/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Reddit API credentials",
	Long: `Manage stored Reddit API credential profiles.

Profiles are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

A profile is the equivalent of one praw.ini section: client id, client
secret, and optionally a username and password for script-type apps.`,
}

// setCmd stores or updates a credential profile
var setCmd = &cobra.Command{
	Use:   "set [profile]",
	Short: "Store a credential profile securely",
	Long: `Store a Reddit API credential profile. You will be prompted for the
client id, client secret, and optional account username and password.

Create the app at https://www.reddit.com/prefs/apps (type "script"); the
client id appears under the app name, the secret next to "secret".`,
	Example: `  # Store under the default profile name
  cardscraper auth set

  # Store under an explicit name
  cardscraper auth set mtg_card_collector`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthSet,
}

// statusCmd shows whether a profile resolves
var statusCmd = &cobra.Command{
	Use:   "status [profile]",
	Short: "Show whether a credential profile is available",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthStatus,
}

// removeCmd deletes a stored profile
var removeCmd = &cobra.Command{
	Use:   "remove <profile>",
	Short: "Remove a stored credential profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthRemove,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(setCmd)
	authCmd.AddCommand(statusCmd)
	authCmd.AddCommand(removeCmd)
}

func profileArg(args []string) string {
	if len(args) > 0 {
		return strings.TrimSpace(args[0])
	}
	return "mtg_card_collector"
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := profileArg(args)
	reader := bufio.NewReader(os.Stdin)

	if manager.Exists(name) {
		fmt.Printf("Profile %q already exists. Update it? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
	}

	fmt.Print("Client id: ")
	clientID, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read client id: %w", err)
	}

	fmt.Print("Client secret (hidden): ")
	clientSecret, err := readSecret()
	if err != nil {
		return fmt.Errorf("failed to read client secret: %w", err)
	}

	fmt.Print("Reddit username (optional): ")
	username, _ := reader.ReadString('\n')

	var password string
	if strings.TrimSpace(username) != "" {
		fmt.Print("Reddit password (hidden): ")
		password, err = readSecret()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	fmt.Print("User agent (optional, Enter for default): ")
	userAgent, _ := reader.ReadString('\n')

	profile := &auth.Profile{
		Name:         name,
		ClientID:     strings.TrimSpace(clientID),
		ClientSecret: clientSecret,
		Username:     strings.TrimSpace(username),
		Password:     password,
		UserAgent:    strings.TrimSpace(userAgent),
		LastModified: time.Now(),
	}

	if err := manager.Store(profile); err != nil {
		return fmt.Errorf("failed to store profile: %w", err)
	}

	fmt.Printf("Profile %q stored.\n", name)
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := profileArg(args)
	profile, err := manager.Retrieve(name)
	if err != nil {
		fmt.Printf("Profile %q: not found\n", name)
		fmt.Println("Run 'cardscraper auth set' to store credentials.")
		os.Exit(1)
	}

	fmt.Printf("Profile %q: available\n", name)
	fmt.Printf("  client id:  %s\n", maskSecret(profile.ClientID))
	if profile.Username != "" {
		fmt.Printf("  username:   %s\n", profile.Username)
	}
	if profile.UserAgent != "" {
		fmt.Printf("  user agent: %s\n", profile.UserAgent)
	}
	if !profile.LastModified.IsZero() {
		fmt.Printf("  updated:    %s\n", profile.LastModified.Format(time.RFC3339))
	}
	return nil
}

func runAuthRemove(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := strings.TrimSpace(args[0])
	if err := manager.Delete(name); err != nil {
		return fmt.Errorf("failed to remove profile %q: %w", name, err)
	}

	fmt.Printf("Profile %q removed.\n", name)
	return nil
}

func readSecret() (string, error) {
	value, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(value)), nil
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}

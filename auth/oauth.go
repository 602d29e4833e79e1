// ABOUTME: OAuth configuration and token management for the Google Calendar provider
// ABOUTME: Handles token storage at XDG paths with owner-only permissions
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// NewOAuthConfig creates the OAuth2 config for the Google Calendar API.
// Users create their own OAuth app in Google Cloud Console; credentials come
// from the environment.
func NewOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  "http://localhost:8080/oauth/callback",
		Scopes: []string{
			"https://www.googleapis.com/auth/calendar.readonly",
		},
		Endpoint: google.Endpoint,
	}
}

// TokenPath returns the XDG-compliant path for the stored OAuth token.
func TokenPath() string {
	return filepath.Join(xdg.DataHome, "punchcard", "google-credentials.json")
}

// SaveToken writes the OAuth token with permissions restricted to the owner.
func SaveToken(token *oauth2.Token) error {
	path := TokenPath()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	return nil
}

// LoadToken reads the stored OAuth token.
func LoadToken() (*oauth2.Token, error) {
	f, err := os.Open(TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	return &token, nil
}

// GetConfig returns the OAuth config, erroring when credentials are missing.
func GetConfig() (*oauth2.Config, error) {
	config := NewOAuthConfig()

	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, fmt.Errorf("google OAuth credentials not configured. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variables")
	}

	return config, nil
}

// File path: internal/auth/config.go
package auth

import (
	"os"
	"strings"
)

type Config struct {
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	SessionSecret string
}

// LoadConfig reads the GOOGLE_* client credentials and session secret from
// the environment.
func LoadConfig() Config {
	cfg := Config{
		ClientID:      strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),
		ClientSecret:  strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_SECRET")),
		RedirectURL:   strings.TrimSpace(os.Getenv("OAUTH_REDIRECT_URL")),
		SessionSecret: strings.TrimSpace(os.Getenv("SESSION_SECRET")),
	}
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = "http://localhost:8080/auth/google/callback"
	}
	return cfg
}

// Enabled reports whether the Google client credentials are present.
func (c Config) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

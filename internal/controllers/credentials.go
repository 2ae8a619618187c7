package controllers

import (
	"strings"

	"github.com/amaumene/cinesync/internal/config"
	"github.com/amaumene/cinesync/internal/errs"
	"github.com/amaumene/cinesync/internal/services/tmdb"
)

// CheckCredentials verifies every TMDB setting needed for a sync is present
func CheckCredentials(creds tmdb.Credentials) error {
	var missing []string
	if strings.TrimSpace(creds.BaseURL) == "" {
		missing = append(missing, "TMDB_API_BASE_URL")
	}
	if strings.TrimSpace(creds.AccessToken) == "" {
		missing = append(missing, "TMDB_API_TOKEN")
	}
	if strings.TrimSpace(creds.APIKey) == "" {
		missing = append(missing, "TMDB_API_KEY")
	}

	if len(missing) > 0 {
		return &errs.ConfigurationError{Missing: missing}
	}
	return nil
}

// CredentialsFromConfig reads the TMDB credentials out of the loaded config
func CredentialsFromConfig(cfg *config.Config) tmdb.Credentials {
	return tmdb.Credentials{
		BaseURL:     cfg.TMDBBaseURL,
		AccessToken: cfg.TMDBAccessToken,
		APIKey:      cfg.TMDBAPIKey,
	}
}

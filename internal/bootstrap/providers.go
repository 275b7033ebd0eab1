package bootstrap

import (
	"log"
	"net/http"

	"github.com/go-authgate/authd/internal/config"
	"github.com/go-authgate/authd/internal/oauth"
)

// initializeOAuthProviders builds the provider registry from configuration
func initializeOAuthProviders(cfg *config.Config) oauth.Registry {
	warnIncompleteProviders(cfg)

	registry := oauth.NewRegistry(cfg, createOAuthHTTPClient(cfg))
	if len(registry) > 0 {
		log.Printf("OAuth providers enabled: %v", providerNames(registry))
	}
	return registry
}

// warnIncompleteProviders flags providers that are enabled but unusable
func warnIncompleteProviders(cfg *config.Config) {
	for name, pc := range cfg.Providers {
		if pc.Enabled && (pc.ClientID == "" || pc.ClientSecret == "") {
			log.Printf(
				"Warning: %s OAuth enabled but CLIENT_ID or CLIENT_SECRET missing",
				name,
			)
		}
	}
}

// createOAuthHTTPClient creates the HTTP client used for token exchange
// and profile fetches
func createOAuthHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.OAuthTimeout}
}

func providerNames(registry oauth.Registry) []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

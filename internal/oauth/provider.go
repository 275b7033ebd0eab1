package oauth

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-authgate/authd/internal/config"

	"golang.org/x/oauth2"
)

// ErrUnknownProvider is returned for a provider name that is not configured.
var ErrUnknownProvider = errors.New("unsupported provider")

// Profile is the provider-independent result of a callback: whatever a
// provider's token exchange and profile fetch look like, they reduce to a
// stable subject id and an email address.
type Profile struct {
	SubjectID string
	Email     string
}

// Provider is one configured identity provider.
type Provider interface {
	// Name returns the provider's registry name ("google", "yandex", ...).
	Name() string

	// AuthURL builds the authorization redirect URL carrying the opaque
	// state (empty for anonymous sign-in, "user_<id>" for add-provider).
	AuthURL(state string) string

	// Exchange trades the callback code for a provider access token.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// FetchProfile retrieves the external profile for the token.
	FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error)
}

// Registry maps provider names to configured providers. It is built once at
// startup from configuration; there is no runtime discovery.
type Registry map[string]Provider

// Get returns the named provider or ErrUnknownProvider.
func (r Registry) Get(name string) (Provider, error) {
	provider, ok := r[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return provider, nil
}

// NewRegistry builds the provider registry from configuration. Only enabled
// providers are registered. The HTTP client is used for token exchange and
// profile fetches.
func NewRegistry(cfg *config.Config, client *http.Client) Registry {
	registry := Registry{}

	if pc, ok := cfg.Providers[config.ProviderGoogle]; ok && pc.Enabled {
		registry[config.ProviderGoogle] = NewGoogle(pc, cfg.OAuthRedirectBase, client)
	}
	if pc, ok := cfg.Providers[config.ProviderYandex]; ok && pc.Enabled {
		registry[config.ProviderYandex] = NewYandex(pc, cfg.OAuthRedirectBase, client)
	}
	if pc, ok := cfg.Providers[config.ProviderGitHub]; ok && pc.Enabled {
		registry[config.ProviderGitHub] = NewGitHub(pc, cfg.OAuthRedirectBase, client)
	}
	if pc, ok := cfg.Providers[config.ProviderVK]; ok && pc.Enabled {
		registry[config.ProviderVK] = NewVK(pc, cfg.OAuthRedirectBase, client)
	}
	if pc, ok := cfg.Providers[config.ProviderMail]; ok && pc.Enabled {
		registry[config.ProviderMail] = NewMail(pc, cfg.OAuthRedirectBase, client)
	}

	return registry
}

// base carries the pieces shared by all providers.
type base struct {
	name       string
	config     *oauth2.Config
	profileURL string
	httpClient *http.Client
}

func newBase(name string, pc config.ProviderConfig, redirectBase string, client *http.Client) base {
	return base{
		name: name,
		config: &oauth2.Config{
			ClientID:     pc.ClientID,
			ClientSecret: pc.ClientSecret,
			RedirectURL:  redirectBase + name,
			Scopes:       pc.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  pc.AuthURL,
				TokenURL: pc.TokenURL,
			},
		},
		profileURL: pc.ProfileURL,
		httpClient: client,
	}
}

func (b *base) Name() string {
	return b.name
}

func (b *base) AuthURL(state string) string {
	return b.config.AuthCodeURL(state)
}

func (b *base) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return b.config.Exchange(b.clientContext(ctx), code)
}

// clientContext injects the custom HTTP client into the oauth2 machinery.
func (b *base) clientContext(ctx context.Context) context.Context {
	if b.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, b.httpClient)
}

// authorizedClient returns an HTTP client that attaches the provider token.
func (b *base) authorizedClient(ctx context.Context, token *oauth2.Token) *http.Client {
	return b.config.Client(b.clientContext(ctx), token)
}

package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-authgate/authd/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func providerConfig(profileURL string) config.ProviderConfig {
	return config.ProviderConfig{
		Enabled:      true,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AuthURL:      "https://example.com/authorize",
		TokenURL:     "https://example.com/token",
		ProfileURL:   profileURL,
	}
}

func TestVKFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, vkAPIVersion, r.URL.Query().Get("v"))
		w.Write([]byte(`{"response":[{"id":42,"first_name":"Ivan","last_name":"Petrov"}]}`))
	}))
	defer srv.Close()

	vk := NewVK(providerConfig(srv.URL), "http://localhost/callback/", srv.Client())

	t.Run("EmailFromTokenResponse", func(t *testing.T) {
		token := (&oauth2.Token{AccessToken: "tok"}).
			WithExtra(map[string]any{"email": "ivan@example.com"})

		profile, err := vk.FetchProfile(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "42", profile.SubjectID)
		assert.Equal(t, "ivan@example.com", profile.Email)
	})

	t.Run("PlaceholderWhenEmailWithheld", func(t *testing.T) {
		profile, err := vk.FetchProfile(context.Background(), &oauth2.Token{AccessToken: "tok"})
		require.NoError(t, err)
		assert.Equal(t, "42", profile.SubjectID)
		assert.Equal(t, "id42@vk.invalid", profile.Email)
	})
}

func TestVKFetchProfileEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":[]}`))
	}))
	defer srv.Close()

	vk := NewVK(providerConfig(srv.URL), "http://localhost/callback/", srv.Client())

	_, err := vk.FetchProfile(context.Background(), &oauth2.Token{AccessToken: "tok"})
	assert.ErrorContains(t, err, "empty")
}

func TestMailFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Mail.ru takes the token as a query parameter, not a header
		assert.Equal(t, "tok", r.URL.Query().Get("access_token"))
		w.Write([]byte(`{"id":"mail-7","email":"user@mail.ru"}`))
	}))
	defer srv.Close()

	mail := NewMail(providerConfig(srv.URL), "http://localhost/callback/", srv.Client())

	profile, err := mail.FetchProfile(context.Background(), &oauth2.Token{AccessToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "mail-7", profile.SubjectID)
	assert.Equal(t, "user@mail.ru", profile.Email)
}

func TestMailFetchProfileMissingEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"mail-7"}`))
	}))
	defer srv.Close()

	mail := NewMail(providerConfig(srv.URL), "http://localhost/callback/", srv.Client())

	_, err := mail.FetchProfile(context.Background(), &oauth2.Token{AccessToken: "tok"})
	assert.ErrorContains(t, err, "missing id or email")
}

func TestRegistryEnablesConfiguredProviders(t *testing.T) {
	cfg := &config.Config{
		OAuthRedirectBase: "http://localhost/api/v1/oauth/callback/",
		Providers: map[string]config.ProviderConfig{
			config.ProviderVK:     providerConfig("https://api.vk.com/method/users.get"),
			config.ProviderMail:   providerConfig("https://oauth.mail.ru/userinfo"),
			config.ProviderGoogle: {Enabled: false},
		},
	}

	registry := NewRegistry(cfg, http.DefaultClient)

	for _, name := range []string{config.ProviderVK, config.ProviderMail} {
		provider, err := registry.Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, provider.Name())
	}

	_, err := registry.Get(config.ProviderGoogle)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-authgate/authd/internal/config"

	"golang.org/x/oauth2"
)

// Google authenticates against Google's OpenID Connect userinfo endpoint.
type Google struct {
	base
}

func NewGoogle(pc config.ProviderConfig, redirectBase string, client *http.Client) *Google {
	return &Google{base: newBase(config.ProviderGoogle, pc, redirectBase, client)}
}

type googleProfile struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

func (g *Google) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	var info googleProfile
	if err := fetchJSON(ctx, g.authorizedClient(ctx, token), g.profileURL, &info); err != nil {
		return nil, fmt.Errorf("google profile fetch failed: %w", err)
	}
	if info.Sub == "" || info.Email == "" {
		return nil, fmt.Errorf("google profile missing subject or email")
	}
	return &Profile{SubjectID: info.Sub, Email: info.Email}, nil
}

// fetchJSON performs an authorized GET and decodes the JSON response body.
func fetchJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("provider API error: %s - %s", resp.Status, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

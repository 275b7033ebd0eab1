package oauth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-authgate/authd/internal/config"

	"golang.org/x/oauth2"
)

// GitHub authenticates against the GitHub REST API. Accounts with a private
// email require a second call to the emails endpoint.
type GitHub struct {
	base
}

func NewGitHub(pc config.ProviderConfig, redirectBase string, client *http.Client) *GitHub {
	return &GitHub{base: newBase(config.ProviderGitHub, pc, redirectBase, client)}
}

type githubProfile struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (g *GitHub) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	client := g.authorizedClient(ctx, token)

	var user githubProfile
	if err := fetchJSON(ctx, client, g.profileURL, &user); err != nil {
		return nil, fmt.Errorf("github profile fetch failed: %w", err)
	}

	// Email may be private; fall back to the emails endpoint.
	if user.Email == "" {
		email, err := g.fetchPrimaryEmail(ctx, client)
		if err != nil {
			return nil, fmt.Errorf("github email fetch failed: %w", err)
		}
		user.Email = email
	}
	if user.Email == "" {
		return nil, fmt.Errorf("github account has no email address")
	}

	return &Profile{
		SubjectID: strconv.FormatInt(user.ID, 10),
		Email:     user.Email,
	}, nil
}

func (g *GitHub) fetchPrimaryEmail(ctx context.Context, client *http.Client) (string, error) {
	url := strings.TrimSuffix(g.profileURL, "/") + "/emails"

	var emails []githubEmail
	if err := fetchJSON(ctx, client, url, &emails); err != nil {
		return "", err
	}

	for _, email := range emails {
		if email.Primary && email.Verified {
			return email.Email, nil
		}
	}
	for _, email := range emails {
		if email.Verified {
			return email.Email, nil
		}
	}
	return "", fmt.Errorf("no verified email found")
}

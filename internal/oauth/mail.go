package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-authgate/authd/internal/config"

	"golang.org/x/oauth2"
)

// Mail authenticates against the Mail.ru userinfo endpoint, which takes the
// access token as a query parameter.
type Mail struct {
	base
}

func NewMail(pc config.ProviderConfig, redirectBase string, client *http.Client) *Mail {
	return &Mail{base: newBase(config.ProviderMail, pc, redirectBase, client)}
}

type mailProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (m *Mail) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	var info mailProfile
	infoURL := m.profileURL + "?access_token=" + url.QueryEscape(token.AccessToken)
	if err := fetchJSON(ctx, m.authorizedClient(ctx, token), infoURL, &info); err != nil {
		return nil, fmt.Errorf("mail.ru profile fetch failed: %w", err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, fmt.Errorf("mail.ru profile missing id or email")
	}
	return &Profile{SubjectID: info.ID, Email: info.Email}, nil
}

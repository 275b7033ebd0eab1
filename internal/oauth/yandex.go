package oauth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-authgate/authd/internal/config"

	"golang.org/x/oauth2"
)

// Yandex authenticates against the Yandex.Passport info endpoint. The
// login:email scope exposes the account's default email.
type Yandex struct {
	base
}

func NewYandex(pc config.ProviderConfig, redirectBase string, client *http.Client) *Yandex {
	return &Yandex{base: newBase(config.ProviderYandex, pc, redirectBase, client)}
}

type yandexProfile struct {
	ID           string `json:"id"`
	DefaultEmail string `json:"default_email"`
}

func (y *Yandex) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	var info yandexProfile
	url := y.profileURL + "?format=json"
	if err := fetchJSON(ctx, y.authorizedClient(ctx, token), url, &info); err != nil {
		return nil, fmt.Errorf("yandex profile fetch failed: %w", err)
	}
	if info.ID == "" || info.DefaultEmail == "" {
		return nil, fmt.Errorf("yandex profile missing id or default email")
	}
	return &Profile{SubjectID: info.ID, Email: info.DefaultEmail}, nil
}

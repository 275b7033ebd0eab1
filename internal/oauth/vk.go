package oauth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-authgate/authd/internal/config"

	"golang.org/x/oauth2"
)

// vkAPIVersion pins the VK API contract for users.get.
const vkAPIVersion = "5.131"

// VK authenticates against the VK API. With the email scope the address
// arrives in the token response, not the profile; accounts that withhold it
// get a placeholder derived from the numeric id.
type VK struct {
	base
}

func NewVK(pc config.ProviderConfig, redirectBase string, client *http.Client) *VK {
	return &VK{base: newBase(config.ProviderVK, pc, redirectBase, client)}
}

type vkProfile struct {
	ID int64 `json:"id"`
}

type vkEnvelope struct {
	Response []vkProfile `json:"response"`
}

func (v *VK) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	var envelope vkEnvelope
	url := v.profileURL + "?v=" + vkAPIVersion
	if err := fetchJSON(ctx, v.authorizedClient(ctx, token), url, &envelope); err != nil {
		return nil, fmt.Errorf("vk profile fetch failed: %w", err)
	}
	if len(envelope.Response) == 0 {
		return nil, fmt.Errorf("vk profile response is empty")
	}

	info := envelope.Response[0]
	email, _ := token.Extra("email").(string)
	if email == "" {
		email = fmt.Sprintf("id%d@vk.invalid", info.ID)
	}

	return &Profile{
		SubjectID: strconv.FormatInt(info.ID, 10),
		Email:     email,
	}, nil
}

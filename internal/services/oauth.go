package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-authgate/authd/internal/metrics"
	"github.com/go-authgate/authd/internal/models"
	"github.com/go-authgate/authd/internal/oauth"
	"github.com/go-authgate/authd/internal/store"
	"github.com/go-authgate/authd/internal/token"
	"github.com/go-authgate/authd/internal/util"

	"github.com/google/uuid"
)

// statePrefix marks an authorize state that encodes a user id, which makes
// the callback an authenticated "add provider" flow for that user. An empty
// state is the anonymous sign-in entry.
const statePrefix = "user_"

// CallbackResult is the outcome of a provider callback. Tokens is nil for
// the attach-only flow, where the already-authenticated caller gets a
// confirmation instead of a new pair.
type CallbackResult struct {
	Tokens     *token.Pair
	Provider   string
	Registered bool
}

// OAuthService drives the federated sign-in protocol: authorize redirect,
// callback branch resolution (login / link / register) and explicit unlink.
type OAuthService struct {
	store     *store.Store
	tokens    *token.Service
	providers oauth.Registry
	metrics   metrics.Recorder
}

func NewOAuthService(
	s *store.Store,
	tokens *token.Service,
	providers oauth.Registry,
	m metrics.Recorder,
) *OAuthService {
	return &OAuthService{
		store:     s,
		tokens:    tokens,
		providers: providers,
		metrics:   m,
	}
}

// AuthorizeURL builds the provider redirect URL. State is empty for
// anonymous sign-in; StateForUser produces the authenticated variant.
func (s *OAuthService) AuthorizeURL(providerName, state string) (string, error) {
	provider, err := s.providers.Get(providerName)
	if err != nil {
		return "", err
	}
	return provider.AuthURL(state), nil
}

// StateForUser encodes the current user's id into the opaque state so the
// callback can distinguish "add provider" from anonymous sign-in.
func StateForUser(userID string) string {
	return statePrefix + userID
}

// userFromState resolves the user encoded in state, if any.
func (s *OAuthService) userFromState(state string) (*models.User, error) {
	if !strings.HasPrefix(state, statePrefix) {
		return nil, nil
	}
	user, err := s.store.GetUserByID(strings.TrimPrefix(state, statePrefix))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve state user: %w", err)
	}
	return user, nil
}

// Callback resolves the three-way branch for a provider callback:
//
//  1. state encodes a user id  -> attach the provider to that user
//  2. identity already linked  -> log in as the linked user
//  3. neither                  -> register a new user, then attach
//
// Login and registration append a Session and issue tokens; the explicit
// attach flow returns a confirmation only.
func (s *OAuthService) Callback(
	ctx context.Context,
	providerName, code, state, userAgent string,
) (*CallbackResult, error) {
	provider, err := s.providers.Get(providerName)
	if err != nil {
		return nil, err
	}

	user, err := s.userFromState(state)
	if err != nil {
		return nil, err
	}

	providerToken, err := provider.Exchange(ctx, code)
	if err != nil {
		s.metrics.RecordOAuthCallback(providerName, false)
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	profile, err := provider.FetchProfile(ctx, providerToken)
	if err != nil {
		s.metrics.RecordOAuthCallback(providerName, false)
		return nil, fmt.Errorf("profile fetch failed: %w", err)
	}

	identity, err := s.store.GetLinkedIdentity(profile.SubjectID, providerName)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up linked identity: %w", err)
	}

	// Existing link, anonymous entry: log in as the linked user.
	if identity != nil && user == nil {
		pair, err := s.loginAs(ctx, identity.UserID, userAgent)
		if err != nil {
			return nil, err
		}
		s.metrics.RecordOAuthCallback(providerName, true)
		log.Printf("[OAuth] User %s logged in via %s", identity.UserID, providerName)
		return &CallbackResult{Tokens: pair, Provider: providerName}, nil
	}

	// Unseen identity, anonymous entry: register a new local user with a
	// strong generated password that is never surfaced.
	registered := false
	if user == nil {
		user, err = s.registerFederated(profile.Email)
		if err != nil {
			return nil, err
		}
		registered = true
	}

	// Attach. A link that already exists for this subject belongs to some
	// user, so a second attach is a conflict.
	if identity != nil {
		return nil, ErrIdentityAttached
	}
	if err := s.store.CreateLinkedIdentity(&models.LinkedIdentity{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		SubjectID: profile.SubjectID,
		Provider:  providerName,
	}); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrIdentityAttached
		}
		return nil, fmt.Errorf("failed to create linked identity: %w", err)
	}

	result := &CallbackResult{Provider: providerName, Registered: registered}
	if registered {
		pair, err := s.loginAs(ctx, user.ID, userAgent)
		if err != nil {
			return nil, err
		}
		result.Tokens = pair
		log.Printf("[OAuth] Registered user %s via %s", user.Login, providerName)
	} else {
		log.Printf("[OAuth] Attached %s to user %s", providerName, user.ID)
	}

	s.metrics.RecordOAuthCallback(providerName, true)
	return result, nil
}

// Detach unlinks the named provider from the user. Detach success is a
// success outcome.
func (s *OAuthService) Detach(userID, providerName string) error {
	if _, err := s.providers.Get(providerName); err != nil {
		return err
	}

	identity, err := s.store.GetLinkedIdentityByUserAndProvider(userID, providerName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrIdentityNotLinked
		}
		return fmt.Errorf("failed to look up linked identity: %w", err)
	}

	if err := s.store.DeleteLinkedIdentity(identity); err != nil {
		return fmt.Errorf("failed to delete linked identity: %w", err)
	}

	log.Printf("[OAuth] Detached %s from user %s", providerName, userID)
	return nil
}

func (s *OAuthService) loginAs(
	ctx context.Context,
	userID, userAgent string,
) (*token.Pair, error) {
	user, err := s.store.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if _, err := s.store.CreateSession(user.ID, userAgent); err != nil {
		return nil, fmt.Errorf("failed to record session: %w", err)
	}

	pair, err := s.tokens.Issue(ctx, user, userAgent)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTokenIssued()
	return pair, nil
}

func (s *OAuthService) registerFederated(email string) (*models.User, error) {
	password, err := util.GeneratePassword(12)
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}

	user := &models.User{
		ID:    uuid.New().String(),
		Login: email,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.store.CreateUser(user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrLoginTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

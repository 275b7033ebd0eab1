package services

import (
	"context"
	"testing"

	"github.com/go-authgate/authd/internal/cache"
	"github.com/go-authgate/authd/internal/metrics"
	"github.com/go-authgate/authd/internal/oauth"
	"github.com/go-authgate/authd/internal/store"
	"github.com/go-authgate/authd/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// stubProvider answers every exchange with a fixed profile.
type stubProvider struct {
	name    string
	profile oauth.Profile
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) AuthURL(state string) string {
	return "https://provider.example/authorize?state=" + state
}

func (p *stubProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "provider-token"}, nil
}

func (p *stubProvider) FetchProfile(
	ctx context.Context,
	t *oauth2.Token,
) (*oauth.Profile, error) {
	profile := p.profile
	return &profile, nil
}

func newTestOAuthService(
	t *testing.T,
	provider *stubProvider,
) (*OAuthService, *store.Store, *token.Service) {
	t.Helper()

	db, err := store.New("sqlite", ":memory:")
	require.NoError(t, err)

	tokens := token.NewService(testServiceConfig(), cache.NewMemoryCache[string](), db)
	registry := oauth.Registry{provider.name: provider}
	return NewOAuthService(db, tokens, registry, metrics.NewNoop()), db, tokens
}

func googleStub(subject, email string) *stubProvider {
	return &stubProvider{
		name:    "google",
		profile: oauth.Profile{SubjectID: subject, Email: email},
	}
}

func TestAuthorizeURL(t *testing.T) {
	svc, _, _ := newTestOAuthService(t, googleStub("sub-1", "alice@example.com"))

	url, err := svc.AuthorizeURL("google", "")
	require.NoError(t, err)
	assert.Contains(t, url, "provider.example")

	_, err = svc.AuthorizeURL("unknown", "")
	assert.ErrorIs(t, err, oauth.ErrUnknownProvider)
}

func TestCallbackRegistersNewUser(t *testing.T) {
	ctx := context.Background()
	svc, db, tokens := newTestOAuthService(t, googleStub("sub-1", "alice@example.com"))

	result, err := svc.Callback(ctx, "google", "code", "", "test-agent")
	require.NoError(t, err)
	assert.True(t, result.Registered)
	require.NotNil(t, result.Tokens)

	// A local user was created with the provider email as login
	user, err := db.GetUserByLogin("alice@example.com")
	require.NoError(t, err)

	claims, err := tokens.Validate(ctx, result.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// The identity is linked for future sign-ins
	identity, err := db.GetLinkedIdentity("sub-1", "google")
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)

	// A session was appended
	sessions, _, err := db.ListSessionsByUser(user.ID, store.NewPaginationParams(1, 10, ""))
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestCallbackLogsInLinkedUser(t *testing.T) {
	ctx := context.Background()
	svc, db, tokens := newTestOAuthService(t, googleStub("sub-1", "alice@example.com"))

	first, err := svc.Callback(ctx, "google", "code", "", "test-agent")
	require.NoError(t, err)
	require.True(t, first.Registered)

	second, err := svc.Callback(ctx, "google", "code", "", "test-agent")
	require.NoError(t, err)
	assert.False(t, second.Registered)
	require.NotNil(t, second.Tokens)

	// Same user, no second registration
	users, pagination, err := db.ListUsersWithRoles(store.NewPaginationParams(1, 10, ""))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(1), pagination.Total)

	claims, err := tokens.Validate(ctx, second.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, users[0].ID, claims.UserID)
}

func TestCallbackAttachesToStateUser(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestOAuthService(t, googleStub("sub-1", "alice@example.com"))

	user := createRBACUser(t, db, "alice")

	result, err := svc.Callback(ctx, "google", "code", StateForUser(user.ID), "test-agent")
	require.NoError(t, err)
	assert.False(t, result.Registered)
	assert.Nil(t, result.Tokens)

	identity, err := db.GetLinkedIdentity("sub-1", "google")
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
}

func TestCallbackAttachConflict(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newTestOAuthService(t, googleStub("sub-1", "alice@example.com"))

	// The subject gets linked to a freshly registered user first
	_, err := svc.Callback(ctx, "google", "code", "", "test-agent")
	require.NoError(t, err)

	// A different user then tries to attach the same provider identity
	other := createRBACUser(t, db, "bob")
	_, err = svc.Callback(ctx, "google", "code", StateForUser(other.ID), "test-agent")
	assert.ErrorIs(t, err, ErrIdentityAttached)
}

func TestCallbackUnknownStateUser(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestOAuthService(t, googleStub("sub-1", "alice@example.com"))

	_, err := svc.Callback(ctx, "google", "code", StateForUser("no-such-id"), "test-agent")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCallbackUnknownProvider(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestOAuthService(t, googleStub("sub-1", "alice@example.com"))

	_, err := svc.Callback(ctx, "unknown", "code", "", "test-agent")
	assert.ErrorIs(t, err, oauth.ErrUnknownProvider)
}

func TestDetach(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, db, _ := newTestOAuthService(t, googleStub("sub-1", "alice@example.com"))

		user := createRBACUser(t, db, "alice")
		_, err := svc.Callback(ctx, "google", "code", StateForUser(user.ID), "test-agent")
		require.NoError(t, err)

		require.NoError(t, svc.Detach(user.ID, "google"))

		_, err = db.GetLinkedIdentity("sub-1", "google")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("NotLinked", func(t *testing.T) {
		svc, db, _ := newTestOAuthService(t, googleStub("sub-1", "alice@example.com"))

		user := createRBACUser(t, db, "alice")
		err := svc.Detach(user.ID, "google")
		assert.ErrorIs(t, err, ErrIdentityNotLinked)
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		svc, db, _ := newTestOAuthService(t, googleStub("sub-1", "alice@example.com"))

		user := createRBACUser(t, db, "alice")
		err := svc.Detach(user.ID, "unknown")
		assert.ErrorIs(t, err, oauth.ErrUnknownProvider)
	})

	t.Run("DetachThenSignInRegistersAgain", func(t *testing.T) {
		svc, db, _ := newTestOAuthService(t, googleStub("sub-1", "alice@example.com"))

		first, err := svc.Callback(ctx, "google", "code", "", "test-agent")
		require.NoError(t, err)
		require.True(t, first.Registered)

		user, err := db.GetUserByLogin("alice@example.com")
		require.NoError(t, err)
		require.NoError(t, svc.Detach(user.ID, "google"))

		// The identity is free again; anonymous sign-in conflicts with the
		// existing login instead of silently re-linking
		_, err = svc.Callback(ctx, "google", "code", "", "test-agent")
		assert.Error(t, err)
	})
}

var _ oauth.Provider = (*stubProvider)(nil)

package token

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-authgate/authd/internal/cache"
	"github.com/go-authgate/authd/internal/config"
	"github.com/go-authgate/authd/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUserSource serves users from a map, standing in for the store.
type stubUserSource struct {
	users map[string]*models.User
}

func (s *stubUserSource) GetUserByID(id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return user, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:              "test-secret",
		BaseURL:                "http://localhost:8080",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
	}
}

func newTestService(cfg *config.Config, user *models.User) (*Service, *stubUserSource) {
	source := &stubUserSource{users: map[string]*models.User{}}
	if user != nil {
		source.users[user.ID] = user
	}
	return NewService(cfg, cache.NewMemoryCache[string](), source), source
}

func testUser(roles ...string) *models.User {
	user := &models.User{
		ID:    uuid.New().String(),
		Login: "alice",
	}
	for i, name := range roles {
		user.Roles = append(user.Roles, models.Role{ID: int64(i + 1), Name: name})
	}
	return user
}

func TestIssueAndValidate(t *testing.T) {
	ctx := context.Background()
	user := testUser("user", "editor")
	svc, _ := newTestService(testConfig(), user)

	pair, err := svc.Issue(ctx, user, "test-agent")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.Validate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Login)
	assert.Equal(t, []string{"user", "editor"}, claims.Roles)
	assert.False(t, claims.IsSuperuser)
	assert.Equal(t, TypeAccess, claims.TokenType)
	assert.True(t, claims.HasRole("editor"))
	assert.False(t, claims.HasRole("admin"))
}

func TestValidateRejectsRefreshToken(t *testing.T) {
	ctx := context.Background()
	user := testUser()
	svc, _ := newTestService(testConfig(), user)

	pair, err := svc.Issue(ctx, user, "test-agent")
	require.NoError(t, err)

	_, err = svc.Validate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	ctx := context.Background()
	user := testUser()
	svc, _ := newTestService(testConfig(), user)

	pair, err := svc.Issue(ctx, user, "test-agent")
	require.NoError(t, err)

	_, err = svc.Validate(ctx, pair.AccessToken+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	user := testUser()
	svc, _ := newTestService(testConfig(), user)

	otherCfg := testConfig()
	otherCfg.JWTSecret = "other-secret"
	other, _ := newTestService(otherCfg, user)

	pair, err := other.Issue(ctx, user, "test-agent")
	require.NoError(t, err)

	_, err = svc.Validate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpiredToken(t *testing.T) {
	ctx := context.Background()
	user := testUser()
	cfg := testConfig()
	cfg.AccessTokenExpiration = -time.Minute
	svc, _ := newTestService(cfg, user)

	pair, err := svc.Issue(ctx, user, "test-agent")
	require.NoError(t, err)

	_, err = svc.Validate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	user := testUser()
	svc, _ := newTestService(testConfig(), user)

	pair, err := svc.Issue(ctx, user, "test-agent")
	require.NoError(t, err)

	claims, err := svc.Validate(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, claims, "test-agent"))

	// Access token is denylisted even though its signature still verifies
	_, err = svc.Validate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrRevokedToken)

	// The device's refresh entry is gone with it
	_, err = svc.Refresh(ctx, pair.RefreshToken, "test-agent")
	assert.ErrorIs(t, err, ErrRefreshMismatch)
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	user := testUser("user")
	svc, _ := newTestService(testConfig(), user)

	pair, err := svc.Issue(ctx, user, "test-agent")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken, "test-agent")
	require.NoError(t, err)
	require.NotEmpty(t, rotated.AccessToken)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The new pair validates
	_, err = svc.Validate(ctx, rotated.AccessToken)
	require.NoError(t, err)

	// The rotated token rotates again
	again, err := svc.Refresh(ctx, rotated.RefreshToken, "test-agent")
	require.NoError(t, err)

	// Replaying a consumed refresh token fails: rotation is single-use
	_, err = svc.Refresh(ctx, pair.RefreshToken, "test-agent")
	assert.ErrorIs(t, err, ErrRefreshMismatch)

	// The replay burned the device slot, so even the current token is
	// rejected until the device logs in again
	_, err = svc.Refresh(ctx, again.RefreshToken, "test-agent")
	assert.ErrorIs(t, err, ErrRefreshMismatch)
}

func TestRefreshConcurrentSingleUse(t *testing.T) {
	ctx := context.Background()
	user := testUser("user")
	svc, _ := newTestService(testConfig(), user)

	pair, err := svc.Issue(ctx, user, "test-agent")
	require.NoError(t, err)

	const refreshers = 8
	start := make(chan struct{})
	results := make(chan error, refreshers)

	var wg sync.WaitGroup
	for i := 0; i < refreshers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Refresh(ctx, pair.RefreshToken, "test-agent")
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	var succeeded, conflicted int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrRefreshMismatch):
			conflicted++
		default:
			t.Fatalf("unexpected refresh error: %v", err)
		}
	}

	// Concurrent rotation of the same token admits exactly one winner
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, refreshers-1, conflicted)
}

func TestRefreshSnapshotsCurrentRoles(t *testing.T) {
	ctx := context.Background()
	user := testUser("user")
	svc, source := newTestService(testConfig(), user)

	pair, err := svc.Issue(ctx, user, "test-agent")
	require.NoError(t, err)

	// Role set changes between issuance and refresh
	updated := testUser("user", "admin")
	updated.ID = user.ID
	source.users[user.ID] = updated

	rotated, err := svc.Refresh(ctx, pair.RefreshToken, "test-agent")
	require.NoError(t, err)

	claims, err := svc.Validate(ctx, rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "admin"}, claims.Roles)
}

func TestRefreshPerDevice(t *testing.T) {
	ctx := context.Background()
	user := testUser()
	svc, _ := newTestService(testConfig(), user)

	phone, err := svc.Issue(ctx, user, "phone")
	require.NoError(t, err)
	laptop, err := svc.Issue(ctx, user, "laptop")
	require.NoError(t, err)

	// A device's refresh token is bound to that device's slot, and the
	// mismatch burns the slot it was presented against
	_, err = svc.Refresh(ctx, phone.RefreshToken, "laptop")
	assert.ErrorIs(t, err, ErrRefreshMismatch)

	_, err = svc.Refresh(ctx, laptop.RefreshToken, "laptop")
	assert.ErrorIs(t, err, ErrRefreshMismatch)

	// The phone slot is untouched
	_, err = svc.Refresh(ctx, phone.RefreshToken, "phone")
	assert.NoError(t, err)
}

func TestRefreshUnknownUser(t *testing.T) {
	ctx := context.Background()
	user := testUser()
	svc, source := newTestService(testConfig(), user)

	pair, err := svc.Issue(ctx, user, "test-agent")
	require.NoError(t, err)

	delete(source.users, user.ID)

	_, err = svc.Refresh(ctx, pair.RefreshToken, "test-agent")
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	user := testUser()
	svc, _ := newTestService(testConfig(), user)

	pair, err := svc.Issue(ctx, user, "test-agent")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.AccessToken, "test-agent")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueOverwritesDeviceSlot(t *testing.T) {
	ctx := context.Background()
	user := testUser()
	svc, _ := newTestService(testConfig(), user)

	first, err := svc.Issue(ctx, user, "test-agent")
	require.NoError(t, err)
	second, err := svc.Issue(ctx, user, "test-agent")
	require.NoError(t, err)

	// Only the latest refresh token for the device is accepted
	_, err = svc.Refresh(ctx, second.RefreshToken, "test-agent")
	assert.NoError(t, err)

	_, err = svc.Refresh(ctx, first.RefreshToken, "test-agent")
	assert.ErrorIs(t, err, ErrRefreshMismatch)
}

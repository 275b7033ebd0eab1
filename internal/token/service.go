package token

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/go-authgate/authd/internal/cache"
	"github.com/go-authgate/authd/internal/config"
	"github.com/go-authgate/authd/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type claim values
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the payload embedded in both access and refresh tokens. Roles
// and the superuser flag are a snapshot taken at issuance: a role change
// takes effect after the next refresh or login, which trades staleness for
// a store-free authorization check.
type Claims struct {
	UserID      string   `json:"user_id"`
	Login       string   `json:"login"`
	Roles       []string `json:"roles"`
	IsSuperuser bool     `json:"is_superuser"`
	TokenType   string   `json:"type"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claim's role snapshot contains the named role.
func (c *Claims) HasRole(name string) bool {
	for _, role := range c.Roles {
		if role == name {
			return true
		}
	}
	return false
}

// Pair is an access/refresh token pair.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserSource loads the token subject for re-issuance during refresh, so the
// new pair carries a fresh role snapshot.
type UserSource interface {
	GetUserByID(id string) (*models.User, error)
}

// Service issues, validates, refreshes and revokes HS256-signed token
// pairs. The cache is the source of truth for refresh validity (value
// match) and access revocation (jti denylist), not the signature alone.
type Service struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	cache      cache.Cache[string]
	users      UserSource
}

func NewService(cfg *config.Config, c cache.Cache[string], users UserSource) *Service {
	return &Service{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.BaseURL,
		accessTTL:  cfg.AccessTokenExpiration,
		refreshTTL: cfg.RefreshTokenExpiration,
		cache:      c,
		users:      users,
	}
}

func refreshKey(userID, device string) string {
	return fmt.Sprintf("refresh:%s_%s", userID, device)
}

func denyKey(jti string) string {
	return "revoked:" + jti
}

func (s *Service) sign(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:      user.ID,
		Login:       user.Login,
		Roles:       user.RoleNames(),
		IsSuperuser: user.IsSuperuser,
		TokenType:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return signed, nil
}

// Issue mints a new access/refresh pair for the user on the given device
// and stores the refresh token value under (user, device) with the refresh
// TTL. Issuing for a device overwrites that device's previous refresh
// entry.
func (s *Service) Issue(ctx context.Context, user *models.User, device string) (*Pair, error) {
	accessToken, err := s.sign(user, TypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.sign(user, TypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, refreshKey(user.ID, device), refreshToken, s.refreshTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &Pair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// parse verifies signature and expiry and checks the token type claim.
func (s *Service) parse(tokenString, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Validate verifies an access token and rejects it if its jti is on the
// denylist. Revocation is a denylist lookup: presence means revoked.
func (s *Service) Validate(ctx context.Context, accessToken string) (*Claims, error) {
	claims, err := s.parse(accessToken, TypeAccess)
	if err != nil {
		return nil, err
	}

	_, err = s.cache.Get(ctx, denyKey(claims.ID))
	switch {
	case err == nil:
		return nil, ErrRevokedToken
	case errors.Is(err, cache.ErrCacheMiss):
		return claims, nil
	default:
		return nil, fmt.Errorf("revocation check failed: %w", err)
	}
}

// Refresh rotates a refresh token: the stored value for (user, device) is
// atomically taken from the cache and must exactly match the presented
// token before a fresh pair is issued. Rotation is single-use; of any
// concurrent refresh calls for the same device, at most one takes the
// stored value and the rest fail with ErrRefreshMismatch. A token that
// fails the match still consumes the slot, so a replayed old token forces
// re-login on that device.
func (s *Service) Refresh(ctx context.Context, refreshToken, device string) (*Pair, error) {
	claims, err := s.parse(refreshToken, TypeRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(claims.UserID)
	if err != nil {
		return nil, ErrUnknownUser
	}

	stored, err := s.cache.Take(ctx, refreshKey(user.ID, device))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrRefreshMismatch
		}
		return nil, fmt.Errorf("refresh lookup failed: %w", err)
	}

	// Constant-time comparison to avoid a timing side channel.
	if subtle.ConstantTimeCompare([]byte(stored), []byte(refreshToken)) != 1 {
		return nil, ErrRefreshMismatch
	}

	return s.Issue(ctx, user, device)
}

// Revoke puts the access token's jti on the denylist for the remainder of
// its validity window (bounding denylist growth) and drops the stored
// refresh entry for (user, device).
func (s *Service) Revoke(ctx context.Context, claims *Claims, device string) error {
	if claims.ExpiresAt != nil {
		if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
			if err := s.cache.Set(ctx, denyKey(claims.ID), "", ttl); err != nil {
				return fmt.Errorf("failed to denylist token: %w", err)
			}
		}
	}

	if err := s.cache.Delete(ctx, refreshKey(claims.UserID, device)); err != nil {
		return fmt.Errorf("failed to drop refresh token: %w", err)
	}
	return nil
}

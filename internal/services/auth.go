package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/go-authgate/authd/internal/metrics"
	"github.com/go-authgate/authd/internal/models"
	"github.com/go-authgate/authd/internal/store"
	"github.com/go-authgate/authd/internal/token"
	"github.com/go-authgate/authd/internal/util"

	"github.com/google/uuid"
)

// AuthService implements registration, direct login, credential changes and
// login history. Every successful authentication appends a Session record
// before tokens are issued.
type AuthService struct {
	store   *store.Store
	tokens  *token.Service
	metrics metrics.Recorder
}

func NewAuthService(s *store.Store, tokens *token.Service, m metrics.Recorder) *AuthService {
	return &AuthService{
		store:   s,
		tokens:  tokens,
		metrics: m,
	}
}

// Register creates a new user after password policy and login uniqueness
// checks. The password is stored only as a bcrypt hash.
func (s *AuthService) Register(ctx context.Context, login, password string) (*models.User, error) {
	if err := util.ValidatePassword(password); err != nil {
		return nil, err
	}

	user := &models.User{
		ID:    uuid.New().String(),
		Login: login,
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

	s.metrics.RecordRegistration()
	log.Printf("[Auth] Registered user: %s", user.Login)
	return user, nil
}

// Login verifies credentials, appends a Session for the device and issues a
// token pair. A missing user and a wrong password are indistinguishable to
// the caller.
func (s *AuthService) Login(
	ctx context.Context,
	login, password, userAgent string,
) (*token.Pair, error) {
	user, err := s.store.GetUserByLogin(login)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.metrics.RecordLogin(false)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.CheckPassword(password) {
		s.metrics.RecordLogin(false)
		return nil, ErrInvalidCredentials
	}

	if _, err := s.store.CreateSession(user.ID, userAgent); err != nil {
		return nil, fmt.Errorf("failed to record session: %w", err)
	}

	pair, err := s.tokens.Issue(ctx, user, userAgent)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLogin(true)
	s.metrics.RecordTokenIssued()
	return pair, nil
}

// ChangeCredentials updates the user's login and password. A new login
// already used by another user and a password equal to the current one are
// both Conflict outcomes.
func (s *AuthService) ChangeCredentials(
	ctx context.Context,
	userID, newLogin, newPassword string,
) (*models.User, error) {
	user, err := s.store.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if newLogin != user.Login {
		taken, err := s.store.LoginExists(newLogin)
		if err != nil {
			return nil, fmt.Errorf("failed to check login: %w", err)
		}
		if taken {
			return nil, ErrLoginTaken
		}
	}

	if user.CheckPassword(newPassword) {
		return nil, ErrSamePassword
	}
	if err := util.ValidatePassword(newPassword); err != nil {
		return nil, err
	}

	user.Login = newLogin
	if err := user.SetPassword(newPassword); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.store.UpdateUser(user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrLoginTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	log.Printf("[Auth] Credentials changed for user: %s", user.ID)
	return user, nil
}

// History returns a page of the user's login history, newest first.
func (s *AuthService) History(
	ctx context.Context,
	userID string,
	page, pageSize int,
) ([]models.Session, store.PaginationResult, error) {
	params := store.NewPaginationParams(page, pageSize, "")
	return s.store.ListSessionsByUser(userID, params)
}

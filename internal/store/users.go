package store

import (
	"strings"

	"github.com/go-authgate/authd/internal/models"
)

// User operations

func (s *Store) CreateUser(user *models.User) error {
	return translate(s.db.Create(user).Error)
}

// GetUserByID returns the user with their current role set preloaded.
func (s *Store) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Roles").Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) GetUserByLogin(login string) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Roles").Where("login = ?", login).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// LoginExists reports whether a user with the given login exists.
func (s *Store) LoginExists(login string) (bool, error) {
	var count int64
	err := s.db.Model(&models.User{}).Where("login = ?", login).Count(&count).Error
	return count > 0, err
}

// UpdateUser persists login/password changes. A duplicate login surfaces
// as ErrConflict.
func (s *Store) UpdateUser(user *models.User) error {
	return translate(s.db.Model(user).Updates(map[string]any{
		"login":         user.Login,
		"password_hash": user.PasswordHash,
	}).Error)
}

// ListUsersWithRoles returns a page of users ordered by login, with their
// roles preloaded. A non-empty search filters by case-insensitive login
// prefix.
func (s *Store) ListUsersWithRoles(
	params PaginationParams,
) ([]models.User, PaginationResult, error) {
	query := s.db.Model(&models.User{})
	if params.Search != "" {
		prefix := strings.ToLower(params.Search)
		query = query.Where("lower(login) LIKE ?", prefix+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, PaginationResult{}, err
	}

	var users []models.User
	err := query.Preload("Roles").
		Order("login").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&users).Error
	if err != nil {
		return nil, PaginationResult{}, err
	}

	return users, CalculatePagination(total, params.Page, params.PageSize), nil
}

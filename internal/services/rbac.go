package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-authgate/authd/internal/models"
	"github.com/go-authgate/authd/internal/store"
)

// RBACService implements role administration and role-to-user assignment.
// Name uniqueness and assignment-set semantics are enforced by the store's
// constraints; this layer maps them to the Conflict/NotFound taxonomy.
type RBACService struct {
	store *store.Store
}

func NewRBACService(s *store.Store) *RBACService {
	return &RBACService{store: s}
}

func (s *RBACService) ListRoles() ([]models.Role, error) {
	return s.store.ListRoles()
}

func (s *RBACService) CreateRole(name string) (*models.Role, error) {
	if name == "" || len(name) > 32 {
		return nil, ErrInvalidRoleName
	}

	role := &models.Role{Name: name}
	if err := s.store.CreateRole(role); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrRoleExists
		}
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	log.Printf("[RBAC] Created role: %s", name)
	return role, nil
}

func (s *RBACService) RenameRole(id int64, name string) (*models.Role, error) {
	if name == "" || len(name) > 32 {
		return nil, ErrInvalidRoleName
	}

	role, err := s.store.GetRoleByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to load role: %w", err)
	}

	role.Name = name
	if err := s.store.UpdateRole(role); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrRoleExists
		}
		return nil, fmt.Errorf("failed to rename role: %w", err)
	}
	return role, nil
}

// DeleteRole removes the role and cascades its user assignments.
func (s *RBACService) DeleteRole(id int64) error {
	role, err := s.store.GetRoleByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("failed to load role: %w", err)
	}

	if err := s.store.DeleteRole(role); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	log.Printf("[RBAC] Deleted role: %s", role.Name)
	return nil
}

// Grant adds the role to the user's assignment set. Granting a role the
// user already holds is a Conflict.
func (s *RBACService) Grant(userID string, roleID int64) (*models.User, error) {
	user, role, err := s.loadUserAndRole(userID, roleID)
	if err != nil {
		return nil, err
	}

	if user.HasRole(role.Name) {
		return nil, ErrRoleAlreadyGranted
	}
	if err := s.store.GrantRole(user, role); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrRoleAlreadyGranted
		}
		return nil, fmt.Errorf("failed to grant role: %w", err)
	}

	log.Printf("[RBAC] Granted role %s to user %s", role.Name, user.Login)
	return s.reload(userID)
}

// Revoke removes the role from the user's assignment set. Revoking a role
// the user does not hold is a Conflict.
func (s *RBACService) Revoke(userID string, roleID int64) (*models.User, error) {
	user, role, err := s.loadUserAndRole(userID, roleID)
	if err != nil {
		return nil, err
	}

	if !user.HasRole(role.Name) {
		return nil, ErrRoleNotGranted
	}
	if err := s.store.RevokeRole(user, role); err != nil {
		return nil, fmt.Errorf("failed to revoke role: %w", err)
	}

	log.Printf("[RBAC] Revoked role %s from user %s", role.Name, user.Login)
	return s.reload(userID)
}

// ListUsers returns a page of users with their roles, optionally filtered
// by case-insensitive login prefix.
func (s *RBACService) ListUsers(
	search string,
	page, pageSize int,
) ([]models.User, store.PaginationResult, error) {
	params := store.NewPaginationParams(page, pageSize, search)
	return s.store.ListUsersWithRoles(params)
}

func (s *RBACService) loadUserAndRole(
	userID string,
	roleID int64,
) (*models.User, *models.Role, error) {
	user, err := s.store.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	role, err := s.store.GetRoleByID(roleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrRoleNotFound
		}
		return nil, nil, fmt.Errorf("failed to load role: %w", err)
	}

	return user, role, nil
}

func (s *RBACService) reload(userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	return user, nil
}

package store

import (
	"github.com/go-authgate/authd/internal/models"

	"gorm.io/gorm"
)

// Role operations

func (s *Store) CreateRole(role *models.Role) error {
	return translate(s.db.Create(role).Error)
}

func (s *Store) GetRoleByID(id int64) (*models.Role, error) {
	var role models.Role
	if err := s.db.Where("id = ?", id).First(&role).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (s *Store) ListRoles() ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.Order("id").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *Store) UpdateRole(role *models.Role) error {
	return translate(s.db.Model(role).Update("name", role.Name).Error)
}

// DeleteRole removes a role and clears its user assignments in one
// transaction.
func (s *Store) DeleteRole(role *models.Role) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(role).Association("Users").Clear(); err != nil {
			return err
		}
		return tx.Delete(role).Error
	})
}

// GrantRole adds a role to the user's assignment set. The join table's
// composite primary key keeps the relation a set under concurrent grants;
// duplicate-grant detection against the loaded role set is the caller's job.
func (s *Store) GrantRole(user *models.User, role *models.Role) error {
	return translate(s.db.Model(user).Association("Roles").Append(role))
}

// RevokeRole removes a role from the user's assignment set.
func (s *Store) RevokeRole(user *models.User, role *models.Role) error {
	return translate(s.db.Model(user).Association("Roles").Delete(role))
}

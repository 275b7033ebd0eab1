package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID           string `gorm:"primaryKey"`
	Login        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	IsSuperuser  bool   `gorm:"not null;default:false"`

	Roles            []Role           `gorm:"many2many:users_roles"`
	Sessions         []Session        `gorm:"foreignKey:UserID"`
	LinkedIdentities []LinkedIdentity `gorm:"foreignKey:UserID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SetPassword hashes the plaintext password with bcrypt and stores the hash.
// The plaintext is never persisted.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether the plaintext password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// RoleNames returns the names of the user's roles for claim embedding.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return names
}

// HasRole reports whether the user currently holds the named role.
func (u *User) HasRole(name string) bool {
	for _, role := range u.Roles {
		if role.Name == name {
			return true
		}
	}
	return false
}

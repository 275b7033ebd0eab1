package models

// Default role names. RoleAdmin grants access to the RBAC administration
// endpoints; superusers bypass role checks entirely.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Role struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null;size:32"`

	Users []User `gorm:"many2many:users_roles"`
}

package models

import (
	"time"
)

// LinkedIdentity associates a local user with one external identity
// provider's subject id. A (SubjectID, Provider) pair maps to at most one
// local user, enforced by the composite unique index.
type LinkedIdentity struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	User      User   `gorm:"foreignKey:UserID"`
	SubjectID string `gorm:"not null;uniqueIndex:idx_identity_subject_provider,priority:1"`
	Provider  string `gorm:"not null;uniqueIndex:idx_identity_subject_provider,priority:2"`

	CreatedAt time.Time
}

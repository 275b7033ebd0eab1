package models

import (
	"time"
)

// Session is an append-only login history record, one per successful
// authentication. The (ID, AuthDate) composite identity keeps the table
// partitionable by time on Postgres.
type Session struct {
	ID        string    `gorm:"primaryKey"`
	AuthDate  time.Time `gorm:"primaryKey;not null"`
	UserID    string    `gorm:"index;not null"`
	User      User      `gorm:"foreignKey:UserID"`
	UserAgent string
}

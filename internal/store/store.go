package store

import (
	"fmt"
	"log"

	"github.com/go-authgate/authd/internal/models"
	"github.com/go-authgate/authd/internal/util"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

// New opens the database for the configured driver and migrates the schema.
func New(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Map driver-specific unique constraint failures to
		// gorm.ErrDuplicatedKey so they surface as ErrConflict.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Session{},
		&models.LinkedIdentity{},
	); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// EnsureSuperuser creates the initial superuser with a random generated
// password when no superuser exists yet. The password is logged exactly once.
func (s *Store) EnsureSuperuser(login string) error {
	var count int64
	if err := s.db.Model(&models.User{}).
		Where("is_superuser = ?", true).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password, err := util.GeneratePassword(16)
	if err != nil {
		return err
	}
	user := &models.User{
		ID:          uuid.New().String(),
		Login:       login,
		IsSuperuser: true,
	}
	if err := user.SetPassword(password); err != nil {
		return err
	}
	if err := s.db.Create(user).Error; err != nil {
		return translate(err)
	}
	log.Printf("Created superuser: %s / %s", login, password)
	return nil
}

// Health checks the database connection
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// DB returns the underlying GORM database connection (for transactions)
func (s *Store) DB() *gorm.DB {
	return s.db
}

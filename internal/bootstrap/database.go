package bootstrap

import (
	"fmt"

	"github.com/go-authgate/authd/internal/config"
	"github.com/go-authgate/authd/internal/store"
)

// initializeDatabase creates the database connection, runs migrations and
// seeds the superuser account on first start.
func initializeDatabase(cfg *config.Config) (*store.Store, error) {
	db, err := store.New(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.EnsureSuperuser(cfg.SuperuserLogin); err != nil {
		return nil, fmt.Errorf("failed to ensure superuser: %w", err)
	}

	return db, nil
}

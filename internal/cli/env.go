// Package cli implements the learnpathctl commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/jgirmay/learnpath/pkg/config"
	"github.com/jgirmay/learnpath/pkg/database"
	"github.com/jgirmay/learnpath/pkg/logging"
	"github.com/jgirmay/learnpath/pkg/repository"
)

// env is the state shared by commands that touch the database.
type env struct {
	cfg      *config.Config
	logger   *logging.Logger
	db       *gorm.DB
	registry *repository.Registry
}

// openEnv loads configuration, connects and migrates the database.
func openEnv(cmd *cobra.Command) (*env, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := os.Setenv("LEARNPATH_CONFIG", path); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	logger, err := logging.NewLogger(logging.LogLevel(cfg.Logging.Level), cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return nil, err
	}

	registry := repository.NewRegistry(db)
	if err := registry.Initialize(); err != nil {
		database.Close(db)
		return nil, err
	}

	return &env{cfg: cfg, logger: logger, db: db, registry: registry}, nil
}

func (e *env) close() {
	e.registry.Close()
	e.logger.Sync()
}

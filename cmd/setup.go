package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/scanarr/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the config file from the embedded template when it is missing, then
// initializes the history database and runs migrations.
//
// With --rollback it only reverts the most recent migration.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("rollback") {
		return r.rollback()
	}

	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("config file exists", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.writePlain("✓ Config file created: %s\n", configPath)
	}

	if r.config.Database.Path == "" {
		r.writePlain("Import history disabled (database.path is empty)\n")
		return nil
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	applied, err := shared.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("✓ Database ready: %s (%d migrations applied)\n", r.config.Database.Path, applied)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set lidarr.url and lidarr.api_key in %s\n", configPath)
	r.writePlain("2. Run 'scanarr check' to verify the root folder and profiles\n")
	return nil
}

func (r *Runner) rollback() error {
	if r.config.Database.Path == "" {
		return fmt.Errorf("%w: database.path is empty", shared.ErrMissingConfig)
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	r.logger.Info("rolling back latest migration", "path", r.config.Database.Path)
	if err := shared.RollbackMigration(db); err != nil {
		return err
	}

	r.writePlain("✓ Rolled back the latest migration on %s\n", r.config.Database.Path)
	return nil
}

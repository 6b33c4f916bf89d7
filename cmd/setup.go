package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/traxyt/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the config template when missing and initializes the database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load created config: %w", err)
		}
		r.config = config
		r.writePlain("✓ Wrote %s\n", configPath)
	}

	if cmd.Bool("rollback") {
		return r.rollback()
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	if _, err := r.results(); err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
	return nil
}

func (r *Runner) rollback() error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}
	r.logger.Info("rolled back latest migration", "path", r.config.Database.Path)
	return r.writePlain("✓ Rolled back the latest migration\n")
}

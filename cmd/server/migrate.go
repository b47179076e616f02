package main

import (
	"context"
	"errors"
	"time"

	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"driver_rating/internal/config"
	"driver_rating/internal/logger"
	"driver_rating/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if _, err := logger.Setup(cfg.Log.Level, cfg.Log.File); err != nil {
			return err
		}
		if cfg.DB.Driver == config.DriverMemory {
			return errors.New("DB_DRIVER=memory has no schema to migrate")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		db, err := config.OpenDB(ctx, cfg)
		if err != nil {
			return err
		}
		gs := store.NewGorm(db)
		defer gs.Close()

		if err := store.Migrate(db); err != nil {
			return err
		}
		logrus.Info("database schema migrated")
		return nil
	},
}

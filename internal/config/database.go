package config

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq" // registers the "postgres" database/sql driver
	logrus "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"driver_rating/internal/logger"
)

const connectTimeout = 30 * time.Second

// OpenDB connects to PostgreSQL through pgx (default) or lib/pq, retrying with
// exponential backoff while the database comes up.
func OpenDB(ctx context.Context, cfg Config) (*gorm.DB, error) {
	dsn := cfg.DB.DSN(cfg.Env)

	var dialector gorm.Dialector
	switch cfg.DB.Driver {
	case DriverPgx:
		dialector = postgres.Open(dsn)
	case DriverPostgres:
		dialector = postgres.New(postgres.Config{DriverName: "postgres", DSN: dsn})
	default:
		return nil, fmt.Errorf("driver %q has no SQL database", cfg.DB.Driver)
	}

	gormCfg := &gorm.Config{Logger: logger.Gorm()}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = connectTimeout

	var db *gorm.DB
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		opened, err := gorm.Open(dialector, gormCfg)
		if err != nil {
			logrus.WithError(err).WithField("attempt", attempt).Warn("database not reachable yet")
			return err
		}
		db = opened
		return nil
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	logrus.WithFields(logrus.Fields{
		"driver":   cfg.DB.Driver,
		"attempts": attempt,
	}).Info("database connected")
	return db, nil
}

// Package database opens the postgres connection pool behind the repositories.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/mytheresa/go-catalog-analytics/app/config"
	"github.com/mytheresa/go-catalog-analytics/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to postgres through the configured database/sql driver,
// applies the pool settings and pings the server.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	dialector := postgres.New(postgres.Config{
		DriverName: cfg.Driver,
		DSN:        cfg.DSN(),
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(logger, cfg.LogSQL, time.Duration(cfg.SlowQueryMS)*time.Millisecond),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connected", "driver", cfg.Driver, "host", cfg.Host, "database", cfg.Name)
	return db, nil
}

// Migrate creates or updates the catalog tables.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Ping reports whether the database answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

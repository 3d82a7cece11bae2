package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/sjperalta/bitacora-api/internal/models"
	"github.com/sjperalta/bitacora-api/pkg/logger"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrations returns the PostgreSQL migration files
func Migrations() fs.FS {
	sub, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrate brings the schema up to date. PostgreSQL runs the versioned goose
// migrations; SQLite (dev and tests) is auto-migrated from the models.
func Migrate(ctx context.Context, db *gorm.DB, driver string) error {
	switch driver {
	case DriverPostgres:
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database instance: %w", err)
		}
		provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, Migrations())
		if err != nil {
			return fmt.Errorf("goose new provider: %w", err)
		}
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
		for _, r := range results {
			logger.Info("Migration applied", "version", r.Source.Version, "path", r.Source.Path, "duration", r.Duration)
		}
		return nil
	case DriverSQLite:
		if err := db.WithContext(ctx).AutoMigrate(models.AllModels()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
}

// MigrationStatus lists applied and pending PostgreSQL migrations
func MigrationStatus(ctx context.Context, db *gorm.DB) ([]*goose.MigrationStatus, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, Migrations())
	if err != nil {
		return nil, fmt.Errorf("goose new provider: %w", err)
	}
	return provider.Status(ctx)
}

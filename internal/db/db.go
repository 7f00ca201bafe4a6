package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Register the postgres driver and the file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/go-commandes/internal/catalog"
	"github.com/diewo77/go-commandes/internal/models"
)

const (
	connectAttempts = 10
	connectDelay    = 2 * time.Second
)

// MigrationsDir is the golang-migrate source used when SQL migrations are enabled.
var MigrationsDir = "file://migrations"

// Connect opens the database behind dsn, retrying while postgres starts up.
func Connect(ctx context.Context, dsn string, debug bool) (*gorm.DB, error) {
	dsn = NormalizeDSN(dsn)
	if dsn == "" {
		return nil, errors.New("DATABASE_DSN is empty")
	}
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	var (
		gdb *gorm.DB
		err error
	)
	for i := 0; i < connectAttempts; i++ {
		gdb, err = gorm.Open(dialector(dsn), cfg)
		if err == nil {
			err = gdb.WithContext(ctx).Exec("SELECT 1").Error
		}
		if err == nil {
			break
		}
		slog.Warn("database not ready, retrying", "attempt", i+1, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectDelay):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	slog.Info("database connected", "dsn", MaskDSN(dsn))
	return gdb, nil
}

func dialector(dsn string) gorm.Dialector {
	if IsSQLite(dsn) {
		return sqlite.Open(sqlitePath(dsn))
	}
	return postgres.Open(dsn)
}

// Tables lists every model owned by the application.
func Tables() []any {
	return append([]any{&models.User{}}, catalog.Models()...)
}

// Migrate brings the schema up to date: golang-migrate SQL files when useSQL
// is set, AutoMigrate otherwise.
func Migrate(gdb *gorm.DB, dsn string, useSQL bool) error {
	if useSQL {
		if IsSQLite(dsn) {
			return errors.New("sql migrations require postgres")
		}
		if err := runSQLMigrations(ToURLDSN(NormalizeDSN(dsn))); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range Tables() {
			if err := gdb.AutoMigrate(m); err != nil {
				return fmt.Errorf("automigrate %T: %w", m, err)
			}
		}
	}
	for _, table := range []string{"users", "categories", "dishes", "articles", "recipes", "reservations"} {
		if !gdb.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

func runSQLMigrations(dsn string) error {
	m, err := migrate.New(MigrationsDir, dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Seed inserts the default categories that are missing. Running it twice is harmless.
func Seed(ctx context.Context, gdb *gorm.DB) error {
	tx := gdb.WithContext(ctx)
	for _, name := range models.DefaultCategories {
		c := models.Category{Name: name}
		if err := tx.Where("name = ?", name).FirstOrCreate(&c).Error; err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
	}
	return nil
}

package db

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"

	"github.com/pressly/goose/v3"
)

// dialectMap maps database drivers to goose dialects and migration directories
var dialectMap = map[string]string{
	"sqlite": "sqlite3",
	"pgx":    "postgres",
}

var migrationDirs = map[string]string{
	"sqlite3":  "migrations/sqlite",
	"postgres": "migrations/postgres",
}

func getDialect(driver string) string {
	dialect, ok := dialectMap[driver]
	if ok {
		return dialect
	}
	return driver
}

// setupGoose configures goose with the dialect and embedded migrations for driver
func setupGoose(driver string) error {
	dialect := getDialect(driver)

	dir, ok := migrationDirs[dialect]
	if !ok {
		return fmt.Errorf("no migrations for driver %q", driver)
	}

	err := goose.SetDialect(dialect)
	if err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	migrationsDir, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("failed to get migrations directory: %w", err)
	}

	goose.SetBaseFS(migrationsDir)
	goose.SetLogger(goose.NopLogger())
	return nil
}

func RunMigrations(db *sql.DB, driver string) error {
	err := setupGoose(driver)
	if err != nil {
		return err
	}

	err = goose.Up(db, ".")
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("migrations completed successfully")
	return nil
}

func MigrateDown(db *sql.DB, driver string) error {
	err := setupGoose(driver)
	if err != nil {
		return err
	}

	err = goose.Down(db, ".")
	if err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	slog.Info("rolled back one migration")
	return nil
}

func MigrationStatus(db *sql.DB, driver string) error {
	err := setupGoose(driver)
	if err != nil {
		return err
	}

	goose.SetLogger(log.New(os.Stdout, "", 0))
	return goose.Status(db, ".")
}

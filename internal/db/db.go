package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func Init(driver, connection string) (*sqlx.DB, error) {
	// SQLite: create data directory if needed
	if driver == "sqlite" {
		path, _, _ := strings.Cut(strings.TrimPrefix(connection, "file:"), "?")
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		connection = sqliteDSN(connection)
	}

	db, err := sqlx.Connect(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if driver == "sqlite" {
		var enabled int
		err = db.Get(&enabled, `PRAGMA foreign_keys`)
		if err != nil {
			return nil, fmt.Errorf("failed to read foreign_keys pragma: %w", err)
		}
		if enabled != 1 {
			db.Close()
			return nil, fmt.Errorf("sqlite foreign keys are disabled in DB_CONNECTION")
		}
	}

	slog.Info("database connected", "driver", driver)
	return db, nil
}

// sqliteDSN adds the foreign_keys pragma unless the DSN already sets it.
// The driver applies DSN pragmas to every pooled connection.
func sqliteDSN(connection string) string {
	if strings.Contains(connection, "foreign_keys") {
		return connection
	}
	sep := "?"
	if strings.Contains(connection, "?") {
		sep = "&"
	}
	return connection + sep + "_pragma=foreign_keys(1)"
}

func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique constraint violation
// (works for both SQLite and PostgreSQL).
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/isdelr/auth-service/internal/config"
	"github.com/isdelr/auth-service/internal/database/migrations"
	"github.com/isdelr/auth-service/internal/repository"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool for the given driver.
func New(ctx context.Context, driver, dataSourceName string) (*sql.DB, error) {
	var sqlDriver string
	switch driver {
	case config.DriverPostgres:
		sqlDriver = "pgx"
	case config.DriverSQLite:
		sqlDriver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if driver == config.DriverSQLite {
		// SQLite allows a single writer; an in-memory database also lives
		// only as long as its one connection.
		db.SetMaxOpenConns(1)
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded goose migrations.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(dialect, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Dialect maps a configured driver to the repository dialect.
func Dialect(driver string) repository.Dialect {
	if driver == config.DriverPostgres {
		return repository.DialectPostgres
	}
	return repository.DialectSQLite
}

func gooseDialect(driver string) (goose.Dialect, error) {
	switch driver {
	case config.DriverPostgres:
		return goose.DialectPostgres, nil
	case config.DriverSQLite:
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// file: db/schema.go

package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"go-bank-ledger/logger"
	"io/fs"
	"path"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed migrations
var migrationFS embed.FS

// Schema is an explicit set of table definitions. Migrations holds one
// directory per driver name under Dir.
type Schema struct {
	Name       string
	Migrations fs.FS
	Dir        string
}

// BankSchema defines the accounts and transactions tables.
var BankSchema = Schema{
	Name:       "bank",
	Migrations: migrationFS,
	Dir:        "migrations",
}

// ApplySchema brings the store up to the latest schema version. Running it
// against a store that already has the schema is a no-op.
func ApplySchema(db *sql.DB, driver string, schema Schema) error {
	log := logger.Log.WithFields(logrus.Fields{
		"schema": schema.Name,
		"driver": driver,
	})

	src, err := iofs.New(schema.Migrations, path.Join(schema.Dir, driver))
	if err != nil {
		return fmt.Errorf("cannot load %s schema for %s: %w", schema.Name, driver, err)
	}
	defer src.Close()

	// mig.Close is not called: the sqlite3 driver closes db with it. The
	// postgres driver only holds its own connection and is closed directly.
	var target database.Driver
	switch driver {
	case "sqlite3":
		target, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case "postgres":
		var pg *postgres.Postgres
		if pg, err = postgresDriver(db); err == nil {
			defer pg.Close()
			target = pg
		}
	default:
		err = fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		return fmt.Errorf("cannot create migrate driver: %w", err)
	}

	mig, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		return fmt.Errorf("cannot create migrate instance: %w", err)
	}

	if err := mig.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug("Schema already up to date")
			return nil
		}
		log.WithError(err).Error("Failed to apply schema")
		return fmt.Errorf("failed to run migrate up: %w", err)
	}

	log.Info("Schema applied")
	return nil
}

// postgresDriver builds the migrate driver on a dedicated connection, so that
// closing the driver returns the connection to the pool and leaves db open.
func postgresDriver(db *sql.DB) (*postgres.Postgres, error) {
	ctx := context.Background()

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot reserve connection for migrations: %w", err)
	}

	pg, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		conn.Close()
		return nil, err
	}
	return pg, nil
}

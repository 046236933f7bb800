package db

import (
	"database/sql"
	"fmt"
	"go-bank-ledger/config"
	"go-bank-ledger/logger"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Open opens and pings the store named by cfg.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	log := logger.Log.WithField("driver", cfg.Driver)
	// postgres connection strings carry credentials and are never logged.
	if cfg.Driver == "sqlite3" {
		log = log.WithField("dsn", cfg.DSN)
	}
	log.Info("Attempting to connect to the database")

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		log.WithError(err).Error("Failed to open database connection")
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// A single file has a single writer.
	if cfg.Driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}

	if err = db.Ping(); err != nil {
		log.WithError(err).Error("Failed to ping database")
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connection established successfully")
	return db, nil
}

// InitConnection opens the store, materializes schema on it and returns the
// handle together with a factory for sessions bound to it. The caller closes
// the handle at shutdown.
func InitConnection(cfg config.DatabaseConfig, schema Schema) (*sql.DB, *SessionFactory, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, nil, err
	}

	if err := ApplySchema(db, cfg.Driver, schema); err != nil {
		db.Close()
		return nil, nil, err
	}

	return db, NewSessionFactory(db), nil
}

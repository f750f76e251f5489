// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/moov-io/sepa/pkg/config"

	"github.com/go-kit/kit/log"
	kitprom "github.com/go-kit/kit/metrics/prometheus"
	"github.com/lopezator/migrator"
	stdprom "github.com/prometheus/client_golang/prometheus"
)

var (
	dbConnections = kitprom.NewGaugeFrom(stdprom.GaugeOpts{
		Name: "database_connections",
		Help: "How many database connections and what status they're in.",
	}, []string{"provider", "state"})
)

// New establishes a database connection according to the configured provider.
// MySQL is used when configured, otherwise SQLite.
func New(ctx context.Context, logger log.Logger, cfg config.Database) (*sql.DB, error) {
	if cfg.MySQL != nil {
		logger.Log("database", "setting up mysql database provider")
		return mysqlConnection(logger, cfg.MySQL.Username, cfg.MySQL.GetPassword(), cfg.MySQL.Address, cfg.MySQL.Database).Connect(ctx)
	}
	if cfg.SQLite != nil {
		logger.Log("database", "setting up sqlite database provider")
		return sqliteConnection(logger, sqlitePath(cfg.SQLite.Path)).Connect(ctx)
	}
	return nil, errors.New("database: no provider configured")
}

func sqlitePath(path string) string {
	if path == "" || strings.Contains(path, "..") {
		// set default if empty or trying to escape
		// don't filepath.ABS to avoid full-fs reads
		path = "sepa.db"
	}
	return path
}

func execsql(name, raw string) *migrator.MigrationNoTx {
	return &migrator.MigrationNoTx{
		Name: name,
		Func: func(db *sql.DB) error {
			_, err := db.Exec(raw)
			return err
		},
	}
}

func migrate(db *sql.DB, migrations migrator.Option) error {
	m, err := migrator.New(migrations)
	if err != nil {
		return err
	}
	if err := m.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %v", err)
	}
	return nil
}

// reportStats samples the connection pool every second until ctx is done.
func reportStats(ctx context.Context, provider string, db *sql.DB) {
	t := time.NewTicker(1 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			stats := db.Stats()
			dbConnections.With("provider", provider, "state", "idle").Set(float64(stats.Idle))
			dbConnections.With("provider", provider, "state", "inuse").Set(float64(stats.InUse))
			dbConnections.With("provider", provider, "state", "open").Set(float64(stats.OpenConnections))
		}
	}
}

// UniqueViolation returns true when the provided error matches a database error
// for duplicate entries (violating a unique table constraint).
func UniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return MySQLUniqueViolation(err) || SqliteUniqueViolation(err)
}

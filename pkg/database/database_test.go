// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package database

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/moov-io/sepa/pkg/config"

	"github.com/go-kit/kit/log"
)

func TestSQLite__New(t *testing.T) {
	dir, err := ioutil.TempDir("", "sepa-database")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := New(ctx, log.NewNopLogger(), config.Database{
		SQLite: &config.SQLite{Path: filepath.Join(dir, "sepa.db")},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	// migrations are applied once
	if err := migrate(db, sqliteMigrations); err != nil {
		t.Fatal(err)
	}
	var n int
	if err := db.QueryRow(`select count(*) from messages;`).Scan(&n); err != nil || n != 0 {
		t.Errorf("n=%d error=%v", n, err)
	}
}

func TestNew__noProvider(t *testing.T) {
	if _, err := New(context.Background(), log.NewNopLogger(), config.Database{}); err == nil {
		t.Error("expected error")
	}
}

func TestSqlitePath(t *testing.T) {
	if p := sqlitePath(""); p != "sepa.db" {
		t.Errorf("got %q", p)
	}
	if p := sqlitePath("../../etc/sepa.db"); p != "sepa.db" {
		t.Errorf("got %q", p)
	}
	if p := sqlitePath("/opt/sepa/sepa.db"); p != "/opt/sepa/sepa.db" {
		t.Errorf("got %q", p)
	}
}

func TestSQLiteUniqueViolation(t *testing.T) {
	db := CreateTestSqliteDB(t)
	defer db.Close()

	insert := `insert into messages (message_id, status) values (?, ?);`
	if _, err := db.DB.Exec(insert, "MOOV/1", "pending"); err != nil {
		t.Fatal(err)
	}
	_, err := db.DB.Exec(insert, "MOOV/1", "pending")
	if !UniqueViolation(err) || !SqliteUniqueViolation(err) {
		t.Errorf("expected unique violation: %v", err)
	}

	if UniqueViolation(nil) || UniqueViolation(errors.New("other")) {
		t.Error("unexpected unique violation")
	}
}

func TestMySQL(t *testing.T) {
	db := CreateTestMySQLDB(t)
	defer db.Close()

	insert := `insert into messages (message_id, status) values (?, ?);`
	if _, err := db.DB.Exec(insert, "MOOV/1", "pending"); err != nil {
		t.Fatal(err)
	}
	_, err := db.DB.Exec(insert, "MOOV/1", "pending")
	if !MySQLUniqueViolation(err) {
		t.Errorf("expected unique violation: %v", err)
	}
}

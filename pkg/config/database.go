// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package config

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/moov-io/sepa/pkg/util"
	"github.com/moov-io/sepa/x/mask"
)

type Database struct {
	SQLite *SQLite
	MySQL  *MySQL
}

func (cfg Database) Validate() error {
	if cfg.MySQL != nil && (cfg.MySQL.Address == "" || cfg.MySQL.Database == "") {
		return errors.New("mysql: missing address or database")
	}
	return nil
}

type SQLite struct {
	Path string
}

type MySQL struct {
	Address  string
	Username string
	Password string
	Database string
}

func (cfg *MySQL) GetPassword() string {
	pass := os.Getenv("MYSQL_PASSWORD")
	if cfg == nil {
		return pass
	}
	return util.Or(pass, cfg.Password)
}

func (cfg MySQL) MarshalJSON() ([]byte, error) {
	type Aux MySQL
	aux := Aux(cfg)
	if aux.Password != "" {
		aux.Password = mask.Password(aux.Password)
	}
	return json.Marshal(aux)
}

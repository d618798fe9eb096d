// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"fmt"

	"github.com/iancoleman/strcase"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // load the pure-Go SQL driver for sqlite

	"github.com/xcherryio/ticksched/config"
	"github.com/xcherryio/ticksched/extensions"
)

const ExtensionName = "sqlite"

type extension struct{}

var _ extensions.SQLDBExtension = (*extension)(nil)

func init() {
	extensions.RegisterSQLDBExtension(ExtensionName, &extension{})
	// the modernc driver is not in the sqlx built-in bindvar table
	sqlx.BindDriver(ExtensionName, sqlx.QUESTION)
}

func (d *extension) StartDBSession(cfg *config.SQL) (extensions.SQLDBSession, error) {
	db, err := d.createSingleDBConn(cfg)
	if err != nil {
		return nil, err
	}
	return newDBSession(db), nil
}

func (d *extension) StartAdminDBSession(cfg *config.SQL) (extensions.SQLAdminDBSession, error) {
	db, err := d.createSingleDBConn(cfg)
	if err != nil {
		return nil, err
	}
	return newAdminDBSession(db), nil
}

// createSingleDBConn opens the database file named by DatabaseName.
// ConnectAddr, User and Password are not used for sqlite.
func (d *extension) createSingleDBConn(cfg *config.SQL) (*sqlx.DB, error) {
	if cfg.DatabaseName == "" {
		return nil, fmt.Errorf("sqlite requires databaseName to be the database file path")
	}
	db, err := sqlx.Connect(ExtensionName, cfg.DatabaseName)
	if err != nil {
		return nil, err
	}

	// Maps struct names in CamelCase to snake without need for db struct tags.
	db.MapperFunc(strcase.ToSnake)
	return db, nil
}

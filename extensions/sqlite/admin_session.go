// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/xcherryio/ticksched/extensions"
)

type adminDBSession struct {
	db *sqlx.DB
}

var _ extensions.SQLAdminDBSession = (*adminDBSession)(nil)

func newAdminDBSession(db *sqlx.DB) *adminDBSession {
	return &adminDBSession{
		db: db,
	}
}

// CreateDatabase is a no-op: the database file is created when first opened.
func (a adminDBSession) CreateDatabase(_ context.Context, _ string) error {
	return nil
}

func (a adminDBSession) DropDatabase(_ context.Context, database string) error {
	return os.Remove(database)
}

func (a adminDBSession) ExecuteSchemaDDL(ctx context.Context, ddlQuery string) error {
	_, err := a.db.ExecContext(ctx, ddlQuery)
	return err
}

func (a adminDBSession) Close() error {
	return a.db.Close()
}

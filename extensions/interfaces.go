// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package extensions

import (
	"context"
	"database/sql"

	"github.com/xcherryio/ticksched/config"
)

type SQLDBExtension interface {
	// StartDBSession starts the session for regular business logic
	StartDBSession(cfg *config.SQL) (SQLDBSession, error)
	// StartAdminDBSession starts the session for admin operation like DDL
	StartAdminDBSession(cfg *config.SQL) (SQLAdminDBSession, error)
}

type SQLDBSession interface {
	schedulerSnapshotRead

	StartTransaction(ctx context.Context, opts *sql.TxOptions) (SQLTransaction, error)
	ErrorChecker
	Close() error
}

type SQLTransaction interface {
	schedulerSnapshotWrite
	Commit() error
	Rollback() error
}

type SQLAdminDBSession interface {
	CreateDatabase(ctx context.Context, database string) error
	DropDatabase(ctx context.Context, database string) error
	ExecuteSchemaDDL(ctx context.Context, ddlQuery string) error
	Close() error
}

type schedulerSnapshotRead interface {
	SelectAllScheduledTasks(ctx context.Context) ([]ScheduledTaskRow, error)
	SelectAllTaskNames(ctx context.Context) ([]TaskNameRow, error)
	SelectAllRetryPolicies(ctx context.Context) ([]RetryPolicyRow, error)
	SelectAllTrackCursors(ctx context.Context) ([]TrackCursorsRow, error)
}

// schedulerSnapshotWrite is the full-replace protocol: a snapshot save deletes
// every row and re-inserts the current state within one transaction.
type schedulerSnapshotWrite interface {
	DeleteAllScheduledTasks(ctx context.Context) error
	DeleteAllTaskNames(ctx context.Context) error
	DeleteAllRetryPolicies(ctx context.Context) error
	DeleteAllTrackCursors(ctx context.Context) error

	InsertScheduledTask(ctx context.Context, row ScheduledTaskRow) error
	InsertTaskName(ctx context.Context, row TaskNameRow) error
	InsertRetryPolicy(ctx context.Context, row RetryPolicyRow) error
	InsertTrackCursors(ctx context.Context, row TrackCursorsRow) error
}

type ErrorChecker interface {
	IsDupEntryError(err error) bool
	IsNotFoundError(err error) bool
	IsTimeoutError(err error) bool
	IsThrottlingError(err error) bool
}

// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"modernc.org/sqlite"
)

// https://www.sqlite.org/rescode.html
const (
	errConstraint           = 19
	errConstraintPrimaryKey = 1555
	errConstraintUnique     = 2067
	errBusy                 = 5
)

func (d dbSession) IsDupEntryError(err error) bool {
	var sqlErr *sqlite.Error
	ok := errors.As(err, &sqlErr)
	if !ok {
		return false
	}
	code := sqlErr.Code()
	return code == errConstraint || code == errConstraintPrimaryKey || code == errConstraintUnique
}

func (d dbSession) IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func (d dbSession) IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

func (d dbSession) IsThrottlingError(err error) bool {
	var sqlErr *sqlite.Error
	ok := errors.As(err, &sqlErr)
	return ok && sqlErr.Code() == errBusy
}

// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package persistence

import (
	"context"

	"github.com/xcherryio/ticksched/persistence/data_models"
)

// SchedulerStore persists scheduler snapshots. A snapshot is saved as a whole
// and loaded as a whole; the store never mutates individual rows.
type SchedulerStore interface {
	// LoadSnapshot returns a nil state when no snapshot has been saved yet
	LoadSnapshot(ctx context.Context) (*data_models.SchedulerState, error)
	SaveSnapshot(ctx context.Context, state *data_models.SchedulerState) error
	Close() error
}

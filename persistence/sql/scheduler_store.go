// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package sql

import (
	"context"

	"github.com/xcherryio/ticksched/common/log"
	"github.com/xcherryio/ticksched/common/log/tag"
	"github.com/xcherryio/ticksched/config"
	"github.com/xcherryio/ticksched/extensions"
	"github.com/xcherryio/ticksched/persistence"
	"github.com/xcherryio/ticksched/persistence/data_models"
)

type schedulerStoreImpl struct {
	session extensions.SQLDBSession
	logger  log.Logger
}

var _ persistence.SchedulerStore = (*schedulerStoreImpl)(nil)

func NewSQLSchedulerStore(sqlConfig config.SQL, logger log.Logger) (persistence.SchedulerStore, error) {
	session, err := extensions.NewSQLSession(&sqlConfig)
	if err != nil {
		return nil, err
	}
	return &schedulerStoreImpl{
		session: session,
		logger:  logger,
	}, nil
}

func (s *schedulerStoreImpl) Close() error {
	return s.session.Close()
}

func (s *schedulerStoreImpl) LoadSnapshot(ctx context.Context) (*data_models.SchedulerState, error) {
	cursorRows, err := s.session.SelectAllTrackCursors(ctx)
	if err != nil {
		return nil, err
	}
	if len(cursorRows) == 0 {
		// nothing was ever saved
		return nil, nil
	}

	taskRows, err := s.session.SelectAllScheduledTasks(ctx)
	if err != nil {
		return nil, err
	}
	nameRows, err := s.session.SelectAllTaskNames(ctx)
	if err != nil {
		return nil, err
	}
	retryRows, err := s.session.SelectAllRetryPolicies(ctx)
	if err != nil {
		return nil, err
	}

	state := &data_models.SchedulerState{}
	for _, row := range taskRows {
		entry, err := agendaEntryFromRow(row)
		if err != nil {
			return nil, err
		}
		state.Agendas = append(state.Agendas, entry)
	}
	for _, row := range nameRows {
		state.Names = append(state.Names, nameEntryFromRow(row))
	}
	for _, row := range retryRows {
		state.Retries = append(state.Retries, retryEntryFromRow(row))
	}
	for _, row := range cursorRows {
		cursors, current := cursorsFromRow(row)
		switch data_models.Timeline(row.Timeline) {
		case data_models.TimelineTick:
			state.TickCursors = cursors
			state.LastTick = current
		case data_models.TimelineWallClock:
			state.WallClockCursors = cursors
			state.LastBucket = current
		default:
			s.logger.Warn("unknown timeline in persisted cursors, skipping",
				tag.Timeline(row.Timeline))
		}
	}
	return state, nil
}

// SaveSnapshot replaces the persisted snapshot in one transaction.
func (s *schedulerStoreImpl) SaveSnapshot(ctx context.Context, state *data_models.SchedulerState) error {
	txn, err := s.session.StartTransaction(ctx, nil)
	if err != nil {
		return err
	}

	err = s.saveStateInTxn(ctx, txn, state)
	if err != nil {
		if rbErr := txn.Rollback(); rbErr != nil {
			s.logger.Error("failed to rollback snapshot transaction", tag.Error(rbErr))
		}
		return err
	}
	return txn.Commit()
}

func (s *schedulerStoreImpl) saveStateInTxn(
	ctx context.Context, txn extensions.SQLTransaction, state *data_models.SchedulerState,
) error {
	if err := txn.DeleteAllScheduledTasks(ctx); err != nil {
		return err
	}
	if err := txn.DeleteAllTaskNames(ctx); err != nil {
		return err
	}
	if err := txn.DeleteAllRetryPolicies(ctx); err != nil {
		return err
	}
	if err := txn.DeleteAllTrackCursors(ctx); err != nil {
		return err
	}

	for _, entry := range state.Agendas {
		row, err := agendaEntryToRow(entry)
		if err != nil {
			return err
		}
		if err := txn.InsertScheduledTask(ctx, row); err != nil {
			return err
		}
	}
	for _, entry := range state.Names {
		if err := txn.InsertTaskName(ctx, nameEntryToRow(entry)); err != nil {
			return err
		}
	}
	for _, entry := range state.Retries {
		if err := txn.InsertRetryPolicy(ctx, retryEntryToRow(entry)); err != nil {
			return err
		}
	}
	if err := txn.InsertTrackCursors(ctx,
		cursorsToRow(data_models.TimelineTick, state.TickCursors, state.LastTick)); err != nil {
		return err
	}
	return txn.InsertTrackCursors(ctx,
		cursorsToRow(data_models.TimelineWallClock, state.WallClockCursors, state.LastBucket))
}

// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"

	"github.com/xcherryio/ticksched/extensions"
)

const insertScheduledTaskQuery = `INSERT INTO tksd_sys_scheduled_tasks
	(timeline, slot, slot_index, task_id, task_name, priority, origin, payload, periodic, max_weight) VALUES
	(:timeline, :slot, :slot_index, :task_id_string, :task_name, :priority, :origin, :payload, :periodic, :max_weight)`

func (d dbTx) InsertScheduledTask(ctx context.Context, row extensions.ScheduledTaskRow) error {
	row.TaskIdString = row.TaskId.String()
	_, err := d.tx.NamedExecContext(ctx, insertScheduledTaskQuery, row)
	return err
}

const insertTaskNameQuery = `INSERT INTO tksd_sys_task_names
	(task_name, timeline, slot, slot_index) VALUES
	(:task_name, :timeline, :slot, :slot_index)`

func (d dbTx) InsertTaskName(ctx context.Context, row extensions.TaskNameRow) error {
	_, err := d.tx.NamedExecContext(ctx, insertTaskNameQuery, row)
	return err
}

const insertRetryPolicyQuery = `INSERT INTO tksd_sys_retry_policies
	(timeline, slot, slot_index, total_retries, remaining_retries, retry_period) VALUES
	(:timeline, :slot, :slot_index, :total_retries, :remaining_retries, :retry_period)`

func (d dbTx) InsertRetryPolicy(ctx context.Context, row extensions.RetryPolicyRow) error {
	_, err := d.tx.NamedExecContext(ctx, insertRetryPolicyQuery, row)
	return err
}

const insertTrackCursorsQuery = `INSERT INTO tksd_sys_track_cursors
	(timeline, last_processed, incomplete_since, current_slot) VALUES
	(:timeline, :last_processed, :incomplete_since, :current_slot)`

func (d dbTx) InsertTrackCursors(ctx context.Context, row extensions.TrackCursorsRow) error {
	_, err := d.tx.NamedExecContext(ctx, insertTrackCursorsQuery, row)
	return err
}

const deleteAllScheduledTasksQuery = `DELETE FROM tksd_sys_scheduled_tasks`

func (d dbTx) DeleteAllScheduledTasks(ctx context.Context) error {
	_, err := d.tx.ExecContext(ctx, deleteAllScheduledTasksQuery)
	return err
}

const deleteAllTaskNamesQuery = `DELETE FROM tksd_sys_task_names`

func (d dbTx) DeleteAllTaskNames(ctx context.Context) error {
	_, err := d.tx.ExecContext(ctx, deleteAllTaskNamesQuery)
	return err
}

const deleteAllRetryPoliciesQuery = `DELETE FROM tksd_sys_retry_policies`

func (d dbTx) DeleteAllRetryPolicies(ctx context.Context) error {
	_, err := d.tx.ExecContext(ctx, deleteAllRetryPoliciesQuery)
	return err
}

const deleteAllTrackCursorsQuery = `DELETE FROM tksd_sys_track_cursors`

func (d dbTx) DeleteAllTrackCursors(ctx context.Context) error {
	_, err := d.tx.ExecContext(ctx, deleteAllTrackCursorsQuery)
	return err
}

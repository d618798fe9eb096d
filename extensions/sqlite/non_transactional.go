// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"

	"github.com/xcherryio/ticksched/common/uuid"
	"github.com/xcherryio/ticksched/extensions"
)

const selectAllScheduledTasksQuery = `SELECT
	timeline, slot, slot_index, task_id as task_id_string, task_name, priority, origin, payload, periodic, max_weight
	FROM tksd_sys_scheduled_tasks ORDER BY timeline, slot, slot_index`

func (d dbSession) SelectAllScheduledTasks(ctx context.Context) ([]extensions.ScheduledTaskRow, error) {
	var rows []extensions.ScheduledTaskRow
	err := d.db.SelectContext(ctx, &rows, selectAllScheduledTasksQuery)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].TaskId, err = uuid.ParseUUID(rows[i].TaskIdString)
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}

const selectAllTaskNamesQuery = `SELECT task_name, timeline, slot, slot_index
	FROM tksd_sys_task_names ORDER BY task_name`

func (d dbSession) SelectAllTaskNames(ctx context.Context) ([]extensions.TaskNameRow, error) {
	var rows []extensions.TaskNameRow
	err := d.db.SelectContext(ctx, &rows, selectAllTaskNamesQuery)
	return rows, err
}

const selectAllRetryPoliciesQuery = `SELECT
	timeline, slot, slot_index, total_retries, remaining_retries, retry_period
	FROM tksd_sys_retry_policies ORDER BY timeline, slot, slot_index`

func (d dbSession) SelectAllRetryPolicies(ctx context.Context) ([]extensions.RetryPolicyRow, error) {
	var rows []extensions.RetryPolicyRow
	err := d.db.SelectContext(ctx, &rows, selectAllRetryPoliciesQuery)
	return rows, err
}

const selectAllTrackCursorsQuery = `SELECT timeline, last_processed, incomplete_since, current_slot
	FROM tksd_sys_track_cursors ORDER BY timeline`

func (d dbSession) SelectAllTrackCursors(ctx context.Context) ([]extensions.TrackCursorsRow, error) {
	var rows []extensions.TrackCursorsRow
	err := d.db.SelectContext(ctx, &rows, selectAllTrackCursorsQuery)
	return rows, err
}

// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package extensions

import (
	"github.com/jmoiron/sqlx/types"

	"github.com/xcherryio/ticksched/common/uuid"
)

/**
* Why we need TaskIdString field, in addition to TaskId?
* Because different database drivers deal with UUID differently.
* Some databases store UUID as binary(16) and read/write it as a byte array; the
* UUID type has implemented Scan/Value for those. Databases like Postgres provide
* a UUID column type whose queries read/write strings, and file databases like
* SQLite store it as plain text.
* Having both fields available means the extension implementation doesn't need
* to create a new struct and copy/convert the fields: it picks whichever form
* its driver wants. The caller never reads or writes the string field.
 */

type (
	ScheduledTaskRow struct {
		Timeline  string
		Slot      int64
		SlotIndex int32

		TaskId uuid.UUID
		// See the top of the file for why we need this field
		TaskIdString string

		TaskName *string
		Priority int16

		Origin  types.JSONText
		Payload types.JSONText
		// Periodic is the JSON literal null for single-run tasks
		Periodic types.JSONText

		MaxWeight int64
	}

	TaskNameRow struct {
		TaskName  string
		Timeline  string
		Slot      int64
		SlotIndex int32
	}

	RetryPolicyRow struct {
		Timeline  string
		Slot      int64
		SlotIndex int32

		TotalRetries     int32
		RemainingRetries int32
		RetryPeriod      int64
	}

	TrackCursorsRow struct {
		Timeline      string
		LastProcessed int64
		// IncompleteSince is NULL while the track has no unfinished slot
		IncompleteSince *int64
		CurrentSlot     int64
	}
)

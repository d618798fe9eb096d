// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package data_models

type (
	AgendaEntry struct {
		Address TaskAddress   `json:"address"`
		Task    ScheduledTask `json:"task"`
	}

	NameEntry struct {
		Name    string      `json:"name"`
		Address TaskAddress `json:"address"`
	}

	RetryEntry struct {
		Address TaskAddress `json:"address"`
		Config  RetryConfig `json:"config"`
	}

	// SchedulerState is the logical persisted state of the scheduler: the
	// agenda rows of both timelines, the name index, the retry registry and
	// the two cursor pairs, plus the last resolved "now" of each track.
	SchedulerState struct {
		Agendas          []AgendaEntry `json:"agendas"`
		Names            []NameEntry   `json:"names"`
		Retries          []RetryEntry  `json:"retries"`
		TickCursors      TrackCursors  `json:"tickCursors"`
		WallClockCursors TrackCursors  `json:"wallClockCursors"`
		LastTick         Slot          `json:"lastTick"`
		LastBucket       Slot          `json:"lastBucket"`
	}
)

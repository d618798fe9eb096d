// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/xcherryio/ticksched/persistence/data_models"
)

// track bundles the per-timeline state the dispatch loop operates on. The two
// tracks run the same algorithm; only the slot step and the target
// normalization differ (tick numbers step by one, wall-clock slots step by
// the bucket size).
type track struct {
	timeline data_models.Timeline
	// step is the distance between two adjacent slots of this timeline
	step data_models.Slot
	// current is the latest "now" resolved for this track; scheduling targets
	// at or before it are rejected as in the past
	current data_models.Slot
	agenda  *agendaStore
	cursors data_models.TrackCursors
}

func newTickTrack(capacity int) *track {
	return &track{
		timeline: data_models.TimelineTick,
		step:     1,
		agenda:   newAgendaStore(capacity),
	}
}

func newWallClockTrack(capacity int, bucketSize data_models.Slot) *track {
	return &track{
		timeline: data_models.TimelineWallClock,
		step:     bucketSize,
		agenda:   newAgendaStore(capacity),
	}
}

// normalizeTarget maps a raw scheduling target onto a slot of this track.
// Tick targets are slots already; wall-clock timestamps normalize to the
// strictly following bucket boundary (0..bucketSize-1 land in bucketSize).
func (t *track) normalizeTarget(when data_models.Slot) data_models.Slot {
	if t.timeline == data_models.TimelineTick {
		return when
	}
	return (when/t.step + 1) * t.step
}

// normalizePeriod rounds a period up to a whole number of slot steps
func (t *track) normalizePeriod(period data_models.Slot) data_models.Slot {
	if period == 0 || t.timeline == data_models.TimelineTick {
		return period
	}
	return ((period + t.step - 1) / t.step) * t.step
}

// nextSlot is the deferral destination relative to when
func (t *track) nextSlot(when data_models.Slot) data_models.Slot {
	return when + t.step
}

// primeCursors positions a never-run track so its first pass starts at the
// earliest slot that holds work, or at now when nothing is scheduled yet. A
// freshly started wall-clock track would otherwise walk every empty bucket
// between the epoch and the present, burning whole tick budgets on nothing.
func (t *track) primeCursors(now data_models.Slot) {
	if t.cursors.LastProcessed != 0 || t.cursors.IncompleteSince != nil {
		return
	}
	start := now
	for slot := range t.agenda.slots {
		if slot < start {
			start = slot
		}
	}
	if start > t.step {
		t.cursors.LastProcessed = start - t.step
	}
}

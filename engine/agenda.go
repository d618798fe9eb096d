// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/xcherryio/ticksched/persistence/data_models"
)

// agendaStore holds the per-slot ordered agendas of one timeline.
//
// Indices are stable for the lifetime of a task: cancellation leaves a nil
// hole instead of compacting the agenda. Insertion fills the earliest hole
// before appending. Trailing holes are trimmed and a fully-empty agenda is
// removed from the map, so an all-nil slot never lingers in storage.
type agendaStore struct {
	capacity int
	slots    map[data_models.Slot][]*data_models.ScheduledTask
}

func newAgendaStore(capacity int) *agendaStore {
	return &agendaStore{
		capacity: capacity,
		slots:    map[data_models.Slot][]*data_models.ScheduledTask{},
	}
}

// insert places the task at the first free index of the slot agenda,
// returning the index. Fails with ErrAgendaFull when the agenda holds
// capacity entries and none of them is a hole.
func (a *agendaStore) insert(slot data_models.Slot, task *data_models.ScheduledTask) (int, error) {
	agenda := a.slots[slot]
	for i, t := range agenda {
		if t == nil {
			agenda[i] = task
			return i, nil
		}
	}
	if len(agenda) >= a.capacity {
		return 0, ErrAgendaFull
	}
	a.slots[slot] = append(agenda, task)
	return len(agenda), nil
}

// get returns the task at (slot, index), or nil for holes and unknown addresses
func (a *agendaStore) get(slot data_models.Slot, index int) *data_models.ScheduledTask {
	agenda := a.slots[slot]
	if index < 0 || index >= len(agenda) {
		return nil
	}
	return agenda[index]
}

// clear removes the task at (slot, index), trims trailing holes and deletes
// the slot agenda once it is empty. Clearing a hole is a no-op.
func (a *agendaStore) clear(slot data_models.Slot, index int) {
	agenda := a.slots[slot]
	if index < 0 || index >= len(agenda) {
		return
	}
	agenda[index] = nil
	n := len(agenda)
	for n > 0 && agenda[n-1] == nil {
		n--
	}
	if n == 0 {
		delete(a.slots, slot)
		return
	}
	a.slots[slot] = agenda[:n]
}

// entries returns the live agenda slice of the slot; nil entries are holes
func (a *agendaStore) entries(slot data_models.Slot) []*data_models.ScheduledTask {
	return a.slots[slot]
}

func (a *agendaStore) slotCount() int {
	return len(a.slots)
}

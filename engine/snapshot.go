// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"sort"

	"github.com/xcherryio/ticksched/common/log"
	"github.com/xcherryio/ticksched/config"
	"github.com/xcherryio/ticksched/persistence/data_models"
)

// Snapshot captures the logical scheduler state for persistence. Entries are
// emitted in a deterministic order so consecutive snapshots of identical
// state compare equal.
func (s *Scheduler) Snapshot() *data_models.SchedulerState {
	state := &data_models.SchedulerState{
		TickCursors:      s.tickTrack.cursors,
		WallClockCursors: s.timeTrack.cursors,
		LastTick:         s.tickTrack.current,
		LastBucket:       s.timeTrack.current,
	}

	for _, tr := range []*track{s.tickTrack, s.timeTrack} {
		slots := make([]data_models.Slot, 0, tr.agenda.slotCount())
		for slot := range tr.agenda.slots {
			slots = append(slots, slot)
		}
		sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
		for _, slot := range slots {
			for idx, task := range tr.agenda.entries(slot) {
				if task == nil {
					continue
				}
				state.Agendas = append(state.Agendas, data_models.AgendaEntry{
					Address: data_models.TaskAddress{Timeline: tr.timeline, Slot: slot, Index: idx},
					Task:    *task,
				})
			}
		}
	}

	names := make([]string, 0, s.names.size())
	for name := range s.names.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		state.Names = append(state.Names, data_models.NameEntry{
			Name:    name,
			Address: s.names.byName[name],
		})
	}

	for addr, cfg := range s.retries.byAddress {
		state.Retries = append(state.Retries, data_models.RetryEntry{
			Address: addr,
			Config:  cfg,
		})
	}
	sort.Slice(state.Retries, func(i, j int) bool {
		a, b := state.Retries[i].Address, state.Retries[j].Address
		if a.Timeline != b.Timeline {
			return a.Timeline < b.Timeline
		}
		if a.Slot != b.Slot {
			return a.Slot < b.Slot
		}
		return a.Index < b.Index
	})

	return state
}

// NewSchedulerFromState rebuilds a scheduler from a persisted snapshot.
// Inconsistent rows (addresses past the agenda bounds, stale names) are
// tolerated: the agenda is rebuilt with holes and stale bindings resolve to
// ErrNotFound later, never a panic.
func NewSchedulerFromState(cfg config.Scheduler, collab Collaborators, logger log.Logger, state *data_models.SchedulerState) *Scheduler {
	s := NewScheduler(cfg, collab, logger)
	if state == nil {
		return s
	}

	for i := range state.Agendas {
		entry := state.Agendas[i]
		tr := s.trackFor(entry.Address.Timeline)
		agenda := tr.agenda.slots[entry.Address.Slot]
		for len(agenda) <= entry.Address.Index {
			agenda = append(agenda, nil)
		}
		task := entry.Task
		agenda[entry.Address.Index] = &task
		tr.agenda.slots[entry.Address.Slot] = agenda
	}
	for _, entry := range state.Names {
		s.names.rebind(entry.Name, entry.Address)
	}
	for _, entry := range state.Retries {
		s.retries.set(entry.Address, entry.Config)
	}
	s.tickTrack.cursors = state.TickCursors
	s.timeTrack.cursors = state.WallClockCursors
	s.tickTrack.current = state.LastTick
	s.timeTrack.current = state.LastBucket
	return s
}

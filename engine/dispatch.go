// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"sort"

	"github.com/xcherryio/ticksched/common/log/tag"
	"github.com/xcherryio/ticksched/common/ptr"
	"github.com/xcherryio/ticksched/persistence/data_models"
)

// serviceAgendas drains one track from the earliest unfinished slot through
// now. The range start is max(LastProcessed+step, IncompleteSince): an
// unfinished slot from a previous tick is always resumed before newer slots,
// which is what makes wall-clock jumps safe - every intermediate bucket is
// visited before the loop reaches the current one.
func (s *Scheduler) serviceAgendas(ctx context.Context, tr *track, now data_models.Slot, meter *weightMeter) {
	tr.primeCursors(now)
	when := tr.cursors.LastProcessed + tr.step
	if inc := tr.cursors.IncompleteSince; inc != nil && *inc < when {
		when = *inc
	}

	var incomplete *data_models.Slot
	for ; when <= now; when += tr.step {
		if !meter.tryConsume(s.weights.ServiceAgendaBase) {
			if incomplete == nil {
				incomplete = ptr.Any(when)
			}
			break
		}
		if !s.serviceAgenda(ctx, tr, when, now, meter) && incomplete == nil {
			incomplete = ptr.Any(when)
		}
	}

	if incomplete != nil {
		// hold LastProcessed just before the unfinished slot so the next
		// range start resumes exactly there
		tr.cursors.IncompleteSince = incomplete
		tr.cursors.LastProcessed = *incomplete - tr.step
	} else {
		tr.cursors.IncompleteSince = nil
		tr.cursors.LastProcessed = now
	}
}

// serviceAgenda attempts every task of one slot in (priority, index) order.
// Returns false when the slot could not be fully drained: a permanently
// overweight task stays in place, a deferral landed beyond now, or a deferral
// found its destination full.
func (s *Scheduler) serviceAgenda(ctx context.Context, tr *track, when, now data_models.Slot, meter *weightMeter) bool {
	ordered := orderedIndices(tr.agenda.entries(when))
	fully := true
	for _, idx := range ordered {
		task := tr.agenda.get(when, idx)
		if task == nil {
			continue
		}
		need := s.weights.ServiceTaskBase + task.MaxWeight
		if !meter.canConsume(need) {
			if need > meter.Limit() {
				// can never fit this track's budget; left in place so the
				// signal repeats on every revisit until an operator acts
				s.emit(SignalPermanentlyOverweight, tr.timeline, when, idx, task)
				fully = false
				continue
			}
			// out of budget this tick only: move to the next slot so cheaper
			// tasks behind it still get attempted
			if !s.deferTask(tr, when, idx, task) {
				fully = false
				continue
			}
			if tr.nextSlot(when) > now {
				fully = false
			}
			continue
		}
		meter.tryConsume(need)
		s.executeTask(ctx, tr, when, idx, task, meter)
	}
	return fully
}

// executeTask runs one task and applies the post-run protocol: retry clone on
// failure, periodic renewal regardless of outcome, name and policy cleanup.
func (s *Scheduler) executeTask(ctx context.Context, tr *track, when data_models.Slot, idx int, task *data_models.ScheduledTask, meter *weightMeter) {
	addr := data_models.TaskAddress{Timeline: tr.timeline, Slot: when, Index: idx}
	tr.agenda.clear(when, idx)

	call, ok := s.resolveCall(ctx, task.Payload)
	if !ok {
		// unresolvable payloads are dropped, not retried
		if task.Name != nil {
			s.names.unbind(*task.Name)
		}
		s.retries.cancel(addr)
		s.emit(SignalCallUnavailable, tr.timeline, when, idx, task)
		return
	}

	err := s.dispatcher.Dispatch(ctx, task.Origin, call)
	failed := err != nil
	if failed {
		s.logger.Debug("task dispatch failed",
			tag.TaskId(task.Id.String()),
			tag.Timeline(string(tr.timeline)),
			tag.Slot(uint64(when)),
			tag.Error(err))
	}

	retryCfg, hadRetry := s.retries.take(addr)

	if failed && hadRetry && retryCfg.Remaining > 0 {
		if meter.tryConsume(s.weights.RetryBookkeeping) {
			s.scheduleRetryClone(tr, when, idx, task, retryCfg)
		} else {
			s.emit(SignalRetryFailed, tr.timeline, when, idx, task)
		}
	}

	// periodic renewal proceeds on its own schedule whether or not this run
	// failed; the retry clone above is independent bookkeeping
	renewed := false
	if p := task.Periodic; p != nil && p.Remaining > 1 {
		renewal := *task
		renewal.Periodic = &data_models.Periodic{Period: p.Period, Remaining: p.Remaining - 1}
		target := when + p.Period
		newIndex, insErr := tr.agenda.insert(target, &renewal)
		if insErr != nil {
			s.emit(SignalPeriodicFailed, tr.timeline, target, idx, task)
		} else {
			renewed = true
			newAddr := data_models.TaskAddress{Timeline: tr.timeline, Slot: target, Index: newIndex}
			if task.Name != nil {
				s.names.rebind(*task.Name, newAddr)
			}
			if hadRetry {
				// each periodic run starts with a full retry budget
				s.retries.set(newAddr, data_models.RetryConfig{
					TotalRetries: retryCfg.TotalRetries,
					Remaining:    retryCfg.TotalRetries,
					Period:       retryCfg.Period,
				})
			}
		}
	}
	if !renewed && task.Name != nil {
		s.names.unbind(*task.Name)
	}
}

// scheduleRetryClone materializes the unnamed, non-periodic copy of a failed
// task and re-keys the policy, with one attempt consumed, to the clone.
func (s *Scheduler) scheduleRetryClone(tr *track, when data_models.Slot, idx int, task *data_models.ScheduledTask, retryCfg data_models.RetryConfig) {
	clone := *task
	clone.Name = nil
	clone.Periodic = nil
	target := when + retryCfg.Period
	newIndex, err := tr.agenda.insert(target, &clone)
	if err != nil {
		s.emit(SignalRetryFailed, tr.timeline, target, idx, task)
		return
	}
	s.retries.set(
		data_models.TaskAddress{Timeline: tr.timeline, Slot: target, Index: newIndex},
		data_models.RetryConfig{
			TotalRetries: retryCfg.TotalRetries,
			Remaining:    retryCfg.Remaining - 1,
			Period:       retryCfg.Period,
		})
	s.logger.Debug("retry clone scheduled",
		tag.TaskId(task.Id.String()),
		tag.Timeline(string(tr.timeline)),
		tag.Slot(uint64(target)),
		tag.SlotIndex(newIndex))
}

// deferTask moves a task that cannot be afforded this tick to the next slot,
// keeping its name binding and retry policy pointed at the fresh address.
// Returns false, leaving the task in place, when the destination is full.
func (s *Scheduler) deferTask(tr *track, when data_models.Slot, idx int, task *data_models.ScheduledTask) bool {
	target := tr.nextSlot(when)
	newIndex, err := tr.agenda.insert(target, task)
	if err != nil {
		s.logger.Warn("cannot defer task, destination slot is full",
			tag.TaskId(task.Id.String()),
			tag.Timeline(string(tr.timeline)),
			tag.Slot(uint64(target)))
		return false
	}
	tr.agenda.clear(when, idx)
	oldAddr := data_models.TaskAddress{Timeline: tr.timeline, Slot: when, Index: idx}
	newAddr := data_models.TaskAddress{Timeline: tr.timeline, Slot: target, Index: newIndex}
	if task.Name != nil {
		s.names.rebind(*task.Name, newAddr)
	}
	if rc, ok := s.retries.take(oldAddr); ok {
		s.retries.set(newAddr, rc)
	}
	s.logger.Debug("task deferred",
		tag.TaskId(task.Id.String()),
		tag.Timeline(string(tr.timeline)),
		tag.Slot(uint64(target)),
		tag.SlotIndex(newIndex))
	return true
}

func (s *Scheduler) resolveCall(ctx context.Context, payload data_models.CallRef) ([]byte, bool) {
	if payload.IsInline() {
		return payload.Inline, true
	}
	return s.preimages.Resolve(ctx, payload.Hash, payload.Length)
}

// orderedIndices returns the indices of the non-hole entries sorted by
// (priority ascending, index ascending)
func orderedIndices(entries []*data_models.ScheduledTask) []int {
	idxs := make([]int, 0, len(entries))
	for i, t := range entries {
		if t != nil {
			idxs = append(idxs, i)
		}
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		pa, pb := entries[idxs[a]].Priority, entries[idxs[b]].Priority
		if pa != pb {
			return pa < pb
		}
		return idxs[a] < idxs[b]
	})
	return idxs
}

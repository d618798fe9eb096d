// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/xcherryio/ticksched/common/log/tag"
	"github.com/xcherryio/ticksched/common/uuid"
	"github.com/xcherryio/ticksched/persistence/data_models"
)

type SignalType string

const (
	// SignalCallUnavailable - the payload preimage could not be resolved; the task was dropped
	SignalCallUnavailable SignalType = "CALL_UNAVAILABLE"
	// SignalPeriodicFailed - a periodic renewal could not be re-inserted; the continuation was dropped
	SignalPeriodicFailed SignalType = "PERIODIC_FAILED"
	// SignalRetryFailed - retry bookkeeping could not be charged or inserted; the retry was abandoned
	SignalRetryFailed SignalType = "RETRY_FAILED"
	// SignalPermanentlyOverweight - the task's declared weight can never fit its track budget
	SignalPermanentlyOverweight SignalType = "PERMANENTLY_OVERWEIGHT"
)

// Signal is a runtime-detected condition surfaced during a tick. Signals are
// observability output only and never halt tick processing.
type Signal struct {
	Type     SignalType
	Timeline data_models.Timeline
	Slot     data_models.Slot
	Index    int
	TaskId   uuid.UUID
	TaskName *string
}

// SignalSink receives signals as they are raised. Implementations must not
// call back into the scheduler; the dispatch loop is mid-mutation.
type SignalSink interface {
	OnSignal(sig Signal)
}

func (s *Scheduler) emit(sigType SignalType, timeline data_models.Timeline, slot data_models.Slot, index int, task *data_models.ScheduledTask) {
	sig := Signal{
		Type:     sigType,
		Timeline: timeline,
		Slot:     slot,
		Index:    index,
		TaskId:   task.Id,
		TaskName: task.Name,
	}
	tags := []tag.Tag{
		tag.Signal(string(sigType)),
		tag.Timeline(string(timeline)),
		tag.Slot(uint64(slot)),
		tag.SlotIndex(index),
		tag.TaskId(task.Id.String()),
	}
	if task.Name != nil {
		tags = append(tags, tag.TaskName(*task.Name))
	}
	s.logger.Warn("scheduler signal", tags...)
	if s.signals != nil {
		s.signals.OnSignal(sig)
	}
}

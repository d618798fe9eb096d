// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import "errors"

// Caller errors returned synchronously from the boundary operations.
// Conditions detected while a tick is running are never returned as errors;
// they are emitted as signals, see signals.go.
var (
	// ErrNotFound means the target address or name does not refer to a live task
	ErrNotFound = errors.New("target task does not exist")
	// ErrNameAlreadyBound means the name is bound to another live task
	ErrNameAlreadyBound = errors.New("task name is already bound")
	// ErrTargetSlotInPast means the target slot is not after the current position of its timeline
	ErrTargetSlotInPast = errors.New("target slot is in the past")
	// ErrRescheduleNoChange means the reschedule target equals the current slot
	ErrRescheduleNoChange = errors.New("reschedule target equals the current slot")
	// ErrAgendaFull means the destination slot agenda is at capacity
	ErrAgendaFull = errors.New("slot agenda is at capacity")
	// ErrInvalidPeriodic means the periodic period is zero
	ErrInvalidPeriodic = errors.New("periodic period must be positive")
	// ErrInvalidRetryConfig means the retry total or period is zero
	ErrInvalidRetryConfig = errors.New("retry total and period must be positive")
)

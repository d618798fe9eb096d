// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package data_models

import (
	"github.com/xcherryio/ticksched/common/uuid"
)

type (
	// Slot is an addressable point in a timeline: a tick number on the tick
	// track, or a millisecond bucket boundary on the wall-clock track.
	Slot uint64

	// Weight is the abstract resource cost unit charged against the per-tick budget.
	Weight uint64

	// TaskAddress identifies one task in one slot agenda. It is unique across
	// the lifetime of a task and changes whenever the task is re-inserted
	// (reschedule, periodic renewal, retry clone, deferral).
	TaskAddress struct {
		Timeline Timeline `json:"timeline"`
		Slot     Slot     `json:"slot"`
		Index    int      `json:"index"`
	}

	// Origin is the opaque authorization context captured at scheduling time
	// and re-presented to the dispatcher at execution time.
	Origin struct {
		Kind OriginKind `json:"kind"`
		// Account is set for OriginKindSigned only
		Account string `json:"account,omitempty"`
	}

	// CallRef is either an inline payload or a (hash, length) key resolved
	// lazily from the preimage store.
	CallRef struct {
		Inline []byte `json:"inline,omitempty"`
		Hash   []byte `json:"hash,omitempty"`
		Length uint32 `json:"length,omitempty"`
	}

	// Periodic makes a task re-schedule itself Period slots after each run.
	// Remaining counts the runs left, including the one currently scheduled.
	Periodic struct {
		Period    Slot   `json:"period"`
		Remaining uint32 `json:"remaining"`
	}

	// ScheduledTask is the unit of scheduling. Id is stable across
	// re-addressing and is what logs and signals refer to.
	ScheduledTask struct {
		Id        uuid.UUID `json:"id"`
		Name      *string   `json:"name,omitempty"`
		Priority  uint8     `json:"priority"`
		Origin    Origin    `json:"origin"`
		Payload   CallRef   `json:"payload"`
		MaxWeight Weight    `json:"maxWeight"`
		Periodic  *Periodic `json:"periodic,omitempty"`
	}
)

func RootOrigin() Origin {
	return Origin{Kind: OriginKindRoot}
}

func SignedOrigin(account string) Origin {
	return Origin{Kind: OriginKindSigned, Account: account}
}

func NoOrigin() Origin {
	return Origin{Kind: OriginKindNone}
}

func InlineCall(payload []byte) CallRef {
	return CallRef{Inline: payload}
}

func HashedCall(hash []byte, length uint32) CallRef {
	return CallRef{Hash: hash, Length: length}
}

func (c CallRef) IsInline() bool {
	return len(c.Hash) == 0
}

// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"

	"github.com/xcherryio/ticksched/persistence/data_models"
)

type (
	// PreimageStore resolves hashed call payloads. A false return means the
	// preimage is unavailable and the referencing task is dropped with a
	// CALL_UNAVAILABLE signal.
	PreimageStore interface {
		Resolve(ctx context.Context, hash []byte, length uint32) ([]byte, bool)
	}

	// CallDispatcher executes a resolved call under the origin the task was
	// scheduled with. A non-nil error counts as a failed run for retry purposes.
	CallDispatcher interface {
		Dispatch(ctx context.Context, origin data_models.Origin, call []byte) error
	}

	// Authorizer decides whether an acting origin may schedule tasks, or
	// control (cancel/reschedule/configure retries for) a task scheduled
	// under taskOrigin.
	Authorizer interface {
		AuthorizeSchedule(acting data_models.Origin) error
		AuthorizeControl(acting data_models.Origin, taskOrigin data_models.Origin) error
	}
)

type allowAllAuthorizer struct{}

// NewAllowAllAuthorizer returns an Authorizer that accepts every origin,
// for embeddings that enforce authorization before reaching the scheduler.
func NewAllowAllAuthorizer() Authorizer {
	return allowAllAuthorizer{}
}

func (allowAllAuthorizer) AuthorizeSchedule(data_models.Origin) error {
	return nil
}

func (allowAllAuthorizer) AuthorizeControl(data_models.Origin, data_models.Origin) error {
	return nil
}

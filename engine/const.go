// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/xcherryio/ticksched/persistence/data_models"
)

// BookkeepingWeights is the fixed overhead charged by the dispatch loop
// itself, on top of each task's declared MaxWeight.
type BookkeepingWeights struct {
	// ServiceAgendaBase is charged once per slot visited in the range
	ServiceAgendaBase data_models.Weight
	// ServiceTaskBase is charged once per task execution attempt
	ServiceTaskBase data_models.Weight
	// RetryBookkeeping is charged when materializing a retry clone
	RetryBookkeeping data_models.Weight
}

func DefaultBookkeepingWeights() BookkeepingWeights {
	return BookkeepingWeights{
		ServiceAgendaBase: 10,
		ServiceTaskBase:   25,
		RetryBookkeeping:  25,
	}
}

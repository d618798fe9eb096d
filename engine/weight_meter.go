// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"github.com/xcherryio/ticksched/persistence/data_models"
)

// weightMeter tracks weight consumption of one track within one tick.
type weightMeter struct {
	limit    data_models.Weight
	consumed data_models.Weight
}

func newWeightMeter(limit data_models.Weight) *weightMeter {
	return &weightMeter{limit: limit}
}

func (m *weightMeter) canConsume(w data_models.Weight) bool {
	return m.consumed+w <= m.limit
}

// tryConsume charges w when it fits, returning whether it was charged
func (m *weightMeter) tryConsume(w data_models.Weight) bool {
	if !m.canConsume(w) {
		return false
	}
	m.consumed += w
	return true
}

func (m *weightMeter) Limit() data_models.Weight {
	return m.limit
}

func (m *weightMeter) Consumed() data_models.Weight {
	return m.consumed
}

// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xcherryio/ticksched/common/uuid"
	"github.com/xcherryio/ticksched/persistence/data_models"
)

func newTask(priority uint8) *data_models.ScheduledTask {
	return &data_models.ScheduledTask{
		Id:        uuid.MustNewUUID(),
		Priority:  priority,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.InlineCall([]byte("t")),
		MaxWeight: 1,
	}
}

func TestAgendaInsertAppends(t *testing.T) {
	agenda := newAgendaStore(3)

	idx, err := agenda.insert(5, newTask(0))
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = agenda.insert(5, newTask(0))
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = agenda.insert(7, newTask(0))
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 2, agenda.slotCount())
}

func TestAgendaHoleFilling(t *testing.T) {
	agenda := newAgendaStore(5)
	for i := 0; i < 3; i++ {
		_, err := agenda.insert(5, newTask(0))
		require.NoError(t, err)
	}

	// clearing the middle leaves a hole; the next insert fills it
	agenda.clear(5, 1)
	assert.Nil(t, agenda.get(5, 1))
	assert.NotNil(t, agenda.get(5, 2))

	idx, err := agenda.insert(5, newTask(0))
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestAgendaTrimsTrailingHoles(t *testing.T) {
	agenda := newAgendaStore(5)
	for i := 0; i < 3; i++ {
		_, err := agenda.insert(9, newTask(0))
		require.NoError(t, err)
	}

	agenda.clear(9, 2)
	assert.Len(t, agenda.entries(9), 2)

	// clearing index 0 keeps index 1 stable
	agenda.clear(9, 0)
	assert.Len(t, agenda.entries(9), 2)
	assert.Nil(t, agenda.get(9, 0))
	assert.NotNil(t, agenda.get(9, 1))

	// last removal trims everything and deletes the slot
	agenda.clear(9, 1)
	assert.Equal(t, 0, agenda.slotCount())
	assert.Nil(t, agenda.entries(9))
}

func TestAgendaCapacity(t *testing.T) {
	agenda := newAgendaStore(2)
	_, err := agenda.insert(1, newTask(0))
	require.NoError(t, err)
	_, err = agenda.insert(1, newTask(0))
	require.NoError(t, err)

	_, err = agenda.insert(1, newTask(0))
	assert.ErrorIs(t, err, ErrAgendaFull)

	// a hole brings the slot back under capacity
	agenda.clear(1, 0)
	idx, err := agenda.insert(1, newTask(0))
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestAgendaGetOutOfBounds(t *testing.T) {
	agenda := newAgendaStore(2)
	assert.Nil(t, agenda.get(1, 0))
	assert.Nil(t, agenda.get(1, -1))

	// clearing unknown addresses is a no-op
	agenda.clear(1, 3)
	assert.Equal(t, 0, agenda.slotCount())
}

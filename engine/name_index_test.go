// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xcherryio/ticksched/persistence/data_models"
)

func TestNameIndex(t *testing.T) {
	names := newNameIndex()
	addr1 := data_models.TaskAddress{Timeline: data_models.TimelineTick, Slot: 4, Index: 0}
	addr2 := data_models.TaskAddress{Timeline: data_models.TimelineTick, Slot: 9, Index: 2}

	require.NoError(t, names.bind("job", addr1))
	assert.ErrorIs(t, names.bind("job", addr2), ErrNameAlreadyBound)

	got, ok := names.resolve("job")
	require.True(t, ok)
	assert.Equal(t, addr1, got)

	names.rebind("job", addr2)
	got, ok = names.resolve("job")
	require.True(t, ok)
	assert.Equal(t, addr2, got)

	names.unbind("job")
	_, ok = names.resolve("job")
	assert.False(t, ok)
	assert.Equal(t, 0, names.size())
}

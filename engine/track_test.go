// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTickTrackNormalization(t *testing.T) {
	tr := newTickTrack(10)
	assert.EqualValues(t, 42, tr.normalizeTarget(42))
	assert.EqualValues(t, 3, tr.normalizePeriod(3))
	assert.EqualValues(t, 5, tr.nextSlot(4))
}

func TestWallClockTrackNormalization(t *testing.T) {
	tr := newWallClockTrack(10, testBucketSize)

	// targets land in the strictly following bucket boundary
	assert.EqualValues(t, 10_000, tr.normalizeTarget(0))
	assert.EqualValues(t, 10_000, tr.normalizeTarget(9_999))
	assert.EqualValues(t, 20_000, tr.normalizeTarget(10_000))
	assert.EqualValues(t, 20_000, tr.normalizeTarget(15_000))

	// periods round up to whole buckets
	assert.EqualValues(t, 10_000, tr.normalizePeriod(1))
	assert.EqualValues(t, 10_000, tr.normalizePeriod(10_000))
	assert.EqualValues(t, 20_000, tr.normalizePeriod(10_001))

	assert.EqualValues(t, 30_000, tr.nextSlot(20_000))
}

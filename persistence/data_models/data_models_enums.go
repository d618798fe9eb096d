// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package data_models

type Timeline string

const (
	// TimelineTick is the monotonic tick-number track
	TimelineTick Timeline = "TICK"
	// TimelineWallClock is the wall-clock track, coarsened into fixed buckets
	TimelineWallClock Timeline = "WALL_CLOCK"
)

type OriginKind string

const (
	OriginKindRoot   OriginKind = "ROOT"
	OriginKindSigned OriginKind = "SIGNED"
	OriginKindNone   OriginKind = "NONE"
)

// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package data_models

// TrackCursors is the pair of dispatch cursors kept per timeline.
//
// LastProcessed is the last slot already fully drained. IncompleteSince, when
// set, is the earliest slot where a previous tick stopped with work left
// behind; it always equals LastProcessed+1 so that the next range start
// max(LastProcessed+1, IncompleteSince) resumes exactly there and no slot is
// ever skipped.
type TrackCursors struct {
	LastProcessed   Slot  `json:"lastProcessed"`
	IncompleteSince *Slot `json:"incompleteSince,omitempty"`
}

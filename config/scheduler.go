// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"time"

	"github.com/xcherryio/ticksched/common/ptr"
)

type (
	// Scheduler contains the config items for the scheduler core
	Scheduler struct {
		// BucketSizeMillis is the width of one wall-clock bucket.
		// Wall-clock scheduling targets are normalized to the strictly
		// following multiple of this value.
		// If not specified then the default value of 10000 is used.
		BucketSizeMillis uint64 `yaml:"bucketSizeMillis"`
		// MaxScheduledPerSlot bounds how many tasks one slot agenda can hold,
		// counting holes left by cancellations.
		// If not specified then the default value of 50 is used.
		MaxScheduledPerSlot int `yaml:"maxScheduledPerSlot"`
		// TickWeightBudget is the total weight that one tick may consume
		// across both timelines.
		// If not specified then the default value of 1000000 is used.
		TickWeightBudget uint64 `yaml:"tickWeightBudget"`
		// TimeTrackBudgetShare is the fraction of the tick budget reserved for
		// the wall-clock track; the remainder goes to the tick track, which is
		// always serviced first. Must be within [0, 1); an explicit 0 gives
		// the wall-clock track no budget at all.
		// If not specified then the default value of 0.5 is used.
		TimeTrackBudgetShare *float64 `yaml:"timeTrackBudgetShare"`
		// TickInterval is how often the tick driver invokes RunTick when the
		// scheduler runs standalone under cmd/ticksched. Irrelevant when the
		// scheduler is embedded.
		// If not specified then the default value of 1 second is used.
		TickInterval time.Duration `yaml:"tickInterval"`
	}
)

const (
	defaultBucketSizeMillis     = uint64(10_000)
	defaultMaxScheduledPerSlot  = 50
	defaultTickWeightBudget     = uint64(1_000_000)
	defaultTimeTrackBudgetShare = 0.5
	defaultTickInterval         = time.Second
)

func (s *Scheduler) validateAndSetDefaults() error {
	if s.BucketSizeMillis == 0 {
		s.BucketSizeMillis = defaultBucketSizeMillis
	}
	if s.MaxScheduledPerSlot == 0 {
		s.MaxScheduledPerSlot = defaultMaxScheduledPerSlot
	}
	if s.MaxScheduledPerSlot < 0 {
		return fmt.Errorf("maxScheduledPerSlot must be positive")
	}
	if s.TickWeightBudget == 0 {
		s.TickWeightBudget = defaultTickWeightBudget
	}
	if s.TimeTrackBudgetShare == nil {
		s.TimeTrackBudgetShare = ptr.Any(defaultTimeTrackBudgetShare)
	}
	if *s.TimeTrackBudgetShare < 0 || *s.TimeTrackBudgetShare >= 1 {
		return fmt.Errorf("timeTrackBudgetShare must be within [0, 1)")
	}
	if s.TickInterval == 0 {
		s.TickInterval = defaultTickInterval
	}
	return nil
}

// TimeShare returns the wall-clock budget share, falling back to the default
// when the config was never validated
func (s *Scheduler) TimeShare() float64 {
	if s.TimeTrackBudgetShare == nil {
		return defaultTimeTrackBudgetShare
	}
	return *s.TimeTrackBudgetShare
}

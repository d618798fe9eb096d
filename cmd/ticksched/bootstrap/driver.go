// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/xcherryio/ticksched/common/log"
	"github.com/xcherryio/ticksched/common/log/tag"
	"github.com/xcherryio/ticksched/config"
	"github.com/xcherryio/ticksched/engine"
	"github.com/xcherryio/ticksched/persistence"
	"github.com/xcherryio/ticksched/persistence/data_models"
)

// tickDriver owns the scheduler goroutine: the engine is single-threaded, so
// every RunTick and snapshot save happens on the driver loop.
type tickDriver struct {
	sched  *engine.Scheduler
	store  persistence.SchedulerStore
	cfg    config.Scheduler
	logger log.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

func newTickDriver(
	sched *engine.Scheduler, store persistence.SchedulerStore, cfg config.Scheduler, logger log.Logger,
) *tickDriver {
	return &tickDriver{
		sched:  sched,
		store:  store,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (d *tickDriver) Start(rootCtx context.Context) {
	go d.run(rootCtx)
}

func (d *tickDriver) run(rootCtx context.Context) {
	defer close(d.doneCh)

	// resume the tick sequence where the restored state left off
	tick := uint64(d.sched.Snapshot().LastTick)

	ticker := time.NewTicker(d.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rootCtx.Done():
			return
		case <-d.stopCh:
			return
		case now := <-ticker.C:
			tick++
			consumed := d.sched.RunTick(rootCtx, tick, now, data_models.Weight(d.cfg.TickWeightBudget))
			d.logger.Debug("tick driven",
				tag.Tick(tick),
				tag.WeightConsumed(uint64(consumed)))
			if d.store != nil {
				if err := d.store.SaveSnapshot(rootCtx, d.sched.Snapshot()); err != nil {
					d.logger.Error("failed to save scheduler snapshot", tag.Error(err))
				}
			}
		}
	}
}

func (d *tickDriver) Stop(ctx context.Context) error {
	close(d.stopCh)
	select {
	case <-d.doneCh:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("tick driver did not stop before deadline: %w", ctx.Err())
	}
}

// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"errors"
	"time"

	"github.com/xcherryio/ticksched/common/log"
	"github.com/xcherryio/ticksched/common/ptr"
	"github.com/xcherryio/ticksched/config"
	"github.com/xcherryio/ticksched/persistence/data_models"
)

const testBucketSize = 10_000

func testSchedulerConfig() config.Scheduler {
	return config.Scheduler{
		BucketSizeMillis:     testBucketSize,
		MaxScheduledPerSlot:  10,
		TickWeightBudget:     2_000,
		TimeTrackBudgetShare: ptr.Any(0.5),
		TickInterval:         time.Second,
	}
}

type dispatchedCall struct {
	Origin data_models.Origin
	Call   string
}

// fakeDispatcher records every dispatch and fails calls according to
// failWhile, evaluated at dispatch time.
type fakeDispatcher struct {
	calls     []dispatchedCall
	failWhile func(call string) bool
}

func (d *fakeDispatcher) Dispatch(_ context.Context, origin data_models.Origin, call []byte) error {
	d.calls = append(d.calls, dispatchedCall{Origin: origin, Call: string(call)})
	if d.failWhile != nil && d.failWhile(string(call)) {
		return errors.New("dispatch rejected")
	}
	return nil
}

func (d *fakeDispatcher) callNames() []string {
	names := make([]string, 0, len(d.calls))
	for _, c := range d.calls {
		names = append(names, c.Call)
	}
	return names
}

type fakePreimageStore struct {
	blobs map[string][]byte
}

func (p *fakePreimageStore) Resolve(_ context.Context, hash []byte, _ uint32) ([]byte, bool) {
	blob, ok := p.blobs[string(hash)]
	return blob, ok
}

type recordingSink struct {
	signals []Signal
}

func (r *recordingSink) OnSignal(sig Signal) {
	r.signals = append(r.signals, sig)
}

func (r *recordingSink) ofType(sigType SignalType) []Signal {
	var out []Signal
	for _, sig := range r.signals {
		if sig.Type == sigType {
			out = append(out, sig)
		}
	}
	return out
}

type testEnv struct {
	sched      *Scheduler
	dispatcher *fakeDispatcher
	preimages  *fakePreimageStore
	sink       *recordingSink

	lastTick uint64
	wallTime time.Time
	budget   data_models.Weight
}

func newTestEnv(cfg config.Scheduler) *testEnv {
	env := &testEnv{
		dispatcher: &fakeDispatcher{},
		preimages:  &fakePreimageStore{blobs: map[string][]byte{}},
		sink:       &recordingSink{},
		wallTime:   time.UnixMilli(0),
		budget:     data_models.Weight(cfg.TickWeightBudget),
	}
	env.sched = NewScheduler(cfg, Collaborators{
		Preimages:  env.preimages,
		Dispatcher: env.dispatcher,
		Authorizer: NewAllowAllAuthorizer(),
		Signals:    env.sink,
	}, log.NewDevelopmentLogger())
	return env
}

// runToTick runs every tick up to and including upTo, holding wallTime still
func (e *testEnv) runToTick(upTo uint64) {
	for t := e.lastTick + 1; t <= upTo; t++ {
		e.sched.RunTick(context.Background(), t, e.wallTime, e.budget)
		e.lastTick = t
	}
}

// runTickAt runs the next single tick with the wall clock moved to millis
func (e *testEnv) runTickAt(millis int64) {
	e.wallTime = time.UnixMilli(millis)
	e.lastTick++
	e.sched.RunTick(context.Background(), e.lastTick, e.wallTime, e.budget)
}

func (e *testEnv) scheduleAt(slot data_models.Slot, priority uint8, callName string) data_models.TaskAddress {
	addr, err := e.sched.Schedule(ScheduleRequest{
		Timeline:  data_models.TimelineTick,
		When:      slot,
		Priority:  priority,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.InlineCall([]byte(callName)),
		MaxWeight: 100,
	})
	if err != nil {
		panic(err)
	}
	return addr
}

// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xcherryio/ticksched/common/ptr"
	"github.com/xcherryio/ticksched/persistence/data_models"
)

func TestExecutesExactlyOnceAtSlot(t *testing.T) {
	env := newTestEnv(testSchedulerConfig())
	env.scheduleAt(4, 0, "one-shot")

	env.runToTick(3)
	assert.Empty(t, env.dispatcher.calls)

	env.runToTick(4)
	assert.Equal(t, []string{"one-shot"}, env.dispatcher.callNames())

	env.runToTick(12)
	assert.Equal(t, []string{"one-shot"}, env.dispatcher.callNames())
	assert.Equal(t, 0, env.sched.tickTrack.agenda.slotCount())
}

func TestPriorityOrderWithinBudget(t *testing.T) {
	// tick track budget is 1000; each task needs 25+600, so only one fits
	env := newTestEnv(testSchedulerConfig())
	_, err := env.sched.Schedule(ScheduleRequest{
		Timeline:  data_models.TimelineTick,
		When:      4,
		Priority:  9,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.InlineCall([]byte("later")),
		MaxWeight: 600,
	})
	require.NoError(t, err)
	_, err = env.sched.Schedule(ScheduleRequest{
		Timeline:  data_models.TimelineTick,
		When:      4,
		Priority:  1,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.InlineCall([]byte("urgent")),
		MaxWeight: 600,
	})
	require.NoError(t, err)

	env.runToTick(4)
	assert.Equal(t, []string{"urgent"}, env.dispatcher.callNames())

	// the loser was deferred, never dropped
	env.runToTick(5)
	assert.Equal(t, []string{"urgent", "later"}, env.dispatcher.callNames())
	assert.Equal(t, 0, env.sched.tickTrack.agenda.slotCount())
}

func TestPeriodicRunsExactlyNTimes(t *testing.T) {
	env := newTestEnv(testSchedulerConfig())
	_, err := env.sched.ScheduleNamed("beat", ScheduleRequest{
		Timeline:  data_models.TimelineTick,
		When:      4,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.InlineCall([]byte("beat-call")),
		MaxWeight: 100,
		Periodic:  &data_models.Periodic{Period: 3, Remaining: 3},
	})
	require.NoError(t, err)

	env.runToTick(3)
	assert.Len(t, env.dispatcher.calls, 0)
	env.runToTick(4)
	assert.Len(t, env.dispatcher.calls, 1)
	env.runToTick(6)
	assert.Len(t, env.dispatcher.calls, 1)
	env.runToTick(7)
	assert.Len(t, env.dispatcher.calls, 2)
	env.runToTick(10)
	assert.Len(t, env.dispatcher.calls, 3)

	// no fourth run, and the name is released
	env.runToTick(30)
	assert.Len(t, env.dispatcher.calls, 3)
	_, err = env.sched.NextDispatchTimeNamed("beat")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, env.sched.tickTrack.agenda.slotCount())
}

func TestRetryExhaustion(t *testing.T) {
	env := newTestEnv(testSchedulerConfig())
	env.dispatcher.failWhile = func(call string) bool { return call == "flaky" }

	addr := env.scheduleAt(4, 0, "flaky")
	require.NoError(t, env.sched.SetRetry(data_models.RootOrigin(), addr, 2, 3))

	env.runToTick(4)
	assert.Len(t, env.dispatcher.calls, 1)
	env.runToTick(6)
	assert.Len(t, env.dispatcher.calls, 1)
	env.runToTick(7)
	assert.Len(t, env.dispatcher.calls, 2)
	env.runToTick(10)
	assert.Len(t, env.dispatcher.calls, 3)

	// the budget is spent: the task is dropped, not rescheduled
	env.runToTick(30)
	assert.Len(t, env.dispatcher.calls, 3)
	assert.Equal(t, 0, env.sched.retries.size())
	assert.Equal(t, 0, env.sched.tickTrack.agenda.slotCount())
}

func TestRetryStopsOnSuccess(t *testing.T) {
	env := newTestEnv(testSchedulerConfig())
	attempts := 0
	env.dispatcher.failWhile = func(call string) bool {
		if call != "flaky" {
			return false
		}
		attempts++
		return attempts <= 2
	}

	addr := env.scheduleAt(4, 0, "flaky")
	require.NoError(t, env.sched.SetRetry(data_models.RootOrigin(), addr, 10, 3))

	// fails at 4 and 7, succeeds at 10, then stays quiet
	env.runToTick(30)
	assert.Len(t, env.dispatcher.calls, 3)
	assert.Equal(t, 0, env.sched.retries.size())
}

func TestRetryCloneIsUnnamedAndSingleShot(t *testing.T) {
	env := newTestEnv(testSchedulerConfig())
	env.dispatcher.failWhile = func(call string) bool { return true }

	_, err := env.sched.ScheduleNamed("guarded", ScheduleRequest{
		Timeline:  data_models.TimelineTick,
		When:      4,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.InlineCall([]byte("guarded-call")),
		MaxWeight: 100,
	})
	require.NoError(t, err)
	require.NoError(t, env.sched.SetRetryNamed(data_models.RootOrigin(), "guarded", 3, 2))

	env.runToTick(4)
	clone := env.sched.tickTrack.agenda.get(6, 0)
	require.NotNil(t, clone)
	assert.Nil(t, clone.Name)
	assert.Nil(t, clone.Periodic)

	rc, ok := env.sched.retries.get(data_models.TaskAddress{
		Timeline: data_models.TimelineTick, Slot: 6, Index: 0,
	})
	require.True(t, ok)
	assert.EqualValues(t, 2, rc.Remaining)
	assert.EqualValues(t, 3, rc.TotalRetries)

	// the original run retired, so its name is free
	_, err = env.sched.NextDispatchTimeNamed("guarded")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPeriodicRetryIndependence(t *testing.T) {
	env := newTestEnv(testSchedulerConfig())
	cronAttempts := 0
	env.dispatcher.failWhile = func(call string) bool {
		if call != "cron-call" {
			return false
		}
		cronAttempts++
		return cronAttempts == 1
	}

	_, err := env.sched.ScheduleNamed("cron", ScheduleRequest{
		Timeline:  data_models.TimelineTick,
		When:      4,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.InlineCall([]byte("cron-call")),
		MaxWeight: 100,
		Periodic:  &data_models.Periodic{Period: 3, Remaining: 3},
	})
	require.NoError(t, err)
	require.NoError(t, env.sched.SetRetryNamed(data_models.RootOrigin(), "cron", 10, 2))

	// the failed run at 4 produces both a retry clone at 6 and the
	// regular renewal at 7
	env.runToTick(4)
	assert.Equal(t, 2, env.sched.retries.size())

	clone := env.sched.tickTrack.agenda.get(6, 0)
	require.NotNil(t, clone)
	assert.Nil(t, clone.Name)
	assert.Nil(t, clone.Periodic)
	cloneRetry, ok := env.sched.retries.get(data_models.TaskAddress{
		Timeline: data_models.TimelineTick, Slot: 6, Index: 0,
	})
	require.True(t, ok)
	assert.EqualValues(t, 9, cloneRetry.Remaining)

	renewal := env.sched.tickTrack.agenda.get(7, 0)
	require.NotNil(t, renewal)
	require.NotNil(t, renewal.Name)
	assert.Equal(t, "cron", *renewal.Name)
	require.NotNil(t, renewal.Periodic)
	assert.EqualValues(t, 2, renewal.Periodic.Remaining)
	renewalRetry, ok := env.sched.retries.get(data_models.TaskAddress{
		Timeline: data_models.TimelineTick, Slot: 7, Index: 0,
	})
	require.True(t, ok)
	assert.EqualValues(t, 10, renewalRetry.Remaining)

	// clone succeeds at 6 and releases its policy
	env.runToTick(6)
	assert.Equal(t, 1, env.sched.retries.size())

	// renewals at 7 and 10 run clean; the final run releases everything
	env.runToTick(30)
	assert.Equal(t, 4, len(env.dispatcher.calls))
	assert.Equal(t, 0, env.sched.retries.size())
	assert.Equal(t, 0, env.sched.names.size())
	assert.Empty(t, env.sink.ofType(SignalRetryFailed))
}

func TestDeferralPreservesBindings(t *testing.T) {
	env := newTestEnv(testSchedulerConfig())
	_, err := env.sched.Schedule(ScheduleRequest{
		Timeline:  data_models.TimelineTick,
		When:      4,
		Priority:  1,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.InlineCall([]byte("first")),
		MaxWeight: 600,
	})
	require.NoError(t, err)
	bulkyAddr, err := env.sched.ScheduleNamed("bulky", ScheduleRequest{
		Timeline:  data_models.TimelineTick,
		When:      4,
		Priority:  9,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.InlineCall([]byte("bulky-call")),
		MaxWeight: 600,
	})
	require.NoError(t, err)
	require.NoError(t, env.sched.SetRetry(data_models.RootOrigin(), bulkyAddr, 2, 3))

	env.runToTick(4)
	assert.Equal(t, []string{"first"}, env.dispatcher.callNames())

	slot, err := env.sched.NextDispatchTimeNamed("bulky")
	require.NoError(t, err)
	assert.EqualValues(t, 5, slot)

	movedRetry, ok := env.sched.retries.get(data_models.TaskAddress{
		Timeline: data_models.TimelineTick, Slot: 5, Index: 0,
	})
	require.True(t, ok)
	assert.EqualValues(t, 2, movedRetry.Remaining)

	env.runToTick(5)
	assert.Equal(t, []string{"first", "bulky-call"}, env.dispatcher.callNames())
	assert.Equal(t, 0, env.sched.retries.size())
}

func TestCallUnavailableDropsTask(t *testing.T) {
	env := newTestEnv(testSchedulerConfig())
	addr, err := env.sched.ScheduleNamed("opaque", ScheduleRequest{
		Timeline:  data_models.TimelineTick,
		When:      4,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.HashedCall([]byte("missing-hash"), 42),
		MaxWeight: 100,
	})
	require.NoError(t, err)
	require.NoError(t, env.sched.SetRetry(data_models.RootOrigin(), addr, 3, 2))

	env.runToTick(6)
	assert.Empty(t, env.dispatcher.calls)
	assert.Len(t, env.sink.ofType(SignalCallUnavailable), 1)
	assert.Equal(t, 0, env.sched.retries.size())
	_, err = env.sched.NextDispatchTimeNamed("opaque")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHashedCallResolvesFromPreimages(t *testing.T) {
	env := newTestEnv(testSchedulerConfig())
	env.preimages.blobs["h2"] = []byte("resolved-call")

	_, err := env.sched.Schedule(ScheduleRequest{
		Timeline:  data_models.TimelineTick,
		When:      4,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.HashedCall([]byte("h2"), 13),
		MaxWeight: 100,
	})
	require.NoError(t, err)

	env.runToTick(4)
	assert.Equal(t, []string{"resolved-call"}, env.dispatcher.callNames())
	assert.Empty(t, env.sink.signals)
}

func TestPermanentlyOverweightSignalsEveryRevisit(t *testing.T) {
	env := newTestEnv(testSchedulerConfig())
	addr, err := env.sched.Schedule(ScheduleRequest{
		Timeline:  data_models.TimelineTick,
		When:      2,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.InlineCall([]byte("monster")),
		MaxWeight: 2_000, // above the whole track budget
	})
	require.NoError(t, err)

	env.runToTick(4)
	assert.Empty(t, env.dispatcher.calls)
	assert.Len(t, env.sink.ofType(SignalPermanentlyOverweight), 3)

	// the slot stays marked unfinished while the task is stuck
	require.NotNil(t, env.sched.tickTrack.cursors.IncompleteSince)
	assert.EqualValues(t, 2, *env.sched.tickTrack.cursors.IncompleteSince)

	// an operator cancelling it unblocks the cursor
	require.NoError(t, env.sched.Cancel(data_models.RootOrigin(), addr))
	env.runToTick(6)
	assert.Nil(t, env.sched.tickTrack.cursors.IncompleteSince)
}

func TestPeriodicRenewalFailsOnFullSlot(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.MaxScheduledPerSlot = 1
	env := newTestEnv(cfg)

	_, err := env.sched.ScheduleNamed("beat", ScheduleRequest{
		Timeline:  data_models.TimelineTick,
		When:      4,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.InlineCall([]byte("beat-call")),
		MaxWeight: 100,
		Periodic:  &data_models.Periodic{Period: 3, Remaining: 2},
	})
	require.NoError(t, err)
	env.scheduleAt(7, 0, "blocker")

	env.runToTick(4)
	assert.Equal(t, []string{"beat-call"}, env.dispatcher.callNames())
	assert.Len(t, env.sink.ofType(SignalPeriodicFailed), 1)
	_, err = env.sched.NextDispatchTimeNamed("beat")
	assert.ErrorIs(t, err, ErrNotFound)

	env.runToTick(7)
	assert.Equal(t, []string{"beat-call", "blocker"}, env.dispatcher.callNames())
}

func TestWallClockJumpProcessesEveryBucket(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.TickWeightBudget = 1_000_000
	env := newTestEnv(cfg)

	for i, when := range []data_models.Slot{5_000, 15_000, 25_000, 35_000, 45_000} {
		_, err := env.sched.Schedule(ScheduleRequest{
			Timeline:  data_models.TimelineWallClock,
			When:      when,
			Origin:    data_models.RootOrigin(),
			Payload:   data_models.InlineCall([]byte{byte('1' + i)}),
			MaxWeight: 100,
		})
		require.NoError(t, err)
	}

	env.runTickAt(1_000)
	assert.Equal(t, []string{"1"}, env.dispatcher.callNames())

	// a long stall: every intermediate bucket is visited, in order
	env.runTickAt(65_000)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, env.dispatcher.callNames())
	assert.Equal(t, 0, env.sched.timeTrack.agenda.slotCount())
}

func TestWallClockCatchUpUnderTightBudget(t *testing.T) {
	env := newTestEnv(testSchedulerConfig())

	for _, task := range []struct {
		when data_models.Slot
		call string
	}{
		{15_000, "b2"},
		{25_000, "b3"},
		{35_000, "b4"},
	} {
		_, err := env.sched.Schedule(ScheduleRequest{
			Timeline:  data_models.TimelineWallClock,
			When:      task.when,
			Origin:    data_models.RootOrigin(),
			Payload:   data_models.InlineCall([]byte(task.call)),
			MaxWeight: 600,
		})
		require.NoError(t, err)
	}

	// only one heavy task fits per tick; the rest keep getting pushed
	// forward and the cursor records the unfinished bucket
	env.runTickAt(65_000)
	assert.Len(t, env.dispatcher.calls, 1)
	assert.NotNil(t, env.sched.timeTrack.cursors.IncompleteSince)

	env.runTickAt(75_000)
	assert.Len(t, env.dispatcher.calls, 2)

	env.runTickAt(85_000)
	assert.Len(t, env.dispatcher.calls, 3)
	assert.Nil(t, env.sched.timeTrack.cursors.IncompleteSince)

	// nothing was dropped along the way
	assert.ElementsMatch(t, []string{"b2", "b3", "b4"}, env.dispatcher.callNames())
	assert.Equal(t, 0, env.sched.timeTrack.agenda.slotCount())
}

func TestWallClockScheduleByRawTimestamp(t *testing.T) {
	env := newTestEnv(testSchedulerConfig())
	_, err := env.sched.ScheduleNamed("alarm", ScheduleRequest{
		Timeline:  data_models.TimelineWallClock,
		When:      15_000,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.InlineCall([]byte("alarm-call")),
		MaxWeight: 100,
	})
	require.NoError(t, err)

	// 15000 lands in the strictly following bucket boundary
	slot, err := env.sched.NextDispatchTimeNamed("alarm")
	require.NoError(t, err)
	assert.EqualValues(t, 20_000, slot)

	env.runTickAt(9_999)
	assert.Empty(t, env.dispatcher.calls)

	env.runTickAt(15_000)
	assert.Equal(t, []string{"alarm-call"}, env.dispatcher.callNames())
}

func TestFreshStartServicesPresentDayBuckets(t *testing.T) {
	env := newTestEnv(testSchedulerConfig())

	now := data_models.Slot(time.Now().UnixMilli())
	_, err := env.sched.Schedule(ScheduleRequest{
		Timeline:  data_models.TimelineWallClock,
		When:      now + testBucketSize,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.InlineCall([]byte("present-day")),
		MaxWeight: 100,
	})
	require.NoError(t, err)

	// the very first tick lands decades after the epoch; the empty buckets
	// before the task must not eat the budget
	env.runTickAt(int64(now) + 3*testBucketSize)
	assert.Equal(t, []string{"present-day"}, env.dispatcher.callNames())
	assert.Nil(t, env.sched.timeTrack.cursors.IncompleteSince)
	assert.Equal(t, env.sched.timeTrack.current, env.sched.timeTrack.cursors.LastProcessed)
}

func TestZeroTimeShareStarvesWallClock(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.TimeTrackBudgetShare = ptr.Any(0.0)
	env := newTestEnv(cfg)

	env.scheduleAt(1, 0, "tick-side")
	_, err := env.sched.Schedule(ScheduleRequest{
		Timeline:  data_models.TimelineWallClock,
		When:      5_000,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.InlineCall([]byte("wall-side")),
		MaxWeight: 100,
	})
	require.NoError(t, err)

	env.runTickAt(30_000)
	assert.Equal(t, []string{"tick-side"}, env.dispatcher.callNames())
	require.NotNil(t, env.sched.timeTrack.cursors.IncompleteSince)
	assert.EqualValues(t, 10_000, *env.sched.timeTrack.cursors.IncompleteSince)
}

func TestRetryDroppedWhenBookkeepingUnaffordable(t *testing.T) {
	env := newTestEnv(testSchedulerConfig())
	env.dispatcher.failWhile = func(string) bool { return true }

	// 25+950 fits the 1000 tick-track budget after the per-slot base of 10,
	// but leaves only 15 behind, short of the retry bookkeeping cost
	addr, err := env.sched.Schedule(ScheduleRequest{
		Timeline:  data_models.TimelineTick,
		When:      1,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.InlineCall([]byte("greedy")),
		MaxWeight: 950,
	})
	require.NoError(t, err)
	require.NoError(t, env.sched.SetRetry(data_models.RootOrigin(), addr, 3, 2))

	env.runToTick(4)
	assert.Equal(t, []string{"greedy"}, env.dispatcher.callNames())
	assert.Len(t, env.sink.ofType(SignalRetryFailed), 1)
	assert.EqualValues(t, 0, env.sched.retries.size())
	assert.Equal(t, 0, env.sched.tickTrack.agenda.slotCount())
}

func TestDeferralBlockedByFullDestination(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.MaxScheduledPerSlot = 2
	env := newTestEnv(cfg)

	_, err := env.sched.Schedule(ScheduleRequest{
		Timeline:  data_models.TimelineTick,
		When:      1,
		Priority:  1,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.InlineCall([]byte("heavy")),
		MaxWeight: 900,
	})
	require.NoError(t, err)
	_, err = env.sched.ScheduleNamed("stuck", ScheduleRequest{
		Timeline:  data_models.TimelineTick,
		When:      1,
		Priority:  5,
		Origin:    data_models.RootOrigin(),
		Payload:   data_models.InlineCall([]byte("stuck-call")),
		MaxWeight: 100,
	})
	require.NoError(t, err)
	env.scheduleAt(2, 0, "block-a")
	env.scheduleAt(2, 0, "block-b")

	// slot 2 is full, so the out-of-budget task cannot move there; it stays
	// at its address and the slot is recorded as unfinished
	env.runToTick(1)
	assert.Equal(t, []string{"heavy"}, env.dispatcher.callNames())
	slot, err := env.sched.NextDispatchTimeNamed("stuck")
	require.NoError(t, err)
	assert.EqualValues(t, 1, slot)
	require.NotNil(t, env.sched.tickTrack.cursors.IncompleteSince)
	assert.EqualValues(t, 1, *env.sched.tickTrack.cursors.IncompleteSince)

	env.runToTick(2)
	assert.Equal(t, []string{"heavy", "stuck-call", "block-a", "block-b"}, env.dispatcher.callNames())
	assert.Nil(t, env.sched.tickTrack.cursors.IncompleteSince)
}

// Copyright (c) 2023 xCherryIO Organization
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"time"

	"github.com/xcherryio/ticksched/common/log"
	"github.com/xcherryio/ticksched/common/log/tag"
	"github.com/xcherryio/ticksched/common/uuid"
	"github.com/xcherryio/ticksched/config"
	"github.com/xcherryio/ticksched/persistence/data_models"
)

type (
	// Collaborators are the external systems the scheduler core calls out to.
	// Signals is optional; the other three are required.
	Collaborators struct {
		Preimages  PreimageStore
		Dispatcher CallDispatcher
		Authorizer Authorizer
		Signals    SignalSink
	}

	// ScheduleRequest carries the caller-supplied parts of a new task.
	// When is a tick number on the tick timeline and a millisecond timestamp
	// on the wall-clock timeline (normalized to a bucket internally).
	ScheduleRequest struct {
		Timeline  data_models.Timeline
		When      data_models.Slot
		Priority  uint8
		Origin    data_models.Origin
		Payload   data_models.CallRef
		MaxWeight data_models.Weight
		Periodic  *data_models.Periodic
	}

	// Scheduler is the deferred task scheduler core. It is single-threaded by
	// contract: the embedding runtime invokes RunTick once per tick, and no
	// boundary operation may be called while a tick is in progress.
	Scheduler struct {
		cfg     config.Scheduler
		weights BookkeepingWeights
		logger  log.Logger

		preimages  PreimageStore
		dispatcher CallDispatcher
		authorizer Authorizer
		signals    SignalSink

		tickTrack *track
		timeTrack *track
		names     *nameIndex
		retries   *retryRegistry
	}
)

func NewScheduler(cfg config.Scheduler, collab Collaborators, logger log.Logger) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		weights:    DefaultBookkeepingWeights(),
		logger:     logger,
		preimages:  collab.Preimages,
		dispatcher: collab.Dispatcher,
		authorizer: collab.Authorizer,
		signals:    collab.Signals,
		tickTrack:  newTickTrack(cfg.MaxScheduledPerSlot),
		timeTrack:  newWallClockTrack(cfg.MaxScheduledPerSlot, data_models.Slot(cfg.BucketSizeMillis)),
		names:      newNameIndex(),
		retries:    newRetryRegistry(),
	}
}

// Schedule registers an anonymous task and returns its address.
func (s *Scheduler) Schedule(req ScheduleRequest) (data_models.TaskAddress, error) {
	return s.schedule(nil, req)
}

// ScheduleNamed registers a task under a stable name, failing with
// ErrNameAlreadyBound while the name refers to a live task.
func (s *Scheduler) ScheduleNamed(name string, req ScheduleRequest) (data_models.TaskAddress, error) {
	if _, ok := s.names.resolve(name); ok {
		return data_models.TaskAddress{}, ErrNameAlreadyBound
	}
	return s.schedule(&name, req)
}

func (s *Scheduler) schedule(name *string, req ScheduleRequest) (data_models.TaskAddress, error) {
	if err := s.authorizer.AuthorizeSchedule(req.Origin); err != nil {
		return data_models.TaskAddress{}, err
	}
	tr := s.trackFor(req.Timeline)
	slot := tr.normalizeTarget(req.When)
	if slot <= tr.current {
		return data_models.TaskAddress{}, ErrTargetSlotInPast
	}
	periodic, err := s.sanitizePeriodic(tr, req.Periodic)
	if err != nil {
		return data_models.TaskAddress{}, err
	}

	task := &data_models.ScheduledTask{
		Id:        uuid.MustNewUUID(),
		Name:      name,
		Priority:  req.Priority,
		Origin:    req.Origin,
		Payload:   req.Payload,
		MaxWeight: req.MaxWeight,
		Periodic:  periodic,
	}
	index, err := tr.agenda.insert(slot, task)
	if err != nil {
		return data_models.TaskAddress{}, err
	}
	addr := data_models.TaskAddress{Timeline: tr.timeline, Slot: slot, Index: index}
	if name != nil {
		// uniqueness was checked above; bind cannot fail here
		_ = s.names.bind(*name, addr)
	}
	s.logger.Debug("task scheduled",
		tag.TaskId(task.Id.String()),
		tag.Timeline(string(tr.timeline)),
		tag.Slot(uint64(slot)),
		tag.SlotIndex(index),
		tag.Priority(int(task.Priority)))
	return addr, nil
}

// Cancel removes a live task. Cancelling an already-gone address fails with
// ErrNotFound; the failure is idempotent.
func (s *Scheduler) Cancel(acting data_models.Origin, addr data_models.TaskAddress) error {
	tr := s.trackFor(addr.Timeline)
	task := tr.agenda.get(addr.Slot, addr.Index)
	if task == nil {
		return ErrNotFound
	}
	if err := s.authorizer.AuthorizeControl(acting, task.Origin); err != nil {
		return err
	}
	tr.agenda.clear(addr.Slot, addr.Index)
	if task.Name != nil {
		s.names.unbind(*task.Name)
	}
	s.retries.cancel(addr)
	s.logger.Debug("task cancelled",
		tag.TaskId(task.Id.String()),
		tag.Timeline(string(tr.timeline)),
		tag.Slot(uint64(addr.Slot)))
	return nil
}

func (s *Scheduler) CancelNamed(acting data_models.Origin, name string) error {
	addr, err := s.resolveNamed(name)
	if err != nil {
		return err
	}
	return s.Cancel(acting, addr)
}

// Reschedule moves a live task to a new slot, allocating a fresh address.
// The name binding and retry policy follow the task to its new address.
func (s *Scheduler) Reschedule(acting data_models.Origin, addr data_models.TaskAddress, newWhen data_models.Slot) (data_models.TaskAddress, error) {
	tr := s.trackFor(addr.Timeline)
	task := tr.agenda.get(addr.Slot, addr.Index)
	if task == nil {
		return data_models.TaskAddress{}, ErrNotFound
	}
	if err := s.authorizer.AuthorizeControl(acting, task.Origin); err != nil {
		return data_models.TaskAddress{}, err
	}
	slot := tr.normalizeTarget(newWhen)
	if slot == addr.Slot {
		return data_models.TaskAddress{}, ErrRescheduleNoChange
	}
	if slot <= tr.current {
		return data_models.TaskAddress{}, ErrTargetSlotInPast
	}
	newIndex, err := tr.agenda.insert(slot, task)
	if err != nil {
		return data_models.TaskAddress{}, err
	}
	tr.agenda.clear(addr.Slot, addr.Index)
	newAddr := data_models.TaskAddress{Timeline: tr.timeline, Slot: slot, Index: newIndex}
	if task.Name != nil {
		s.names.rebind(*task.Name, newAddr)
	}
	if rc, ok := s.retries.take(addr); ok {
		s.retries.set(newAddr, rc)
	}
	s.logger.Debug("task rescheduled",
		tag.TaskId(task.Id.String()),
		tag.Timeline(string(tr.timeline)),
		tag.Slot(uint64(slot)),
		tag.SlotIndex(newIndex))
	return newAddr, nil
}

func (s *Scheduler) RescheduleNamed(acting data_models.Origin, name string, newWhen data_models.Slot) (data_models.TaskAddress, error) {
	addr, err := s.resolveNamed(name)
	if err != nil {
		return data_models.TaskAddress{}, err
	}
	return s.Reschedule(acting, addr, newWhen)
}

// SetRetry attaches a retry policy to a live task. The policy is keyed by the
// task's current address and follows it through re-addressing.
func (s *Scheduler) SetRetry(acting data_models.Origin, addr data_models.TaskAddress, totalRetries uint32, period data_models.Slot) error {
	if totalRetries == 0 || period == 0 {
		return ErrInvalidRetryConfig
	}
	tr := s.trackFor(addr.Timeline)
	task := tr.agenda.get(addr.Slot, addr.Index)
	if task == nil {
		return ErrNotFound
	}
	if err := s.authorizer.AuthorizeControl(acting, task.Origin); err != nil {
		return err
	}
	s.retries.set(addr, data_models.RetryConfig{
		TotalRetries: totalRetries,
		Remaining:    totalRetries,
		Period:       tr.normalizePeriod(period),
	})
	return nil
}

func (s *Scheduler) SetRetryNamed(acting data_models.Origin, name string, totalRetries uint32, period data_models.Slot) error {
	addr, err := s.resolveNamed(name)
	if err != nil {
		return err
	}
	return s.SetRetry(acting, addr, totalRetries, period)
}

// CancelRetry removes the retry policy of a live task; the task itself stays
// scheduled. Fails with ErrNotFound when the task or the policy is gone.
func (s *Scheduler) CancelRetry(acting data_models.Origin, addr data_models.TaskAddress) error {
	tr := s.trackFor(addr.Timeline)
	task := tr.agenda.get(addr.Slot, addr.Index)
	if task == nil {
		return ErrNotFound
	}
	if err := s.authorizer.AuthorizeControl(acting, task.Origin); err != nil {
		return err
	}
	if _, ok := s.retries.get(addr); !ok {
		return ErrNotFound
	}
	s.retries.cancel(addr)
	return nil
}

func (s *Scheduler) CancelRetryNamed(acting data_models.Origin, name string) error {
	addr, err := s.resolveNamed(name)
	if err != nil {
		return err
	}
	return s.CancelRetry(acting, addr)
}

// NextDispatchTime returns the slot the task is currently scheduled for.
func (s *Scheduler) NextDispatchTime(addr data_models.TaskAddress) (data_models.Slot, error) {
	tr := s.trackFor(addr.Timeline)
	if tr.agenda.get(addr.Slot, addr.Index) == nil {
		return 0, ErrNotFound
	}
	return addr.Slot, nil
}

func (s *Scheduler) NextDispatchTimeNamed(name string) (data_models.Slot, error) {
	addr, err := s.resolveNamed(name)
	if err != nil {
		return 0, err
	}
	return s.NextDispatchTime(addr)
}

// RunTick drives both timelines once. tick must advance by exactly one per
// invocation; violations are logged and tolerated. The returned weight is the
// total consumed across both tracks.
func (s *Scheduler) RunTick(ctx context.Context, tick uint64, now time.Time, budget data_models.Weight) data_models.Weight {
	if s.tickTrack.current != 0 && data_models.Slot(tick) != s.tickTrack.current+1 {
		s.logger.Warn("tick number did not advance by exactly one",
			tag.Tick(uint64(s.tickTrack.current)),
			tag.Value(tick))
	}

	timeBudget := data_models.Weight(float64(budget) * s.cfg.TimeShare())
	tickBudget := budget - timeBudget

	// fixed track order keeps tick processing deterministic
	tickMeter := newWeightMeter(tickBudget)
	s.tickTrack.current = data_models.Slot(tick)
	s.serviceAgendas(ctx, s.tickTrack, data_models.Slot(tick), tickMeter)

	timeMeter := newWeightMeter(timeBudget)
	nowBucket := s.timeTrack.normalizeTarget(slotOfTime(now))
	s.timeTrack.current = nowBucket
	s.serviceAgendas(ctx, s.timeTrack, nowBucket, timeMeter)

	consumed := tickMeter.Consumed() + timeMeter.Consumed()
	s.logger.Debug("tick processed",
		tag.Tick(tick),
		tag.Slot(uint64(nowBucket)),
		tag.WeightConsumed(uint64(consumed)))
	return consumed
}

func (s *Scheduler) trackFor(timeline data_models.Timeline) *track {
	if timeline == data_models.TimelineWallClock {
		return s.timeTrack
	}
	return s.tickTrack
}

// resolveNamed looks a name up and degrades stale bindings (name pointing at
// a missing task) to ErrNotFound after dropping the binding, per the
// no-panic-on-inconsistency rule.
func (s *Scheduler) resolveNamed(name string) (data_models.TaskAddress, error) {
	addr, ok := s.names.resolve(name)
	if !ok {
		return data_models.TaskAddress{}, ErrNotFound
	}
	tr := s.trackFor(addr.Timeline)
	if tr.agenda.get(addr.Slot, addr.Index) == nil {
		s.logger.Warn("stale name binding dropped",
			tag.TaskName(name),
			tag.Timeline(string(addr.Timeline)),
			tag.Slot(uint64(addr.Slot)),
			tag.SlotIndex(addr.Index))
		s.names.unbind(name)
		return data_models.TaskAddress{}, ErrNotFound
	}
	return addr, nil
}

func (s *Scheduler) sanitizePeriodic(tr *track, p *data_models.Periodic) (*data_models.Periodic, error) {
	if p == nil || p.Remaining <= 1 {
		// zero or one repetition is just a single run
		return nil, nil
	}
	if p.Period == 0 {
		return nil, ErrInvalidPeriodic
	}
	return &data_models.Periodic{
		Period:    tr.normalizePeriod(p.Period),
		Remaining: p.Remaining,
	}, nil
}

func slotOfTime(t time.Time) data_models.Slot {
	ms := t.UnixMilli()
	if ms < 0 {
		return 0
	}
	return data_models.Slot(ms)
}
